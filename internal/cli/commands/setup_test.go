package commands

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/routelens/internal/cli/config"
	"github.com/leapstack-labs/routelens/internal/cli/output"
	clitest "github.com/leapstack-labs/routelens/internal/cli/testutil"
	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/field"
	"github.com/leapstack-labs/routelens/internal/journal"
	"github.com/leapstack-labs/routelens/internal/session"
	"github.com/leapstack-labs/routelens/internal/testutil"
)

// testContext builds the context the root command would hand to a
// subcommand, pointed at fs.
func testContext(t *testing.T, fs *testutil.FakeService, mode output.OutputMode) context.Context {
	t.Helper()
	cfg := config.Default()
	cfg.Service.BaseURL = fs.URL()
	cfg.OutputFormat = string(mode)
	ctx := config.WithConfig(context.Background(), cfg)
	return context.WithValue(ctx, config.LoggerKey(), testutil.NewTestLogger(t))
}

func run(t *testing.T, ctx context.Context, cmd *cobra.Command, args ...string) clitest.Result {
	t.Helper()
	cmd.SetContext(ctx)
	return clitest.Execute(t, cmd, args...)
}

func loadedService(t *testing.T) *testutil.FakeService {
	t.Helper()
	fs := testutil.NewFakeService(t, testutil.DemoDataset())
	fs.SetLoaded(true)
	return fs
}

// newTestCommandContext returns a CommandContext with a started session
// and an in-memory journal, rendering markdown into buffers.
func newTestCommandContext(t *testing.T, fs *testutil.FakeService) (*CommandContext, *clitest.TestRenderer) {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	j, err := journal.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	client := dataservice.New(fs.URL(), dataservice.WithLogger(logger))
	tr := clitest.NewTestRendererMarkdown()
	cc := &CommandContext{
		Cfg:      config.Default(),
		Logger:   logger,
		Client:   client,
		Renderer: tr.Renderer,
		Journal:  j,
		Session: session.New(client,
			session.WithID("test"),
			session.WithLogger(logger),
			session.WithRecorder(j),
		),
	}
	t.Cleanup(cc.Session.Wait)
	cc.loadOptions()
	return cc, tr
}

func TestChoose(t *testing.T) {
	cc, _ := newTestCommandContext(t, loadedService(t))

	require.NoError(t, cc.choose(session.LevelSource, "IU2"))
	assert.Equal(t, []string{"GU7", "GU8"}, allowedValues(cc.Session.Snapshot(), session.LevelDestination))

	err := cc.choose(session.LevelDestination, "GU5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `destination "GU5" is not one of: GU7, GU8`)

	require.NoError(t, cc.choose(session.LevelDestination, "GU7"))
	assert.Equal(t, []string{"T1", "T2"}, allowedValues(cc.Session.Snapshot(), session.LevelMode))

	err = cc.choose("vehicle", "T1")
	assert.Error(t, err)
}

func TestChoose_NothingLoaded(t *testing.T) {
	cc, _ := newTestCommandContext(t, testutil.NewFakeService(t, testutil.DemoDataset()))

	err := cc.choose(session.LevelSource, "IU1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a dataset loaded?")
}

func TestRouteCommand(t *testing.T) {
	fs := loadedService(t)

	t.Run("infeasible route in markdown", func(t *testing.T) {
		res := run(t, testContext(t, fs, output.ModeMarkdown), NewRouteCommand(),
			"-s", "IU1", "-d", "GU5", "-m", "T1", "-p", "2024-Q1")
		require.NoError(t, res.Err, res.Stderr)

		assert.Contains(t, res.Stdout, "# Route insight: IU1 -> GU5 via T1 @ 2024-Q1")
		assert.Contains(t, res.Stdout, "Infeasible")
		clitest.AssertNoANSI(t, res.Stdout)
		clitest.AssertValidMarkdown(t, res.Stdout)
	})

	t.Run("json output", func(t *testing.T) {
		res := run(t, testContext(t, fs, output.ModeJSON), NewRouteCommand(),
			"--source", "IU2", "--destination", "GU7", "--mode", "T2", "--period", "2024-Q1")
		require.NoError(t, res.Err, res.Stderr)

		var out InsightOutput
		require.NoError(t, json.Unmarshal([]byte(res.Stdout), &out))
		assert.Equal(t, "IU2", out.Tuple.Source)
		assert.Equal(t, "T2", out.Tuple.Mode)
		assert.Equal(t, "Feasible", out.Verdict)
		assert.NotEmpty(t, out.Sections)
	})

	t.Run("invalid destination names the choices", func(t *testing.T) {
		res := run(t, testContext(t, fs, output.ModeMarkdown), NewRouteCommand(),
			"-s", "IU1", "-d", "GU9", "-m", "T1", "-p", "2024-Q1")
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), `destination "GU9" is not one of: GU5`)
	})

	t.Run("missing flags", func(t *testing.T) {
		res := run(t, testContext(t, fs, output.ModeMarkdown), NewRouteCommand(), "-s", "IU1")
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "required flag")
	})

	t.Run("route fetch failure", func(t *testing.T) {
		failing := loadedService(t)
		failing.Override("route", testutil.Canned{Status: http.StatusInternalServerError, Body: `{"error":"solver crashed"}`})

		res := run(t, testContext(t, failing, output.ModeMarkdown), NewRouteCommand(),
			"-s", "IU1", "-d", "GU5", "-m", "T1", "-p", "2024-Q1")
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "solver crashed")
	})
}

func TestOptionsCommand(t *testing.T) {
	fs := loadedService(t)

	tests := []struct {
		name    string
		mode    output.OutputMode
		args    []string
		wantOut []string
	}{
		{name: "sources", mode: output.ModeMarkdown, args: []string{"sources"}, wantOut: []string{"## Sources", "IU1", "IU2"}},
		{name: "periods", mode: output.ModeMarkdown, args: []string{"periods"}, wantOut: []string{"2024-Q1"}},
		{name: "destinations", mode: output.ModeMarkdown, args: []string{"destinations", "IU2"}, wantOut: []string{"GU7", "GU8"}},
		{name: "modes", mode: output.ModeMarkdown, args: []string{"modes", "IU2", "GU7"}, wantOut: []string{"T1", "Road", "30 tons", "Not available"}},
		{name: "sources as json", mode: output.ModeJSON, args: []string{"sources"}, wantOut: []string{`"sources"`, `"IU1"`}},
		{name: "modes as yaml", mode: output.ModeYAML, args: []string{"modes", "IU2", "GU8"}, wantOut: []string{"modes:", "T2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, testContext(t, fs, tt.mode), NewOptionsCommand(), tt.args...)
			require.NoError(t, res.Err, res.Stderr)
			for _, want := range tt.wantOut {
				assert.Contains(t, res.Stdout, want)
			}
		})
	}
}

func TestUploadCommand(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fs := testutil.NewFakeService(t, testutil.DemoDataset())
		path := clitest.WriteDataset(t, "plants.csv")

		res := run(t, testContext(t, fs, output.ModeMarkdown), NewUploadCommand(), path)
		require.NoError(t, res.Err, res.Stderr)
		assert.Contains(t, res.Stdout, "Dataset loaded")
		assert.Contains(t, res.Stdout, "IUGUType")
		assert.Equal(t, []string{"plants.csv"}, fs.Uploads())
	})

	t.Run("unsupported extension never reaches the service", func(t *testing.T) {
		fs := testutil.NewFakeService(t, testutil.DemoDataset())
		path := clitest.WriteDataset(t, "plants.txt")

		res := run(t, testContext(t, fs, output.ModeMarkdown), NewUploadCommand(), path)
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "unsupported file type")
		assert.Zero(t, fs.Calls("upload"))
	})

	t.Run("rejected dataset lists every problem", func(t *testing.T) {
		fs := testutil.NewFakeService(t, testutil.DemoDataset())
		fs.Override("upload", testutil.Canned{
			Status: http.StatusOK,
			Body:   `{"success":false,"errors":["Missing sheet: ClinkerDemand","Missing column: Period"]}`,
		})
		path := clitest.WriteDataset(t, "plants.xlsx")

		res := run(t, testContext(t, fs, output.ModeMarkdown), NewUploadCommand(), path)
		require.Error(t, res.Err)
		assert.Contains(t, res.Stderr, "Missing sheet: ClinkerDemand")
		assert.Contains(t, res.Stderr, "Missing column: Period")
	})

	t.Run("missing file", func(t *testing.T) {
		fs := testutil.NewFakeService(t, testutil.DemoDataset())
		res := run(t, testContext(t, fs, output.ModeMarkdown), NewUploadCommand(), "/nonexistent/plants.csv")
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "failed to open dataset")
	})
}

func TestLoadDefaultCommand(t *testing.T) {
	fs := testutil.NewFakeService(t, testutil.DemoDataset())

	res := run(t, testContext(t, fs, output.ModeJSON), NewLoadDefaultCommand())
	require.NoError(t, res.Err, res.Stderr)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &out))
	assert.NotEmpty(t, out)
	assert.Equal(t, 1, fs.Calls("load-default"))
}

func TestModelAndPlantCommands(t *testing.T) {
	fs := loadedService(t)

	res := run(t, testContext(t, fs, output.ModeMarkdown), NewModelCommand())
	require.NoError(t, res.Err, res.Stderr)
	assert.Contains(t, res.Stdout, "# Model: Multi-Period Clinker Supply Chain Optimization (MILP)")
	assert.Contains(t, res.Stdout, "P[i,t]")

	res = run(t, testContext(t, fs, output.ModeMarkdown), NewPlantCommand(), "IU1")
	require.NoError(t, res.Err, res.Stderr)
	assert.Contains(t, res.Stdout, "## Plant IU1")
	assert.Contains(t, res.Stdout, "12,000")
}

func TestDoctorCommand(t *testing.T) {
	t.Run("healthy service", func(t *testing.T) {
		fs := loadedService(t)
		res := run(t, testContext(t, fs, output.ModeJSON), NewDoctorCommand())
		require.NoError(t, res.Err, res.Stderr)

		var out DoctorOutput
		require.NoError(t, json.Unmarshal([]byte(res.Stdout), &out))
		assert.Equal(t, fs.URL(), out.Service)
		assert.Zero(t, out.Failed)
		require.Len(t, out.Checks, 6)
		for _, c := range out.Checks {
			if c.Name == "Session secret" {
				assert.Equal(t, StatusWarn, c.Status)
				continue
			}
			assert.Equal(t, StatusPass, c.Status, c.Name)
		}
	})

	t.Run("unreachable service fails", func(t *testing.T) {
		fs := testutil.NewFakeService(t, testutil.DemoDataset())
		fs.Override("health", testutil.Canned{Status: http.StatusServiceUnavailable, Body: `{"error":"down"}`})
		fs.Override("model", testutil.Canned{Status: http.StatusServiceUnavailable, Body: `{"error":"down"}`})

		res := run(t, testContext(t, fs, output.ModeMarkdown), NewDoctorCommand())
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "checks failed")
		assert.Contains(t, res.Stdout, "| Group | Check | Status | Detail |")
	})
}

func TestAnalyticsCommand(t *testing.T) {
	fs := loadedService(t)

	tests := []struct {
		view string
		want []string
	}{
		{view: "demand", want: []string{"## Demand analytics", "| total_demand | 12,500 |", "Demand analytics computed from uploaded dataset"}},
		{view: "capacity", want: []string{"Capacity data not available in dataset"}},
		{view: "routes", want: []string{"| FROM IU CODE |", "| IU2 ", "NaN", "Count"}},
		{view: "inventory", want: []string{"| periods | "+field.NotAvailable+" |"}},
	}

	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			res := run(t, testContext(t, fs, output.ModeMarkdown), NewAnalyticsCommand(), tt.view)
			require.NoError(t, res.Err, res.Stderr)
			for _, w := range tt.want {
				assert.Contains(t, res.Stdout, w)
			}
		})
	}

	t.Run("json keeps absent fields", func(t *testing.T) {
		res := run(t, testContext(t, fs, output.ModeJSON), NewAnalyticsCommand(), "routes")
		require.NoError(t, res.Err, res.Stderr)
		var out struct {
			Kind    string           `json:"kind"`
			Records []map[string]any `json:"records"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.Stdout), &out))
		assert.Equal(t, "routes", out.Kind)
		assert.Len(t, out.Records, 2)
	})

	t.Run("nothing loaded", func(t *testing.T) {
		empty := testutil.NewFakeService(t, testutil.DemoDataset())
		res := run(t, testContext(t, empty, output.ModeMarkdown), NewAnalyticsCommand(), "demand")
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "No dataset loaded")
	})
}

func TestMetadataCommand(t *testing.T) {
	fs := loadedService(t)

	res := run(t, testContext(t, fs, output.ModeMarkdown), NewMetadataCommand())
	require.NoError(t, res.Err, res.Stderr)
	assert.Contains(t, res.Stdout, "## Dataset metadata")
	assert.Contains(t, res.Stdout, "| periods[0] | 2024-Q1 |")
	assert.Equal(t, 1, fs.Calls("metadata"))
}

func TestRawCommand(t *testing.T) {
	fs := loadedService(t)

	t.Run("sheet head", func(t *testing.T) {
		res := run(t, testContext(t, fs, output.ModeMarkdown), NewRawCommand(), "Logistics")
		require.NoError(t, res.Err, res.Stderr)
		assert.Contains(t, res.Stdout, "## Sheet Logistics")
		assert.Contains(t, res.Stdout, "| FROM IU CODE | TO IUGU CODE | TRANSPORT CODE | FREIGHT COST |")
		assert.Contains(t, res.Stdout, "Not available", "null cells render as absent")
	})

	t.Run("limit", func(t *testing.T) {
		res := run(t, testContext(t, fs, output.ModeMarkdown), NewRawCommand(), "Logistics", "--limit", "1")
		require.NoError(t, res.Err, res.Stderr)
		assert.NotContains(t, res.Stdout, "| IU2 ")
	})

	t.Run("negative limit", func(t *testing.T) {
		res := run(t, testContext(t, fs, output.ModeMarkdown), NewRawCommand(), "Logistics", "-n", "-1")
		require.Error(t, res.Err)
	})

	t.Run("unknown sheet", func(t *testing.T) {
		res := run(t, testContext(t, fs, output.ModeMarkdown), NewRawCommand(), "Weather")
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), `Sheet "Weather" not found`)
	})
}
