package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/routelens/internal/cli/config"
	"github.com/leapstack-labs/routelens/internal/cli/output"
	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/field"
	"github.com/leapstack-labs/routelens/internal/journal"
)

// Check statuses.
const (
	StatusPass = "pass"
	StatusWarn = "warn"
	StatusFail = "error"
)

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Service    string        `json:"service" yaml:"service"`
	ConfigFile string        `json:"config_file,omitempty" yaml:"config_file,omitempty"`
	Checks     []HealthCheck `json:"checks" yaml:"checks"`
	Failed     int           `json:"failed" yaml:"failed"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name    string        `json:"name" yaml:"name"`
	Group   string        `json:"group" yaml:"group"`
	Status  string        `json:"status" yaml:"status"`
	Detail  string        `json:"detail,omitempty" yaml:"detail,omitempty"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// checkTimeout bounds the whole check run, so a hung service still
// produces a report.
const checkTimeout = 10 * time.Second

type doctorCheck struct {
	name  string
	group string
	run   func(ctx context.Context) (status, detail string)
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and data service health",
		Long: `Run every health check at once and report the results:
- the configuration and journal can be used
- the data service answers and has a dataset loaded
- the option and model endpoints respond

The command fails when any check fails, so it can gate scripts.`,
		Example: `  routelens doctor
  routelens doctor -o json`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContextWithoutSession(cmd)
	checks := doctorChecks(cc.Cfg, cc.Client)

	out := &DoctorOutput{
		Service:    cc.Client.BaseURL(),
		ConfigFile: config.GetConfigFileUsed(),
		Checks:     make([]HealthCheck, len(checks)),
	}

	runCtx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()
	g, ctx := errgroup.WithContext(runCtx)
	for i, c := range checks {
		g.Go(func() error {
			start := time.Now()
			status, detail := c.run(ctx)
			out.Checks[i] = HealthCheck{Name: c.name, Group: c.group, Status: status, Detail: detail, Elapsed: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()

	for _, c := range out.Checks {
		if c.Status == StatusFail {
			out.Failed++
		}
	}

	r := cc.Renderer
	var err error
	switch r.EffectiveMode() {
	case output.ModeJSON:
		err = r.JSON(out)
	case output.ModeYAML:
		err = r.YAML(out)
	case output.ModeMarkdown:
		renderDoctorMarkdown(r, out)
	default:
		renderDoctorText(r, out)
	}
	if err != nil {
		return err
	}
	if out.Failed > 0 {
		return fmt.Errorf("%d of %d checks failed", out.Failed, len(out.Checks))
	}
	return nil
}

func doctorChecks(cfg *config.Config, client *dataservice.Client) []doctorCheck {
	return []doctorCheck{
		{name: "Journal", group: "local", run: func(context.Context) (string, string) {
			j, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return StatusFail, err.Error()
			}
			_ = j.Close()
			return StatusPass, cfg.Journal.Path
		}},
		{name: "Session secret", group: "local", run: func(context.Context) (string, string) {
			if cfg.UI.SessionSecret == "" {
				return StatusWarn, "not set; the UI generates one per run and browser sessions do not survive restarts"
			}
			return StatusPass, "set"
		}},
		{name: "Service health", group: "service", run: func(ctx context.Context) (string, string) {
			h, err := client.Health(ctx)
			if err != nil {
				return StatusFail, err.Error()
			}
			return StatusPass, field.Render(h.Status, "")
		}},
		{name: "Dataset loaded", group: "service", run: func(ctx context.Context) (string, string) {
			h, err := client.Health(ctx)
			if err != nil {
				return StatusFail, err.Error()
			}
			if loaded, _ := h.DataLoaded.Get(); !loaded {
				return StatusWarn, "no dataset; run routelens upload or routelens load-default"
			}
			return StatusPass, "yes"
		}},
		{name: "Sources", group: "service", run: func(ctx context.Context) (string, string) {
			items, err := client.Sources(ctx)
			if err != nil {
				return StatusWarn, err.Error()
			}
			return StatusPass, fmt.Sprintf("%d available", len(items))
		}},
		{name: "Model", group: "service", run: func(ctx context.Context) (string, string) {
			md, err := client.Model(ctx)
			if err != nil {
				return StatusFail, err.Error()
			}
			return StatusPass, field.Render(md.Model.Name, "")
		}},
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()

	r.Println(styles.Header1.Render("RouteLens Health Report"))
	r.Println(styles.Muted.Render("   Service: " + out.Service))
	if out.ConfigFile != "" {
		r.Println(styles.Muted.Render("   Config:  " + out.ConfigFile))
	}
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.StatusSuccess.String()
		switch check.Status {
		case StatusWarn:
			icon = styles.StatusWarning.String()
		case StatusFail:
			icon = styles.StatusFailed.String()
		}
		r.Println("   " + icon + " " + check.Name)
		if check.Detail != "" {
			r.Println(styles.Muted.Render("       " + check.Detail))
		}
	}
	r.Println("")

	if out.Failed == 0 {
		r.Println(styles.Success.Render("   All checks passed"))
		return
	}
	r.Println(styles.Error.Render(fmt.Sprintf("   %d checks failed", out.Failed)))
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	r.Println(output.FormatHeader(1, "RouteLens Health Report"))
	r.Println("")
	r.Println(output.FormatKeyValue("Service", out.Service))
	if out.ConfigFile != "" {
		r.Println(output.FormatKeyValue("Config", out.ConfigFile))
	}
	r.Println("")

	r.Println(output.FormatHeader(2, "Checks"))
	r.Println("")
	r.Println("| Group | Check | Status | Detail |")
	r.Println("|-------|-------|--------|--------|")
	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		r.Printf("| %s | %s | %s | %s |\n", titleCaser.String(check.Group), check.Name, check.Status, check.Detail)
	}
	r.Println("")
	r.Println(output.FormatKeyValue("Failed", fmt.Sprintf("%d", out.Failed)))
}
