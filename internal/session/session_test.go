package session

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/journal"
	"github.com/leapstack-labs/routelens/internal/testutil"
)

const period = "2024-Q1"

// loadedSession returns a session against a fake service that has already
// loaded the demo dataset and cached the dataset-wide lists.
func loadedSession(t *testing.T, opts ...Option) (*Session, *testutil.FakeService) {
	t.Helper()
	fs := testutil.NewFakeService(t, testutil.DemoDataset())
	client := dataservice.New(fs.URL(), dataservice.WithLogger(testutil.NewTestLogger(t)))

	opts = append([]Option{WithLogger(testutil.NewTestLogger(t)), WithID("test")}, opts...)
	s := New(client, opts...)

	res := s.LoadDefault(context.Background())
	require.True(t, res.OK(), "load default: %v", res.Err)
	s.Wait()
	return s, fs
}

// selectRoute walks the chain down to a complete tuple and waits for the
// route insight.
func selectRoute(t *testing.T, s *Session, source, destination, mode string) {
	t.Helper()
	s.SetSource(source)
	s.Wait()
	s.SetDestination(destination)
	s.Wait()
	s.SetPeriod(period)
	s.SetMode(mode)
	s.Wait()
}

func TestSession_InfeasibleRouteEndToEnd(t *testing.T) {
	s, fs := loadedSession(t)

	st := s.Snapshot()
	assert.Equal(t, []string{"IU1", "IU2"}, st.Options.Sources.Items)
	assert.Equal(t, []string{period}, st.Options.Periods.Items)
	assert.True(t, st.Data.Loaded)
	assert.Equal(t, DefaultOrigin, st.Data.Origin)

	selectRoute(t, s, "IU1", "GU5", "T1")

	st = s.Snapshot()
	assert.Equal(t, PhaseRouteReady, st.Phase())
	require.Equal(t, InsightReady, st.Insight.Status)
	require.NotNil(t, st.Insight.Insight)

	feasible, ok := st.Insight.Insight.Feasibility.IsFeasible.Get()
	require.True(t, ok)
	assert.False(t, feasible)
	assert.Equal(t, []string{"Demand exceeds capacity"}, st.Insight.Insight.Feasibility.Issues)
	assert.Equal(t, "Infeasible", st.Insight.Insight.Feasibility.Verdict())

	assert.Equal(t, []string{testutil.TupleKey("IU1", "GU5", "T1", period)}, fs.RouteRequests())
	assert.Equal(t, Stats{RouteRequests: 1, RouteApplied: 1}, s.Stats())
}

func TestSession_NoRouteRequestUntilComplete(t *testing.T) {
	s, fs := loadedSession(t)

	s.SetSource("IU2")
	s.Wait()
	s.SetPeriod(period)
	s.SetDestination("GU7")
	s.Wait()

	st := s.Snapshot()
	assert.Equal(t, PhaseDestinationChosen, st.Phase())
	assert.Equal(t, InsightIdle, st.Insight.Status)
	assert.Empty(t, fs.RouteRequests())
	assert.Zero(t, s.Stats().RouteRequests)
}

func TestSession_SetSourceCascade(t *testing.T) {
	s, _ := loadedSession(t)
	selectRoute(t, s, "IU2", "GU7", "T2")
	require.Equal(t, InsightReady, s.Snapshot().Insight.Status)

	s.SetSource("IU1")
	st := s.Snapshot()
	assert.Equal(t, Selection{Source: "IU1"}, st.Selection)
	assert.Zero(t, st.Options.Modes.Len())
	assert.Equal(t, InsightIdle, st.Insight.Status)
	assert.Nil(t, st.Insight.Insight)

	s.Wait()
	st = s.Snapshot()
	assert.Equal(t, "IU1", st.Options.Destinations.Scope)
	assert.Equal(t, []string{"GU5"}, st.Options.Destinations.Items)
}

func TestSession_SetDestinationKeepsPeriod(t *testing.T) {
	s, _ := loadedSession(t)
	selectRoute(t, s, "IU2", "GU7", "T1")

	s.SetDestination("GU8")
	st := s.Snapshot()
	assert.Equal(t, Selection{Source: "IU2", Destination: "GU8", Period: period}, st.Selection)
	assert.Equal(t, InsightIdle, st.Insight.Status)

	s.Wait()
	st = s.Snapshot()
	assert.Equal(t, "IU2/GU8", st.Options.Modes.Scope)
	require.Equal(t, 1, st.Options.Modes.Len())
	assert.Equal(t, "T2", st.Options.Modes.Items[0].Code)
}

func TestSession_ModeLabelsKeepAbsentCapacity(t *testing.T) {
	s, _ := loadedSession(t)
	s.SetSource("IU2")
	s.Wait()
	s.SetDestination("GU7")
	s.Wait()

	modes := s.Snapshot().Options.Modes.Items
	require.Len(t, modes, 2)
	assert.Equal(t, "T2 (Rail)", modes[1].Label())
	assert.True(t, modes[1].VehicleCapacity.IsAbsent())
}

func TestSession_ReselectFetchesAgain(t *testing.T) {
	s, fs := loadedSession(t)
	selectRoute(t, s, "IU1", "GU5", "T1")

	s.Reselect()
	s.Wait()
	s.SetMode("T1")
	s.Wait()

	assert.Equal(t, 3, fs.RouteCalls(testutil.TupleKey("IU1", "GU5", "T1", period)))
	assert.Equal(t, InsightReady, s.Snapshot().Insight.Status)
	assert.Equal(t, 3, s.Stats().RouteApplied)
}

func TestSession_StaleRouteResponseDiscarded(t *testing.T) {
	s, fs := loadedSession(t)
	s.SetSource("IU2")
	s.Wait()
	s.SetDestination("GU7")
	s.Wait()
	s.SetPeriod(period)

	keyA := testutil.TupleKey("IU2", "GU7", "T1", period)
	release := fs.Hold(keyA)

	s.SetMode("T1")
	require.Eventually(t, func() bool { return fs.RouteCalls(keyA) == 1 }, 2*time.Second, 5*time.Millisecond)

	s.SetMode("T2")
	require.Eventually(t, func() bool {
		return s.Snapshot().Insight.Status == InsightReady
	}, 2*time.Second, 5*time.Millisecond)

	release()
	s.Wait()

	st := s.Snapshot()
	assert.Equal(t, "T2", st.Insight.Tuple.Mode)
	assert.Equal(t, InsightReady, st.Insight.Status)
	assert.Equal(t, Stats{RouteRequests: 2, RouteApplied: 1, RouteDiscarded: 1}, s.Stats())
}

func TestSession_InFlightRouteDroppedAfterClear(t *testing.T) {
	s, fs := loadedSession(t)
	s.SetSource("IU1")
	s.Wait()
	s.SetDestination("GU5")
	s.Wait()
	s.SetPeriod(period)

	key := testutil.TupleKey("IU1", "GU5", "T1", period)
	release := fs.Hold(key)
	s.SetMode("T1")
	require.Eventually(t, func() bool { return fs.RouteCalls(key) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, InsightLoading, s.Snapshot().Insight.Status)

	s.SetSource("")
	release()
	s.Wait()

	st := s.Snapshot()
	assert.Equal(t, PhaseEmpty, st.Phase())
	assert.Equal(t, InsightIdle, st.Insight.Status)
	assert.Equal(t, 1, s.Stats().RouteDiscarded)
}

func TestSession_RouteFailureThenRecovery(t *testing.T) {
	s, fs := loadedSession(t)
	fs.Override("route", testutil.Canned{
		Status: http.StatusBadRequest,
		Body:   `{"success":false,"errors":["Route not found in uploaded dataset"]}`,
	})
	selectRoute(t, s, "IU1", "GU5", "T1")

	st := s.Snapshot()
	assert.Equal(t, InsightFailed, st.Insight.Status)
	require.NotNil(t, st.Failure)
	assert.Equal(t, "route insight: Route not found in uploaded dataset", st.Failure.Message())
	assert.Equal(t, 1, s.Stats().RouteFailed)

	fs.Override("route", testutil.Canned{})
	s.Reselect()
	s.Wait()

	st = s.Snapshot()
	assert.Equal(t, InsightReady, st.Insight.Status)
	assert.Nil(t, st.Failure)
}

func TestSession_UploadValidationKeepsState(t *testing.T) {
	s, fs := loadedSession(t)
	selectRoute(t, s, "IU1", "GU5", "T1")
	before := s.Snapshot()

	fs.Override("upload", testutil.Canned{
		Status: http.StatusOK,
		Body:   `{"success":false,"errors":["Missing sheet: ClinkerDemand"]}`,
	})
	res := s.Upload(context.Background(), "broken.xlsx", strings.NewReader("not a workbook"))
	s.Wait()

	require.False(t, res.OK())
	ve, ok := res.Validation()
	require.True(t, ok)
	assert.Equal(t, []string{"Missing sheet: ClinkerDemand"}, ve.Messages)

	after := s.Snapshot()
	assert.Equal(t, before.Selection, after.Selection)
	assert.Equal(t, before.Data, after.Data)
	assert.Equal(t, before.Insight, after.Insight)
	require.NotNil(t, after.Validation)
	assert.Equal(t, ve.Messages, after.Validation.Messages)

	s.DismissValidation()
	assert.Nil(t, s.Snapshot().Validation)
}

func TestSession_UploadSuccessResets(t *testing.T) {
	s, fs := loadedSession(t)
	selectRoute(t, s, "IU1", "GU5", "T1")

	ds := testutil.DemoDataset()
	ds.Sources = []string{"IU3"}
	fs.SetDataset(ds)

	res := s.Upload(context.Background(), "plants.xlsx", strings.NewReader("workbook"))
	require.True(t, res.OK())
	assert.Equal(t, []string{period}, res.Success.Periods)

	st := s.Snapshot()
	assert.Equal(t, Selection{}, st.Selection)
	assert.Equal(t, InsightIdle, st.Insight.Status)
	assert.Equal(t, "plants.xlsx", st.Data.Origin)

	s.Wait()
	assert.Equal(t, []string{"IU3"}, s.Snapshot().Options.Sources.Items)
	assert.Equal(t, []string{"plants.xlsx"}, fs.Uploads())
}

func TestSession_UploadTransportFailure(t *testing.T) {
	s, fs := loadedSession(t)
	fs.Override("upload", testutil.Canned{Status: http.StatusInternalServerError, Body: `{"error":"disk full"}`})

	res := s.Upload(context.Background(), "plants.xlsx", strings.NewReader("workbook"))
	require.False(t, res.OK())
	_, isValidation := res.Validation()
	assert.False(t, isValidation)

	st := s.Snapshot()
	require.NotNil(t, st.Failure)
	assert.Contains(t, st.Failure.Message(), "disk full")
	assert.True(t, st.Data.Loaded)

	s.DismissFailure()
	assert.Nil(t, s.Snapshot().Failure)
}

func TestSession_OptionFailureKeepsPreviousList(t *testing.T) {
	s, fs := loadedSession(t)
	fs.Override("sources", testutil.Canned{Status: http.StatusInternalServerError, Body: `{"error":"boom"}`})

	s.FetchSources()
	s.Wait()

	st := s.Snapshot()
	assert.Equal(t, []string{"IU1", "IU2"}, st.Options.Sources.Items)
	assert.Nil(t, st.Failure)
	assert.Equal(t, 1, s.Stats().OptionFailures)
}

func TestSession_SelectionOutsideOptions(t *testing.T) {
	tests := []struct {
		name string
		set  func(s *Session)
	}{
		{name: "unknown source", set: func(s *Session) { s.SetSource("IU9") }},
		{name: "destination without source", set: func(s *Session) { s.SetDestination("GU5") }},
		{name: "mode without route", set: func(s *Session) { s.SetMode("T1") }},
		{name: "unknown period", set: func(s *Session) { s.SetPeriod("1999-Q4") }},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/lenient", func(t *testing.T) {
			logger, logs := testutil.NewLogCapture(t, slog.LevelWarn)
			s, _ := loadedSession(t, WithLogger(logger))
			before := s.Snapshot()
			assert.NotPanics(t, func() { tt.set(s) })
			assert.Equal(t, before.Selection, s.Snapshot().Selection)
			assert.Contains(t, logs.Messages(), "ignoring selection outside cached options")
		})
		t.Run(tt.name+"/strict", func(t *testing.T) {
			s, _ := loadedSession(t, WithPolicy(PolicyStrict))
			assert.Panics(t, func() { tt.set(s) })
		})
	}
}

func TestSession_StrictPanicValue(t *testing.T) {
	s, _ := loadedSession(t, WithPolicy(PolicyStrict))

	defer func() {
		r := recover()
		ie, ok := r.(*InvariantError)
		require.True(t, ok, "panic value %T", r)
		assert.Equal(t, LevelSource, ie.Level)
		assert.Equal(t, "IU9", ie.Value)
	}()
	s.SetSource("IU9")
}

func TestSession_StartBeforeLoad(t *testing.T) {
	fs := testutil.NewFakeService(t, testutil.DemoDataset())
	s := New(dataservice.New(fs.URL()), WithLogger(testutil.NewTestLogger(t)))

	s.Start()
	s.Start()
	s.Wait()

	st := s.Snapshot()
	assert.Equal(t, PhaseEmpty, st.Phase())
	assert.Zero(t, st.Options.Sources.Len())
	assert.Equal(t, 2, s.Stats().OptionFailures)
	assert.Equal(t, 1, fs.Calls("sources"))
	require.NotNil(t, st.Model)
}

func TestSession_EventsInCommitOrder(t *testing.T) {
	s, _ := loadedSession(t)

	var (
		mu    sync.Mutex
		kinds []EventKind
	)
	unsubscribe := s.Subscribe(func(ev Event) {
		mu.Lock()
		kinds = append(kinds, ev.Kind)
		mu.Unlock()
	})

	s.SetSource("IU1")
	s.Wait()
	unsubscribe()
	s.SetSource("IU2")
	s.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EventKind{EventSelection, EventOptions}, kinds)
}

func TestSession_JournalsOutcomes(t *testing.T) {
	j, err := journal.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	s, _ := loadedSession(t, WithRecorder(j))
	selectRoute(t, s, "IU1", "GU5", "T1")

	counts, err := j.Summary(context.Background(), "test")
	require.NoError(t, err)

	byKey := make(map[string]int)
	for _, c := range counts {
		byKey[string(c.Kind)+"/"+string(c.Outcome)] = c.N
	}
	assert.Equal(t, 1, byKey["ingest/succeeded"])
	assert.Equal(t, 1, byKey["route/issued"])
	assert.Equal(t, 1, byKey["route/applied"])
	assert.Equal(t, 4, byKey["options/succeeded"])
}
