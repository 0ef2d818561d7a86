package explorer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/routelens/internal/session"
	"github.com/leapstack-labs/routelens/internal/testutil"
	"github.com/leapstack-labs/routelens/internal/ui/features"
)

func setupTestHandlers(t *testing.T, loaded bool) (*Handlers, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t, loaded)
	return NewHandlers(fixture.Registry, fixture.Client.BaseURL(), false), fixture
}

func postSignals(f *features.TestFixture, target, level, body string) *http.Request {
	req := f.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return features.RequestWithPathParam(req, "level", level)
}

func TestPage(t *testing.T) {
	tests := []struct {
		name     string
		loaded   bool
		wantBody []string
	}{
		{
			name: "before any dataset",
			wantBody: []string{
				"<!doctype html>",
				"<title>Explorer - RouteLens</title>",
				"data-init",
				"/updates",
				`id="app"`,
				"No dataset loaded.",
				"Upload a dataset or load the default one to begin.",
			},
		},
		{
			name:   "with the default dataset",
			loaded: true,
			wantBody: []string{
				`id="select-source"`,
				`<option value="IU1">IU1</option>`,
				`<option value="2024-Q1">2024-Q1</option>`,
				"default dataset",
				"IUGUType, Logistics, ClinkerDemand",
				"Choose a source plant.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, f := setupTestHandlers(t, tt.loaded)

			rec := httptest.NewRecorder()
			h.Page(rec, f.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want, "response should contain %q", want)
			}
		})
	}
}

func TestPage_Notice(t *testing.T) {
	h, f := setupTestHandlers(t, false)

	rec := httptest.NewRecorder()
	h.Page(rec, f.NewRequest(http.MethodGet, "/?notice=notes.txt+is+not+a+spreadsheet", nil))

	assert.Contains(t, rec.Body.String(), "notes.txt is not a spreadsheet")
}

func TestPage_EscapesServiceText(t *testing.T) {
	h, f := setupTestHandlers(t, false)
	f.Service.Override("upload", testutil.Canned{
		Status: http.StatusOK,
		Body:   `{"success":false,"errors":["Missing sheet: <script>alert(1)</script>"]}`,
	})
	f.Entry.Session.Upload(context.Background(), "bad.xlsx", strings.NewReader("x"))

	rec := httptest.NewRecorder()
	h.Page(rec, f.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, "The dataset was rejected")
}

func TestSelect_WalksTheChain(t *testing.T) {
	h, f := setupTestHandlers(t, true)
	s := f.Entry.Session

	steps := []struct {
		level string
		body  string
	}{
		{session.LevelSource, `{"source":"IU1"}`},
		{session.LevelDestination, `{"source":"IU1","destination":"GU5"}`},
		{session.LevelPeriod, `{"source":"IU1","destination":"GU5","period":"2024-Q1"}`},
		{session.LevelMode, `{"source":"IU1","destination":"GU5","mode":"T1","period":"2024-Q1"}`},
	}
	for _, step := range steps {
		rec := httptest.NewRecorder()
		h.Select(rec, postSignals(f, "/select/"+step.level, step.level, step.body))
		require.Equal(t, http.StatusOK, rec.Code, step.level)
		assert.Contains(t, rec.Body.String(), "datastar-patch-elements", step.level)
		s.Wait()
	}

	st := s.Snapshot()
	require.Equal(t, session.InsightReady, st.Insight.Status)
	assert.Equal(t, []string{"Demand exceeds capacity"}, st.Insight.Insight.Feasibility.Issues)

	rec := httptest.NewRecorder()
	h.Page(rec, f.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "Infeasible")
	assert.Contains(t, body, "Demand exceeds capacity")
	assert.Contains(t, body, "IU1 -&gt; GU5 via T1 @ 2024-Q1")
	assert.Equal(t, 1, f.Service.RouteCalls(testutil.TupleKey("IU1", "GU5", "T1", "2024-Q1")))
}

func TestSelect_PatchesSignalsAfterCascade(t *testing.T) {
	h, f := setupTestHandlers(t, true)

	rec := httptest.NewRecorder()
	h.Select(rec, postSignals(f, "/select/source", session.LevelSource, `{"source":"IU2","destination":"GU5","mode":"T1"}`))

	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-signals")
	assert.Contains(t, body, `"source":"IU2"`)
	assert.Contains(t, body, `"destination":""`)
}

func TestSelect_UnknownLevel(t *testing.T) {
	h, f := setupTestHandlers(t, true)

	rec := httptest.NewRecorder()
	h.Select(rec, postSignals(f, "/select/colour", "colour", `{}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelect_BadSignals(t *testing.T) {
	h, f := setupTestHandlers(t, true)

	rec := httptest.NewRecorder()
	h.Select(rec, postSignals(f, "/select/source", session.LevelSource, `{not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDismiss(t *testing.T) {
	h, f := setupTestHandlers(t, true)
	f.Service.Override("upload", testutil.Canned{Status: http.StatusOK, Body: `{"success":false,"errors":["Missing sheet: ClinkerDemand"]}`})
	f.Entry.Session.Upload(context.Background(), "bad.xlsx", strings.NewReader("x"))
	require.NotNil(t, f.Entry.Session.Snapshot().Validation)

	rec := httptest.NewRecorder()
	req := features.RequestWithPathParam(f.NewRequest(http.MethodPost, "/dismiss/validation", nil), "what", "validation")
	h.Dismiss(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, f.Entry.Session.Snapshot().Validation)

	rec = httptest.NewRecorder()
	req = features.RequestWithPathParam(f.NewRequest(http.MethodPost, "/dismiss/everything", nil), "what", "everything")
	h.Dismiss(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdates_SendsViewOnSessionChange(t *testing.T) {
	h, f := setupTestHandlers(t, true)

	req := f.NewRequest(http.MethodGet, "/updates", nil)
	ctx, cancel := context.WithTimeout(req.Context(), 500*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		h.Updates(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return f.Entry.Notifier.Len() == 1 }, time.Second, 5*time.Millisecond)
	f.Entry.Session.SetSource("IU1")
	f.Entry.Session.Wait()

	<-done
	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, `<option value="GU5">GU5</option>`)
}

func TestUpdates_EndsWhenSessionCloses(t *testing.T) {
	h, f := setupTestHandlers(t, true)

	req := f.NewRequest(http.MethodGet, "/updates", nil)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		h.Updates(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return f.Entry.Notifier.Len() == 1 }, time.Second, 5*time.Millisecond)
	f.Registry.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("update stream did not end after the session closed")
	}
}
