package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/journal"
	"github.com/leapstack-labs/routelens/internal/testutil"
)

func newTestServer(t *testing.T, withJournal bool) http.Handler {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	fs := testutil.NewFakeService(t, testutil.DemoDataset())

	cfg := Config{
		Service:       dataservice.New(fs.URL(), dataservice.WithLogger(logger)),
		ServiceURL:    fs.URL(),
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Logger:        logger,
	}
	if withJournal {
		j, err := journal.Open(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = j.Close() })
		cfg.Recorder, cfg.Pruner, cfg.History = j, j, j
	}

	s := NewServer(cfg)
	t.Cleanup(s.Close)
	h, err := s.Handler()
	require.NoError(t, err)
	return h
}

func TestHandler_Routes(t *testing.T) {
	tests := []struct {
		name        string
		withJournal bool
		path        string
		wantStatus  int
		wantBody    string
	}{
		{name: "health", path: "/healthz", wantStatus: http.StatusOK, wantBody: "OK"},
		{name: "explorer", path: "/", wantStatus: http.StatusOK, wantBody: "RouteLens"},
		{name: "stylesheet", path: "/static/routelens.css", wantStatus: http.StatusOK, wantBody: ".panel"},
		{name: "history with journal", withJournal: true, path: "/history", wantStatus: http.StatusOK, wantBody: "Session history"},
		{name: "history without journal", path: "/history", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, tt.withJournal)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestNewServer_Defaults(t *testing.T) {
	s := NewServer(Config{SessionSecret: "test-secret-key-32-bytes-long!!"})
	t.Cleanup(s.Close)

	assert.Equal(t, DefaultSessionTTL, s.cfg.SessionTTL)
	assert.NotNil(t, s.logger)
}

func TestServer_CloseDrainsBrowserSessions(t *testing.T) {
	logger := testutil.NewTestLogger(t)
	fs := testutil.NewFakeService(t, testutil.DemoDataset())
	fs.SetLoaded(true)

	s := NewServer(Config{
		Service:       dataservice.New(fs.URL(), dataservice.WithLogger(logger)),
		ServiceURL:    fs.URL(),
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Logger:        logger,
	})
	h, err := s.Handler()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, s.Registry().Len())

	s.Close()

	assert.Zero(t, s.Registry().Len())
	assert.Equal(t, 1, fs.Calls("sources"))
	assert.Equal(t, 1, fs.Calls("periods"))
	assert.ErrorIs(t, s.sessionCtx.Err(), context.Canceled)
}
