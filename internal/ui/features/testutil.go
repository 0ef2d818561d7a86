// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/session"
	"github.com/leapstack-labs/routelens/internal/testutil"
	"github.com/leapstack-labs/routelens/internal/ui/registry"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Service      *testutil.FakeService
	Client       *dataservice.Client
	SessionStore *sessions.CookieStore
	Registry     *registry.Registry
	// Entry is the browser session that requests from NewRequest belong to.
	Entry *registry.Entry

	cookies []*http.Cookie
}

// SetupTestFixture starts a fake data service serving the demo dataset and
// a registry whose sessions talk to it. With loaded set, the fixture's
// session has already loaded the default dataset.
func SetupTestFixture(t *testing.T, loaded bool) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	fs := testutil.NewFakeService(t, testutil.DemoDataset())
	client := dataservice.New(fs.URL(), dataservice.WithLogger(logger))
	store := NewTestSessionStore()

	reg := registry.New(store, func(id string) *session.Session {
		return session.New(client, session.WithID(id), session.WithLogger(logger))
	}, registry.WithLogger(logger))
	t.Cleanup(reg.Close)

	rec := httptest.NewRecorder()
	entry, err := reg.Get(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies, "registry should set the identity cookie")

	if loaded {
		res := entry.Session.LoadDefault(context.Background())
		require.True(t, res.OK())
	}
	entry.Session.Wait()

	return &TestFixture{
		Service:      fs,
		Client:       client,
		SessionStore: store,
		Registry:     reg,
		Entry:        entry,
		cookies:      cookies,
	}
}

// NewRequest builds a request carrying the fixture session's cookie.
func (f *TestFixture) NewRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	for _, c := range f.cookies {
		req.AddCookie(c)
	}
	return req
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
