// Package registry maps browser sessions to selection engines. Each browser
// gets its own session.Session, keyed by an ID stored in a signed cookie.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/routelens/internal/session"
	"github.com/leapstack-labs/routelens/internal/ui/notifier"
)

const (
	cookieName = "routelens"
	idKey      = "id"
)

// Factory builds the engine for a new browser session.
type Factory func(id string) *session.Session

// Entry is one browser session.
type Entry struct {
	Session  *session.Session
	Notifier *notifier.Notifier

	unsubscribe func()
	lastSeen    time.Time
}

// Registry is safe for concurrent use.
type Registry struct {
	store    sessions.Store
	factory  Factory
	onExpire func(id string)
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*Entry
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// OnExpire is called with the ID of every session the sweeper drops.
func OnExpire(fn func(id string)) Option {
	return func(r *Registry) { r.onExpire = fn }
}

// New creates a registry using store for the identity cookie.
func New(store sessions.Store, factory Factory, opts ...Option) *Registry {
	r := &Registry{
		store:   store,
		factory: factory,
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
		entries: make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewCookieStore returns the cookie store the UI server uses.
func NewCookieStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 30) // 30 days
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// Get returns the entry for the request's browser, creating the engine and
// setting the cookie on first contact. It must run before anything is
// written to w.
func (r *Registry) Get(w http.ResponseWriter, req *http.Request) (*Entry, error) {
	cookie, err := r.store.Get(req, cookieName)
	if err != nil {
		// An unreadable cookie, e.g. after a secret change, gets a fresh identity.
		r.logger.Debug("discarding unreadable session cookie", "error", err)
	}

	id, _ := cookie.Values[idKey].(string)
	if id == "" {
		id = uuid.New().String()
		cookie.Values[idKey] = id
		if err := cookie.Save(req, w); err != nil {
			return nil, fmt.Errorf("failed to save session cookie: %w", err)
		}
	}
	return r.Lookup(id), nil
}

// Lookup returns the entry for id, creating it if needed.
func (r *Registry) Lookup(id string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		e.lastSeen = r.now()
		return e
	}

	sess := r.factory(id)
	n := notifier.New()
	e := &Entry{
		Session:     sess,
		Notifier:    n,
		unsubscribe: sess.Subscribe(func(session.Event) { n.Broadcast() }),
		lastSeen:    r.now(),
	}
	r.entries[id] = e
	sess.Start()
	r.logger.Debug("browser session created", "session", id)
	return e
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops sessions idle for longer than ttl that have no open update
// stream, and returns how many it dropped. A dropped session's in-flight
// work settles before the expiry hook runs.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	expired := make(map[string]*Entry)
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) && e.Notifier.Len() == 0 {
			expired[id] = e
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for id, e := range expired {
		e.release()
		r.logger.Debug("browser session expired", "session", id)
		if r.onExpire != nil {
			r.onExpire(id)
		}
	}
	return len(expired)
}

// RunSweeper sweeps every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval, ttl time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(ttl); n > 0 {
				r.logger.Info("expired idle browser sessions", "count", n)
			}
		}
	}
}

// Close ends every session's update streams and waits for their in-flight
// work.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*Entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.release()
	}
}

// release detaches the entry from its session and waits for the session's
// pending fetches.
func (e *Entry) release() {
	e.unsubscribe()
	e.Notifier.Close()
	e.Session.Wait()
}
