// Package session is the selection-and-synchronization engine. A Session
// owns one user's state: the dependent selection chain, the cached option
// lists, the current route insight, the dataset status and the surfaced
// errors. Every mutation replaces whole slices of that state in one critical
// section and is then published to subscribers.
package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/insight"
	"github.com/leapstack-labs/routelens/internal/journal"
)

// Service is the subset of the data service a session needs.
type Service interface {
	Sources(ctx context.Context) ([]string, error)
	Periods(ctx context.Context) ([]string, error)
	Destinations(ctx context.Context, source string) ([]string, error)
	Modes(ctx context.Context, source, destination string) ([]dataservice.Mode, error)
	Route(ctx context.Context, t insight.Tuple) (*insight.RouteInsight, error)
	Upload(ctx context.Context, filename string, r io.Reader) (*dataservice.IngestResponse, error)
	LoadDefault(ctx context.Context) (*dataservice.IngestResponse, error)
	Model(ctx context.Context) (*insight.ModelDescription, error)
}

// Recorder receives one entry per ingestion, option fetch and route
// request outcome.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Stats counts route requests by outcome.
type Stats struct {
	RouteRequests  int `json:"route_requests" yaml:"route_requests"`
	RouteApplied   int `json:"route_applied" yaml:"route_applied"`
	RouteDiscarded int `json:"route_discarded" yaml:"route_discarded"`
	RouteFailed    int `json:"route_failed" yaml:"route_failed"`
	OptionFailures int `json:"option_failures" yaml:"option_failures"`
}

// Session is safe for concurrent use.
type Session struct {
	id         string
	svc        Service
	dispatcher Dispatcher
	policy     Policy
	recorder   Recorder
	logger     *slog.Logger
	ctx        context.Context
	now        func() time.Time

	mu    sync.Mutex
	state State
	stats Stats
	// routeGen is the generation of the latest route request issued.
	routeGen uint64
	// dataGen increments on each successful ingestion and scopes the
	// dataset-wide option lists.
	dataGen uint64

	lmu       sync.Mutex
	listeners []subscription
	nextSub   int

	startOnce sync.Once
}

// Option configures a Session.
type Option func(*Session)

// WithDispatcher replaces the default goroutine dispatcher.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Session) { s.dispatcher = d }
}

// WithPolicy sets the invariant-violation policy.
func WithPolicy(p Policy) Option {
	return func(s *Session) { s.policy = p }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder attaches a request journal.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithContext sets the context used for background fetches.
func WithContext(ctx context.Context) Option {
	return func(s *Session) { s.ctx = ctx }
}

// WithID names the session in logs and journal entries.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New creates a session bound to svc. Nothing is fetched until Start or an
// ingestion runs.
func New(svc Service, opts ...Option) *Session {
	s := &Session{
		svc:        svc,
		dispatcher: &GoDispatcher{},
		logger:     slog.New(slog.DiscardHandler),
		ctx:        context.Background(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id)
	s.Subscribe(s.synchronize)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Start fetches the model description and the dataset-wide option lists
// once. Later calls do nothing.
func (s *Session) Start() {
	s.startOnce.Do(func() {
		s.FetchModel()
		s.FetchSources()
		s.FetchPeriods()
	})
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns the route request counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Wait blocks until all dispatched fetches have been reconciled.
func (s *Session) Wait() { s.dispatcher.Wait() }

// DismissValidation clears the validation message list.
func (s *Session) DismissValidation() {
	s.commit(EventError, func(st *State) { st.Validation = nil })
}

// DismissFailure clears the transport error banner.
func (s *Session) DismissFailure() {
	s.commit(EventError, func(st *State) { st.Failure = nil })
}

// commit applies fn to a copy of the state under the lock, installs the
// copy and publishes it. fn must replace slices rather than modify them.
func (s *Session) commit(kind EventKind, fn func(st *State)) State {
	s.mu.Lock()
	next := s.state
	fn(&next)
	s.state = next
	s.mu.Unlock()

	s.publish(Event{Kind: kind, State: next})
	return next
}

func (s *Session) record(e journal.Entry) {
	if s.recorder == nil {
		return
	}
	e.Session = s.id
	if e.At.IsZero() {
		e.At = s.now()
	}
	if err := s.recorder.Record(s.ctx, e); err != nil {
		s.logger.Warn("failed to record journal entry", "kind", e.Kind, "error", err)
	}
}
