// Package ui serves the browser front end. Every browser session drives its
// own selection engine against the shared data service.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/routelens/internal/session"
	"github.com/leapstack-labs/routelens/internal/ui/features/history"
	"github.com/leapstack-labs/routelens/internal/ui/registry"
	"github.com/leapstack-labs/routelens/internal/ui/router"
)

// Defaults for browser session expiry.
const (
	DefaultSessionTTL    = 2 * time.Hour
	DefaultSweepInterval = 5 * time.Minute
)

// Pruner drops the journal entries of an expired session.
type Pruner interface {
	Prune(ctx context.Context, session string) error
}

// Config holds configuration for the UI server.
type Config struct {
	Service       session.Service
	ServiceURL    string
	Port          int
	SessionSecret string
	SessionTTL    time.Duration
	Policy        session.Policy
	Recorder      session.Recorder
	Pruner        Pruner
	History       history.Reader
	Dev           bool
	Logger        *slog.Logger
}

// Server is the UI server.
type Server struct {
	cfg      Config
	registry *registry.Registry
	logger   *slog.Logger

	// sessionCtx bounds every browser session's service requests.
	sessionCtx context.Context
	stop       context.CancelFunc
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}

	s := &Server{cfg: cfg, logger: cfg.Logger}
	s.sessionCtx, s.stop = context.WithCancel(context.Background())
	s.registry = registry.New(
		registry.NewCookieStore(cfg.SessionSecret),
		s.newSession,
		registry.WithLogger(cfg.Logger),
		registry.OnExpire(s.expire),
	)
	return s
}

func (s *Server) newSession(id string) *session.Session {
	opts := []session.Option{
		session.WithID(id),
		session.WithPolicy(s.cfg.Policy),
		session.WithLogger(s.logger),
		session.WithContext(s.sessionCtx),
	}
	if s.cfg.Recorder != nil {
		opts = append(opts, session.WithRecorder(s.cfg.Recorder))
	}
	return session.New(s.cfg.Service, opts...)
}

func (s *Server) expire(id string) {
	if s.cfg.Pruner == nil {
		return
	}
	if err := s.cfg.Pruner.Prune(context.Background(), id); err != nil {
		s.logger.Warn("failed to prune journal for expired session", "session", id, "error", err)
	}
}

// Close cancels the browser sessions' outstanding requests and waits for
// them to settle.
func (s *Server) Close() {
	s.stop()
	s.registry.Close()
}

// Registry returns the browser session registry.
func (s *Server) Registry() *registry.Registry { return s.registry }

// Handler builds the routed handler with middleware.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5, "text/html", "text/css"),
	)
	if err := router.SetupRoutes(r, s.registry, s.cfg.History, s.cfg.ServiceURL, s.cfg.Dev); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.cfg.Port), "service", s.cfg.ServiceURL)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		return s.registry.RunSweeper(egctx, DefaultSweepInterval, s.cfg.SessionTTL)
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		// Closing the notifiers ends the open update streams so Shutdown
		// does not wait on them.
		s.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
