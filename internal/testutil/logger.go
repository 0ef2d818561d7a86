// Package testutil holds shared test fixtures: a fake data service, a demo
// dataset and loggers that write through testing.TB.
package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// LogCapture keeps the message of every record at or above its level.
// Records still reach t.Log.
type LogCapture struct {
	slog.Handler
	level slog.Level

	mu   *sync.Mutex
	msgs *[]string
}

// NewLogCapture returns a logger and the capture behind it.
func NewLogCapture(t testing.TB, level slog.Level) (*slog.Logger, *LogCapture) {
	t.Helper()
	c := &LogCapture{
		Handler: slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}),
		level:   level,
		mu:      &sync.Mutex{},
		msgs:    &[]string{},
	}
	return slog.New(c), c
}

// Handle implements slog.Handler.
func (c *LogCapture) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= c.level {
		c.mu.Lock()
		*c.msgs = append(*c.msgs, r.Message)
		c.mu.Unlock()
	}
	return c.Handler.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogCapture{Handler: c.Handler.WithAttrs(attrs), level: c.level, mu: c.mu, msgs: c.msgs}
}

// WithGroup implements slog.Handler.
func (c *LogCapture) WithGroup(name string) slog.Handler {
	return &LogCapture{Handler: c.Handler.WithGroup(name), level: c.level, mu: c.mu, msgs: c.msgs}
}

// Messages returns the captured messages in order.
func (c *LogCapture) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), *c.msgs...)
}
