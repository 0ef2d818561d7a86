package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/routelens/internal/testutil"
)

func TestFileWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plants.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o600))

	var calls atomic.Int32
	got := make(chan string, 4)
	w := New(path, func(p string) {
		calls.Add(1)
		got <- p
	}, WithDebounce(50*time.Millisecond), WithLogger(testutil.NewTestLogger(t)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o600))
	}

	select {
	case p := <-got:
		assert.Equal(t, path, p)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestFileWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plants.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o600))

	var calls atomic.Int32
	w := New(path, func(string) { calls.Add(1) }, WithDebounce(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestFileWatcher_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope", "plants.xlsx"), func(string) {})
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}
