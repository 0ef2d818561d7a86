package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_SubscribeRelease(t *testing.T) {
	n := New()

	ch, release := n.Subscribe()
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Len())

	release()
	release()
	assert.Equal(t, 0, n.Len())

	_, open := <-ch
	assert.False(t, open, "released channel should be closed")
}

func TestNotifier_Broadcast(t *testing.T) {
	n := New()
	ch1, release1 := n.Subscribe()
	ch2, release2 := n.Subscribe()
	defer release1()
	defer release2()

	n.Broadcast()

	for i, ch := range []<-chan struct{}{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(100 * time.Millisecond):
			t.Errorf("listener %d did not receive broadcast", i+1)
		}
	}
}

func TestNotifier_BroadcastCoalesces(t *testing.T) {
	n := New()
	ch, release := n.Subscribe()
	defer release()

	done := make(chan struct{})
	go func() {
		n.Broadcast()
		n.Broadcast()
		n.Broadcast()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Broadcast blocked on a full listener")
	}

	<-ch
	select {
	case <-ch:
		t.Fatal("pings should coalesce into one")
	default:
	}
}

func TestNotifier_Close(t *testing.T) {
	n := New()
	ch, release := n.Subscribe()

	n.Close()
	_, open := <-ch
	assert.False(t, open)

	// Releasing after close must not double-close.
	assert.NotPanics(t, release)
	assert.NotPanics(t, n.Broadcast)
	assert.NotPanics(t, n.Close)

	late, _ := n.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestNotifier_ConcurrentAccess(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, release := n.Subscribe()
			time.Sleep(time.Millisecond)
			release()
		}()
		go func() {
			defer wg.Done()
			n.Broadcast()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, n.Len())
}
