// Package notifier fans a browser session's state changes out to its open
// update streams.
package notifier

import "sync"

// Notifier pings every subscribed stream when the session state changes.
// A ping carries no data; the stream re-reads the session snapshot.
type Notifier struct {
	mu        sync.Mutex
	listeners map[chan struct{}]struct{}
	closed    bool
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{listeners: make(map[chan struct{}]struct{})}
}

// Subscribe returns a ping channel and the function that releases it.
// The channel is closed on release or when the notifier is closed, so a
// stream can range over it. Subscribing to a closed notifier returns a
// closed channel.
func (n *Notifier) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { n.release(ch) })
	}
}

func (n *Notifier) release(ch chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.listeners[ch]; ok {
		delete(n.listeners, ch)
		close(ch)
	}
}

// Broadcast pings all listeners without blocking. A listener with a ping
// already pending misses nothing, since pings coalesce.
func (n *Notifier) Broadcast() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of open streams.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// Close ends every stream. Later broadcasts do nothing.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for ch := range n.listeners {
		close(ch)
	}
	n.listeners = nil
}
