package session

import (
	"fmt"
	"strings"
	"sync"
)

// Dispatcher runs the session's asynchronous fetches.
type Dispatcher interface {
	// Go starts fn without blocking the caller.
	Go(fn func())
	// Wait blocks until every started fn has returned.
	Wait()
}

// GoDispatcher runs each fetch on its own goroutine.
type GoDispatcher struct {
	wg sync.WaitGroup
}

// Go implements Dispatcher.
func (d *GoDispatcher) Go(fn func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn()
	}()
}

// Wait implements Dispatcher.
func (d *GoDispatcher) Wait() { d.wg.Wait() }

// Policy decides what a setter does with a value outside the cached
// option set.
type Policy int

const (
	// PolicyLenient logs a warning and leaves state unchanged.
	PolicyLenient Policy = iota
	// PolicyStrict panics with *InvariantError.
	PolicyStrict
)

func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "lenient"
}

// ParsePolicy parses "strict" or "lenient".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return PolicyLenient, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return PolicyLenient, fmt.Errorf("invalid selection policy %q (use strict or lenient)", s)
	}
}
