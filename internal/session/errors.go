package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/routelens/internal/dataservice"
)

// ValidationError is an uploaded dataset that the service rejected as
// structurally incomplete. Messages keep the service's order.
type ValidationError struct {
	Messages []string `json:"messages" yaml:"messages"`
}

func (e *ValidationError) Error() string {
	return "dataset validation failed: " + strings.Join(e.Messages, "; ")
}

// TransportError is a failed upload, default load or route fetch.
type TransportError struct {
	Op  string `json:"op" yaml:"op"`
	Msg string `json:"message" yaml:"message"`
	Err error  `json:"-" yaml:"-"`
}

func newTransportError(op string, err error) *TransportError {
	msg := err.Error()
	var se *dataservice.ServiceError
	if errors.As(err, &se) {
		msg = se.Message()
	}
	return &TransportError{Op: op, Msg: msg, Err: err}
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Msg }

func (e *TransportError) Unwrap() error { return e.Err }

// Message is the single line shown to the user.
func (e *TransportError) Message() string { return e.Error() }

// InvariantError is raised, as a panic, when a setter receives a value that
// is not in the cached option set and the policy is strict.
type InvariantError struct {
	Level string
	Value string
	Scope string
}

func (e *InvariantError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("session: %s %q is not a cached option for %q", e.Level, e.Value, e.Scope)
	}
	return fmt.Sprintf("session: %s %q is not a cached option", e.Level, e.Value)
}
