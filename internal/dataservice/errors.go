package dataservice

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrService matches any response in which the data service reported a
	// failure or sent something that could not be decoded.
	ErrService = errors.New("data service error")
	// ErrUnreachable matches requests that never produced a response.
	ErrUnreachable = errors.New("data service unreachable")
)

// ServiceError is a failure reported by the data service itself.
type ServiceError struct {
	Op       string
	Status   int
	Messages []string
}

func (e *ServiceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", ErrService, e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, "; "))
	}
	return b.String()
}

// Is lets errors.Is(err, ErrService) match.
func (e *ServiceError) Is(target error) bool { return target == ErrService }

// Message returns the service's own wording, or a generic description when
// it sent none.
func (e *ServiceError) Message() string {
	if len(e.Messages) > 0 {
		return strings.Join(e.Messages, "; ")
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s failed with status %d", e.Op, e.Status)
	}
	return e.Op + " failed"
}
