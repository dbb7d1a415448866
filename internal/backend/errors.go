package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when an operation is attempted while the
	// link is down.
	ErrNotConnected = errors.New("backend: not connected")

	// ErrNotRegistered is returned by state and heartbeat calls made
	// without device credentials.
	ErrNotRegistered = errors.New("backend: device not registered")

	// ErrUnclaimed means the backend knows the device but no user has
	// claimed it yet (HTTP 409).
	ErrUnclaimed = errors.New("backend: device not claimed")

	// ErrUnexpectedStatus wraps any other non-success HTTP status.
	ErrUnexpectedStatus = errors.New("backend: unexpected status")

	// ErrMalformedResponse is returned when a response body cannot be used.
	ErrMalformedResponse = errors.New("backend: malformed response")
)

// StatusError carries the HTTP status of a failed call. It matches
// ErrUnexpectedStatus (or ErrUnclaimed for 409) under errors.Is.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: %s: http %d", e.Op, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	if e.StatusCode == 409 {
		return target == ErrUnclaimed
	}
	return target == ErrUnexpectedStatus
}
