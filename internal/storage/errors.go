package storage

import (
	"context"
	"errors"
	"net"
)

// Storage errors shared by all source and sink implementations.
var (
	// ErrPermissionDenied is returned on authentication or authorization
	// failures. Never retried.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

// TransientError marks a failure worth retrying: timeouts, dropped
// connections, rate limits. Permission and malformed-query errors are never
// wrapped in it.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is marked retryable, either explicitly
// or because it is a network/timeout failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
