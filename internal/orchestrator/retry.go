package orchestrator

import (
	"context"
	"errors"
	"time"

	"time-to-shop/internal/pipeline"
	"time-to-shop/internal/storage"
)

// Default retry configuration values.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// RetryConfig bounds the retry loop for transient failures.
type RetryConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	MaxDelay    time.Duration
	BackoffMult float64
}

// DefaultRetryConfig returns the default bounded-backoff policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  DefaultRetryDelay,
		MaxDelay:    DefaultMaxDelay,
		BackoffMult: DefaultBackoffMult,
	}
}

// retryable reports whether an error is worth another attempt: transient
// storage failures and inference errors are; configuration, schema,
// invariant and permission errors never are.
func retryable(err error) bool {
	if errors.Is(err, storage.ErrPermissionDenied) {
		return false
	}
	if storage.IsTransient(err) {
		return true
	}
	var infErr *pipeline.InferenceError
	return errors.As(err, &infErr)
}

// withRetry runs fn with bounded attempts and exponential backoff.
// Non-retryable errors return immediately. Returns the number of attempts
// made alongside the final error.
func (c RetryConfig) withRetry(ctx context.Context, fn func() error) (int, error) {
	delay := c.RetryDelay
	var lastErr error

	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return attempt - 1, ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.BackoffMult)
			if delay > c.MaxDelay {
				delay = c.MaxDelay
			}
		}

		err := fn()
		if err == nil {
			return attempt, nil
		}
		if !retryable(err) {
			return attempt, err
		}
		lastErr = err
	}

	return c.MaxAttempts, lastErr
}
