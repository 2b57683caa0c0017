package campaign

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure that is worth another attempt,
// such as a network error or a 5xx response.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// RetryPolicy configures Retry.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetryPolicy is 3 attempts starting at 500ms, doubling each time.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Delay: 500 * time.Millisecond}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The delay doubles after each failure.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	attempts := max(policy.Attempts, 1)
	delay := policy.Delay
	var lastErr error

	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.As(err, new(*RetryableError)) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
