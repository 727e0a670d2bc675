package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient. [Retry] only tries again
// for errors wrapped in it; the [Client] wraps transport failures and 5xx
// responses.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Backoff is a retry policy: up to Attempts calls, waiting Delay before the
// second and doubling the wait after each further failure.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBackoff is used for zero Backoff fields: 3 attempts, 1s first wait.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// withDefaults fills zero or negative fields from [DefaultBackoff].
func (b Backoff) withDefaults() Backoff {
	if b.Attempts <= 0 {
		b.Attempts = DefaultBackoff.Attempts
	}
	if b.Delay <= 0 {
		b.Delay = DefaultBackoff.Delay
	}
	return b
}

// Do runs fn under the policy.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	b = b.withDefaults()
	return Retry(ctx, b.Attempts, b.Delay, fn)
}

// Retry calls fn up to attempts times, sleeping delay (doubled each time)
// between retryable failures. Other errors return immediately. A cancelled
// ctx ends the wait with ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
				delay *= 2
			}
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
