package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	ctx := context.Background()
	errTransient := errors.New("transient")

	calls := 0
	err := Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: errTransient}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("Retry = %v after %d calls, want success after 3", err, calls)
	}

	calls = 0
	err = Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) || calls != 1 {
		t.Errorf("non-retryable error retried: %v after %d calls", err, calls)
	}

	calls = 0
	err = Retry(ctx, 2, time.Millisecond, func() error {
		calls++
		return &RetryableError{Err: errTransient}
	})
	if !errors.Is(err, errTransient) || calls != 2 {
		t.Errorf("exhausted retry = %v after %d calls", err, calls)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: ErrNetwork}
	})
	if err != context.Canceled {
		t.Errorf("Retry = %v, want context.Canceled", err)
	}
}

func TestBackoff(t *testing.T) {
	if got := (Backoff{}).withDefaults(); got != DefaultBackoff {
		t.Errorf("zero Backoff defaults = %+v, want %+v", got, DefaultBackoff)
	}
	if got := (Backoff{Attempts: 5, Delay: -1}).withDefaults(); got.Attempts != 5 || got.Delay != DefaultBackoff.Delay {
		t.Errorf("partial Backoff defaults = %+v", got)
	}

	calls := 0
	err := Backoff{Attempts: 4, Delay: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		return &RetryableError{Err: ErrNetwork}
	})
	if !errors.Is(err, ErrNetwork) || calls != 4 {
		t.Errorf("Do = %v after %d calls, want ErrNetwork after 4", err, calls)
	}
}
