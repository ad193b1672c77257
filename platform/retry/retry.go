// Package retry runs an operation a bounded number of times with quadratic
// backoff between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy bounds a retried operation.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	// Retryable decides whether err may be retried. Nil retries everything
	// except context cancellation.
	Retryable func(err error) bool
	// OnRetry is called after each failed attempt that will be retried.
	OnRetry func(attempt int, err error)
	// Sleep waits between attempts; tests replace it to avoid real delays.
	Sleep func(ctx context.Context, d time.Duration) error
}

// ExhaustedError is returned once every attempt failed with a retryable error.
type ExhaustedError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: gave up after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Delay is the wait before the attempt following attempt n (1-based).
func Delay(base time.Duration, n int) time.Duration {
	return time.Duration(n*n) * base
}

// Do calls fn until it succeeds, returns a non-retryable error, or the policy
// runs out of attempts.
func Do(ctx context.Context, op string, p Policy, fn func(ctx context.Context) error) error {
	if p.Attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", op)
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = wait
	}

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !retryable(p, err) {
			return err
		}
		lastErr = err

		if attempt < p.Attempts {
			if p.OnRetry != nil {
				p.OnRetry(attempt, err)
			}
			if err := sleep(ctx, Delay(p.BaseDelay, attempt)); err != nil {
				return err
			}
		}
	}

	return &ExhaustedError{Op: op, Attempts: p.Attempts, Err: lastErr}
}

func retryable(p Policy, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
