package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func noSleep(context.Context, time.Duration) error { return nil }

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "op", Policy{Attempts: 3, Sleep: noSleep}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("temporary")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoReturnsExhaustedError(t *testing.T) {
	cause := errors.New("connection reset")
	calls := 0
	err := Do(context.Background(), "fetch", Policy{Attempts: 3, Sleep: noSleep}, func(context.Context) error {
		calls++
		return cause
	})

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %T", err)
	}
	if exhausted.Attempts != 3 || calls != 3 {
		t.Fatalf("expected 3 attempts, got %d (calls %d)", exhausted.Attempts, calls)
	}
	if !errors.Is(err, cause) {
		t.Fatal("exhausted error must wrap the last cause")
	}
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	policy := Policy{
		Attempts:  5,
		Sleep:     noSleep,
		Retryable: func(err error) bool { return !errors.Is(err, permanent) },
	}
	err := Do(context.Background(), "op", policy, func(context.Context) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Fatalf("expected single call returning permanent error, got %v after %d calls", err, calls)
	}
}

func TestDoNeverRetriesCancellation(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "op", Policy{Attempts: 3, Sleep: noSleep}, func(context.Context) error {
		calls++
		return context.Canceled
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Fatalf("expected cancellation to stop retries, got %v after %d calls", err, calls)
	}
}

func TestDelayIsQuadratic(t *testing.T) {
	base := 200 * time.Millisecond
	want := []time.Duration{200 * time.Millisecond, 800 * time.Millisecond, 1800 * time.Millisecond}
	for i, w := range want {
		if got := Delay(base, i+1); got != w {
			t.Errorf("Delay(%v, %d) = %v, want %v", base, i+1, got, w)
		}
	}
}
