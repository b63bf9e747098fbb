package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	got, err := DoValue(context.Background(), 2, time.Millisecond, func(context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("DoValue: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got %q", got)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestFirstSuccessSkipsRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), 2, time.Millisecond, func(context.Context) error {
		attempts++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestFinalErrorPropagatesUnchanged(t *testing.T) {
	sentinel := errors.New("upstream broken")
	attempts := 0
	err := Do(context.Background(), 2, time.Millisecond, func(context.Context) error {
		attempts++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want %v", err, sentinel)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want maxRetries+1 = 3", attempts)
	}
}

func TestBackoffGrowsGeometrically(t *testing.T) {
	start := time.Now()
	base := 20 * time.Millisecond
	err := Do(context.Background(), 2, base, func(context.Context) error {
		return errors.New("never")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	// Delays of base and 2*base between the three attempts.
	if elapsed := time.Since(start); elapsed < 3*base {
		t.Fatalf("returned after %v, want at least %v of backoff", elapsed, 3*base)
	}
}

func TestCancellationStopsBeforeNextDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sentinel := errors.New("still failing")
	attempts := 0

	start := time.Now()
	err := Do(ctx, 5, time.Hour, func(context.Context) error {
		attempts++
		cancel()
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want last operation error", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("cancellation should preempt the delay, took %v", elapsed)
	}
}

func TestPreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Do(ctx, 2, time.Millisecond, func(context.Context) error {
		attempts++
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if attempts != 0 {
		t.Fatalf("operation ran %d times on a dead context", attempts)
	}
}
