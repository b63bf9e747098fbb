// Package retry wraps fallible upstream calls with bounded exponential
// backoff. Only idempotent or safely-retriable operations belong here; never
// wrap a state-mutating write directly.
package retry

import (
	"context"
	"time"
)

// Do runs op up to maxRetries+1 times, sleeping baseDelay*2^attempt between
// failures. The final error is propagated unchanged. A cancelled context
// stops the loop before the next scheduled delay elapses.
func Do(ctx context.Context, maxRetries int, baseDelay time.Duration, op func(context.Context) error) error {
	_, err := DoValue(ctx, maxRetries, baseDelay, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a result.
func DoValue[T any](ctx context.Context, maxRetries int, baseDelay time.Duration, op func(context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == maxRetries {
			break
		}
		if err := sleep(ctx, baseDelay<<uint(attempt)); err != nil {
			return zero, lastErr
		}
	}
	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
