package embedder

import (
	"context"
	"time"
)

// Retry tuning for provider HTTP calls.
const (
	maxAttempts    = 3
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 5 * time.Second
	backoffGrowth  = 2
)

// withRetries runs call up to maxAttempts times, doubling the wait
// between attempts. Context cancellation stops both the waiting and any
// further attempts.
func withRetries[T any](ctx context.Context, call func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	wait := initialBackoff
	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := call()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if attempt == maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
		wait *= backoffGrowth
		if wait > maxBackoff {
			wait = maxBackoff
		}
	}

	return zero, lastErr
}
