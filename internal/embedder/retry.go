package embedder

import (
	"context"
	"time"
)

// withRetry runs fn up to maxRetries times with exponential backoff,
// returning the last error if every attempt fails. It respects ctx
// cancellation between attempts.
func withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	backoff := 500 * time.Millisecond
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
