package worker

import (
	"context"
	"time"
)

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule with base b: attempt 1 = immediate, 2 = b, 3 = 2b, 4 = 4b.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			wait := base << (attempt - 2)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err = fn(attempt); err == nil {
			return nil
		}
	}
	return err
}
