package utils

import (
	"context"
	"time"
)

// RetryWithBackoff runs operation up to attempts times, doubling the
// delay between tries. It is meant for the transport call only; parsing
// and filesystem application are deterministic and must not be retried.
func RetryWithBackoff(ctx context.Context, attempts int, baseDelay time.Duration, operation func() error) error {
	var err error
	delay := baseDelay

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err = operation(); err == nil {
			return nil
		}
	}

	return err
}
