package waapi

import (
	"context"
	"time"
)

// backoff returns the wait after a failed attempt (0-based): 2^attempt
// seconds for transport failures, 5*(attempt+1) seconds for rate limits.
func backoff(kind Kind, attempt int) time.Duration {
	switch kind {
	case KindConnection:
		return time.Duration(1<<uint(attempt)) * time.Second
	case KindRateLimit:
		return time.Duration(5*(attempt+1)) * time.Second
	default:
		return 0
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
