package middleware

import (
	"context"
	"time"

	"github.com/Jaypeg-dev/nextcloud-mcp/internal/caldav"
)

// DefaultMaxAttempts makes every remote call a single attempt unless
// NEXTCLOUD_MAX_RETRIES asks for more.
const DefaultMaxAttempts = 1

// retryBase is the first backoff interval. Tests shorten it.
var retryBase = time.Second

// WithRetry executes fn with exponential backoff on 429 and 503 responses.
// All other errors are returned immediately. Only wrap idempotent reads.
func WithRetry(ctx context.Context, maxAttempts int, fn func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt == maxAttempts-1 {
			return err
		}

		// Exponential backoff: 1s, 2s, 4s, 8s, ...
		backoff := retryBase * time.Duration(1<<uint(attempt))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return err
}

func retryable(err error) bool {
	switch caldav.StatusCode(err) {
	case 429, 503:
		return true
	}
	return false
}
