package serp

import (
	"context"
	"errors"
	"math"
	"time"
)

// retry runs a function with exponential backoff
type retry struct {
	maxRetries        int
	retryDelay        time.Duration
	backoffMultiplier float64
}

func newRetry(maxRetries int, retryDelay time.Duration) *retry {
	return &retry{
		maxRetries:        maxRetries,
		retryDelay:        retryDelay,
		backoffMultiplier: 2.0,
	}
}

// Execute runs fn until it succeeds, returns a non-retryable error, or the
// retries are used up
func (r *retry) Execute(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == r.maxRetries || !isRetryable(err) {
			break
		}

		delay := time.Duration(float64(r.retryDelay) * math.Pow(r.backoffMultiplier, float64(attempt)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// isRetryable retries network errors, timeouts, 5xx and 429, but not other
// client errors
func isRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	var decodeErr *DecodeError
	return !errors.As(err, &decodeErr)
}
