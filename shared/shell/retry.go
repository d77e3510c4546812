package shell

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/fitgrid/platform/eventstore"
)

const (
	defaultRetryMaxAttempts  = 3
	defaultRetryBaseDelay    = 10 * time.Millisecond
	defaultRetryJitterFactor = 0.3
)

// RetryOption configures the retry behavior.
type RetryOption func(*retryConfig)

type retryConfig struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
}

// WithMaxAttempts sets the total number of attempts including the first one.
func WithMaxAttempts(maxAttempts int) RetryOption {
	return func(cfg *retryConfig) {
		if maxAttempts > 0 {
			cfg.maxAttempts = maxAttempts
		}
	}
}

// WithBaseDelay sets the delay before the first retry, doubled per attempt.
func WithBaseDelay(baseDelay time.Duration) RetryOption {
	return func(cfg *retryConfig) {
		if baseDelay > 0 {
			cfg.baseDelay = baseDelay
		}
	}
}

// WithJitterFactor sets the random jitter applied to each delay, 0 to 1.
func WithJitterFactor(jitterFactor float64) RetryOption {
	return func(cfg *retryConfig) {
		if jitterFactor >= 0 && jitterFactor <= 1 {
			cfg.jitterFactor = jitterFactor
		}
	}
}

// RetryOnConcurrencyConflict executes operation and retries it with
// exponential backoff and jitter as long as it fails with
// eventstore.ErrConcurrencyConflict. Any other error returns immediately,
// a conflict on the final attempt is returned as is.
func RetryOnConcurrencyConflict(ctx context.Context, operation func(ctx context.Context) error, options ...RetryOption) error {
	cfg := &retryConfig{
		maxAttempts:  defaultRetryMaxAttempts,
		baseDelay:    defaultRetryBaseDelay,
		jitterFactor: defaultRetryJitterFactor,
	}

	for _, option := range options {
		option(cfg)
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}

		if !errors.Is(lastErr, eventstore.ErrConcurrencyConflict) {
			return lastErr
		}

		if attempt == cfg.maxAttempts {
			break
		}

		delay := cfg.baseDelay << (attempt - 1)
		if cfg.jitterFactor > 0 {
			jitter := time.Duration(float64(delay) * cfg.jitterFactor * rand.Float64())
			delay += jitter
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return lastErr
}
