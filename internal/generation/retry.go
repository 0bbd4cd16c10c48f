package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// RetryConfig controls how provider clients retry transient failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// transientError marks an error worth retrying.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err so WithRetry tries again.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// WithRetry calls fn until it succeeds, returns a permanent error or the
// retry budget is spent. Delays grow exponentially with jitter:
// delay = base * 2^attempt * (0.5 + rand(0, 0.5)).
func WithRetry(ctx context.Context, cfg RetryConfig, logger *slog.Logger, fn func(attempt int) error) error {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		if attempt >= cfg.MaxRetries {
			return fmt.Errorf("%w: exceeded maximum retry attempts (%d): %w", ErrTransientFailure, cfg.MaxRetries, err)
		}

		backoff := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5))

		logger.WarnContext(ctx, "retrying model call after transient error",
			"attempt", attempt+1,
			"delay_ms", delay.Milliseconds(),
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
