package retry

import (
	"context"
	"fmt"
	"time"

	"repscout/pkg/logger"
)

// Operation is a function that performs an operation that might need retrying
type Operation func() error

// OperationWithResult is a function that returns a result and might need retrying
type OperationWithResult[T any] func() (T, error)

// Config holds retry configuration
type Config struct {
	// MaxRetries is the number of retries after the initial attempt
	MaxRetries int
	// Backoff strategy to use
	Backoff BackoffStrategy
	// RetryIf filters which failures are worth retrying. Nil retries every
	// error.
	RetryIf func(error) bool
	// Context for cancellation
	Context context.Context
	// Logger for retry attempts
	Logger logger.Logger
}

// DefaultConfig returns a retry configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MaxRetries: 3,
		Backoff:    NewExponentialBackoff(time.Second),
		Context:    context.Background(),
		Logger:     logger.GetLogger(),
	}
}

// Do executes an operation, retrying any failure up to MaxRetries additional
// times with the configured backoff. It does not distinguish retryable from
// fatal errors; callers needing that must filter before retrying. Exhausting
// the retry budget returns the last failure.
func Do(op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := cfg.Backoff.NextDelay(attempt)

			if cfg.Logger != nil {
				cfg.Logger.WarnWithFields("retrying operation", map[string]interface{}{
					"attempt":     attempt,
					"max_retries": cfg.MaxRetries,
					"delay_ms":    delay.Milliseconds(),
					"error":       lastErr.Error(),
				})
			}

			if err := Wait(ctx, delay); err != nil {
				return fmt.Errorf("retry cancelled: %w", err)
			}
		}

		err := op()
		if err == nil {
			if attempt > 0 && cfg.Logger != nil {
				cfg.Logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}
		if cfg.RetryIf != nil && !cfg.RetryIf(err) {
			return err
		}
		lastErr = err
	}

	if cfg.Logger != nil {
		cfg.Logger.ErrorWithFields("max retries exceeded", map[string]interface{}{
			"max_retries": cfg.MaxRetries,
			"last_error":  lastErr.Error(),
		})
	}
	return fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, lastErr)
}

// DoWithResult executes an operation that returns a result with retry logic
func DoWithResult[T any](op OperationWithResult[T], cfg *Config) (T, error) {
	var result T

	err := Do(func() error {
		var opErr error
		result, opErr = op()
		return opErr
	}, cfg)

	return result, err
}

// WithRetry retries op up to maxRetries additional times, delaying
// baseDelay * 2^attempt between attempts.
func WithRetry(ctx context.Context, op Operation, maxRetries int, baseDelay time.Duration) error {
	return Do(op, &Config{
		MaxRetries: maxRetries,
		Backoff:    NewExponentialBackoff(baseDelay),
		Context:    ctx,
		Logger:     logger.GetLogger(),
	})
}
