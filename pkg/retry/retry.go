package retry

import (
	"context"
	"fmt"
	"time"

	"dyscraper/pkg/logger"
)

// Operation is a function that performs an operation that might need retrying
type Operation func() error

// OperationWithResult is a function that returns a result and might need retrying
type OperationWithResult[T any] func() (T, error)

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the total number of attempts, including the first
	MaxAttempts int
	// Delay is the constant wait between a failed attempt and the next one
	Delay time.Duration
	// OnRetry is called after a failed attempt that will be retried
	OnRetry func(attempt int, err error, delay time.Duration)
	// Context for cancellation
	Context context.Context
	// Logger for retry attempts
	Logger logger.Logger
}

// DefaultConfig returns the default policy: 5 attempts, 2s apart
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 5,
		Delay:       2 * time.Second,
		Context:     context.Background(),
		Logger:      logger.NewNopLogger(),
	}
}

// Do runs op until it succeeds or MaxAttempts is reached. Every error is
// retried the same way. When attempts run out the last error is returned
// unchanged.
func Do(op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}

		err := op()
		if err == nil {
			if attempt > 1 {
				log.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, cfg.Delay)
		}
		logger.LogRetry(log, attempt, maxAttempts, cfg.Delay, err)

		if err := Wait(ctx, cfg.Delay); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}

	log.WithError(lastErr).WarnWithFields("retry attempts exhausted", map[string]interface{}{
		"attempts": maxAttempts,
	})
	return lastErr
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

// Wait sleeps for delay or until ctx is done
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
