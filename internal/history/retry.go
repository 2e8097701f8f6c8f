package history

import (
	"context"
	"math"
	"time"

	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/observability"
)

const (
	maxRetries     = 3
	initialBackoff = 250 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// RetryConfig holds retry configuration for reaching the database.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: initialBackoff,
		MaxBackoff:     maxBackoff,
	}
}

// calculateBackoff calculates exponential backoff duration
func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	backoff := float64(config.InitialBackoff) * math.Pow(2, float64(attempt))
	if backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}
	return time.Duration(backoff)
}

// withRetry calls fn until it succeeds, the attempts run out or ctx ends.
func withRetry(ctx context.Context, config RetryConfig, logger *observability.Logger, fn func(context.Context) error) error {
	if logger == nil {
		logger = observability.Nop()
	}
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}

		// Don't wait after last attempt
		if attempt == config.MaxRetries {
			break
		}

		backoff := calculateBackoff(attempt, config)
		logger.Warn().
			Int("attempt", attempt+1).
			Int("max_retries", config.MaxRetries).
			Dur("backoff", backoff).
			Err(lastErr).
			Msg("History database not reachable, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return domain.StorageError("history database not reachable", lastErr)
}
