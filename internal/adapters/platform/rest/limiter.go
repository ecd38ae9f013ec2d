package rest

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/olusolaa/gateway-sync/internal/core/ports"
)

const (
	DefaultRateLimitRPS = 20
	minRateLimitRPS     = 1
	maxRateLimitRPS     = 100
)

// NewLimiter returns a token bucket allowing rps requests per second with a
// burst of the same size. Out of range values fall back to the default.
func NewLimiter(ctx context.Context, rps int, logger ports.Logger) *rate.Limiter {
	limitValue := DefaultRateLimitRPS
	if rps >= minRateLimitRPS && rps <= maxRateLimitRPS {
		limitValue = rps
	} else if rps != 0 {
		logger.Warnf(ctx, "Invalid API RPS configured (%d), using default %d RPS. Valid range: %d-%d.", rps, DefaultRateLimitRPS, minRateLimitRPS, maxRateLimitRPS)
	}
	logger.Debugf(ctx, "Initialized API rate limiter: %d RPS", limitValue)
	return rate.NewLimiter(rate.Limit(limitValue), limitValue)
}

func wait(ctx context.Context, limiter *rate.Limiter, logger ports.Logger) error {
	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			logger.Warnf(ctx, "Error waiting for API rate limiter: %v", err)
		}
		return err
	}
	return nil
}
