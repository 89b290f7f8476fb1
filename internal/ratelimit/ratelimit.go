// Package ratelimit paces output lines.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles emitted lines. The zero rate means unlimited.
type Limiter struct {
	limiter *rate.Limiter
}

// New uses 0 or negative linesPerSecond for no rate limiting.
func New(linesPerSecond float64) *Limiter {
	if linesPerSecond <= 0 {
		return &Limiter{
			limiter: rate.NewLimiter(rate.Inf, 1),
		}
	}

	// Burst of 1: the first line goes out immediately, the rest are spaced.
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(linesPerSecond), 1),
	}
}

// Wait blocks until the next line may be written or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.Unlimited() {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}

func (l *Limiter) Unlimited() bool {
	return l.limiter.Limit() == rate.Inf
}

func (l *Limiter) Limit() float64 {
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}
