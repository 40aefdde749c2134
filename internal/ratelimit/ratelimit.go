// Package ratelimit provides the process-wide throttle shared by every
// outbound provider call.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces the start of successive calls at least Interval apart,
// across all goroutines sharing it. Only the start is serialized: once a
// caller's wait returns, a slow response does not hold up anyone else.
type Limiter struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// New returns a Limiter for the given interval. A non-positive interval
// disables throttling.
func New(interval time.Duration) *Limiter {
	if interval <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// FromSeconds is New for a configuration value expressed in seconds.
func FromSeconds(seconds float64) *Limiter {
	return New(time.Duration(math.Round(seconds * float64(time.Second))))
}

// Wait blocks until the caller may start its call or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// Interval returns the configured spacing between calls.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}
