package util

import (
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter to provide a simpler interface.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter creates a token bucket limiter with r tokens per second and
// burst b.
func NewLimiter(r float64, b int) *Limiter {
	return &Limiter{
		inner: rate.NewLimiter(rate.Limit(r), b),
	}
}

// NewPerMinuteLimiter allows n events per minute with a burst of n. n <= 0
// yields a limiter that never blocks.
func NewPerMinuteLimiter(n int) *Limiter {
	if n <= 0 {
		return &Limiter{inner: rate.NewLimiter(rate.Inf, 1)}
	}
	return NewLimiter(float64(n)/60, n)
}

// Allow reports whether an event with weight n may happen now.
func (l *Limiter) Allow(n int) bool {
	return l.inner.AllowN(time.Now(), n)
}
