package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter to provide a simpler interface.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter creates a new token bucket limiter.
// r: tokens per second, zero or less means unlimited.
// b: burst size.
func NewLimiter(r float64, b int) *Limiter {
	limit := rate.Limit(r)
	if r <= 0 {
		limit = rate.Inf
	}
	return &Limiter{
		inner: rate.NewLimiter(limit, b),
	}
}

// Allow reports whether an event with weight n may happen now.
func (l *Limiter) Allow(n int) bool {
	return l.inner.AllowN(time.Now(), n)
}

// Wait blocks until n tokens are available.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	return l.inner.WaitN(ctx, n)
}

// SetRate changes the refill rate and burst, e.g. after a config reload.
func (l *Limiter) SetRate(r float64, b int) {
	now := time.Now()
	if r <= 0 {
		l.inner.SetLimitAt(now, rate.Inf)
	} else {
		l.inner.SetLimitAt(now, rate.Limit(r))
	}
	l.inner.SetBurstAt(now, b)
}
