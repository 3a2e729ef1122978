// Package rate provides in-memory per-key rate limiting using token buckets
// from golang.org/x/time/rate.
package rate

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/webtools"
	"golang.org/x/time/rate"
)

var (
	_ webtools.RateLimiter   = (*Limiter)(nil)
	_ webtools.DomainLimiter = (*Limiter)(nil)
)

// maxKeys is the number of tracked keys above which idle buckets are dropped.
const maxKeys = 10000

// Limiter keeps a separate token bucket for each key. API clients use Allow,
// which never blocks; the site audit uses Wait to stay polite to each domain.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int

	// Now returns the current time; replaceable in tests.
	Now func() time.Time
}

// NewLimiter creates a Limiter allowing rps requests per second per key with
// the given burst. A burst below 1 is raised to 1.
func NewLimiter(rps float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
		Now:      time.Now,
	}
}

// NewDomainLimiter creates a Limiter with a burst of 1 (no bursting), which
// spaces requests to the same domain evenly.
func NewDomainLimiter(rps float64) *Limiter {
	return NewLimiter(rps, 1)
}

// Allow returns ERATELIMIT if key has exhausted its bucket.
func (l *Limiter) Allow(_ context.Context, key string) error {
	now := l.Now()
	if !l.get(key, now).AllowN(now, 1) {
		return webtools.Errorf(webtools.ERATELIMIT, "rate limit exceeded, slow down")
	}
	return nil
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (l *Limiter) Wait(ctx context.Context, domain string) error {
	return l.get(domain, l.Now()).Wait(ctx)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *Limiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxKeys {
			l.sweep(now)
		}
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

// sweep drops buckets that have refilled completely; recreating them later
// yields the same state. Callers hold l.mu.
func (l *Limiter) sweep(now time.Time) {
	for key, limiter := range l.limiters {
		if limiter.TokensAt(now) >= float64(l.burst) {
			delete(l.limiters, key)
		}
	}
}
