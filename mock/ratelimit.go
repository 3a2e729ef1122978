package mock

import (
	"context"

	"github.com/fwojciec/webtools"
)

var _ webtools.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a mock implementation of webtools.RateLimiter.
type RateLimiter struct {
	AllowFn func(ctx context.Context, key string) error
}

func (l *RateLimiter) Allow(ctx context.Context, key string) error {
	return l.AllowFn(ctx, key)
}

var _ webtools.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of webtools.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
