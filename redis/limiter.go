// Package redis provides a fixed-window rate limiter shared by every server
// instance connected to the same Redis.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/webtools"
	"github.com/redis/go-redis/v9"
)

var _ webtools.RateLimiter = (*Limiter)(nil)

// DefaultPrefix namespaces limiter keys.
const DefaultPrefix = "webtools:rl:"

// Limiter counts requests per key in fixed windows using INCR and EXPIRE.
// When Redis is unreachable requests are allowed and the failure is logged.
type Limiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	logger *slog.Logger

	// Prefix is prepended to every key.
	Prefix string
}

// NewLimiter creates a Limiter allowing limit requests per window per key.
func NewLimiter(client redis.UniversalClient, limit int, window time.Duration, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Limiter{
		client: client,
		limit:  limit,
		window: window,
		logger: logger,
		Prefix: DefaultPrefix,
	}
}

// Open parses a redis:// URL and returns a connected client.
func Open(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid redis url: %v", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Allow increments the counter for key and returns ERATELIMIT once the
// window's budget is spent.
func (l *Limiter) Allow(ctx context.Context, key string) error {
	count, err := l.increment(ctx, l.Prefix+key)
	if err != nil {
		l.logger.Warn("rate limiter unavailable, allowing request", "key", key, "error", err)
		return nil
	}
	if count > int64(l.limit) {
		return webtools.Errorf(webtools.ERATELIMIT, "rate limit of %d requests per %s exceeded", l.limit, l.window)
	}
	return nil
}

func (l *Limiter) increment(ctx context.Context, key string) (int64, error) {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr: %w", err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return 0, fmt.Errorf("expire: %w", err)
		}
	}

	return count, nil
}
