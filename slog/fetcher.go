package slog

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/webtools"
)

// Ensure LoggingFetcher implements webtools.Fetcher.
var _ webtools.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps the page fetcher used by the SEO tools and the site
// audit, logging each fetch with its host and size.
type LoggingFetcher struct {
	next   webtools.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next webtools.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher. Successful fetches are logged at
// debug level; failures of the remote site at warn and the rest at error.
func (f *LoggingFetcher) Fetch(ctx context.Context, pageURL string) (html string, err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		attrs := []any{
			"host", hostOf(pageURL),
			"url", pageURL,
			"bytes", len(html),
			"duration", time.Since(begin),
		}
		if err != nil {
			level = fetchFailureLevel(err)
			attrs = append(attrs, "code", webtools.ErrorCode(err), "err", err)
		}
		f.logger.Log(ctx, level, "page fetch", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, pageURL)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

func fetchFailureLevel(err error) slog.Level {
	switch webtools.ErrorCode(err) {
	case webtools.EINVALID, webtools.ENOTFOUND, webtools.EUNAVAILABLE, webtools.ERATELIMIT:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
