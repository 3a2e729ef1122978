package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webtools"
)

// Ensure LoggingSitemapService implements webtools.SitemapService.
var _ webtools.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps the sitemap discovery behind sitemap-checker
// and the site audit.
type LoggingSitemapService struct {
	next   webtools.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next webtools.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service and logs how many URLs
// survived the include and exclude patterns.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *webtools.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"host", hostOf(baseURL),
			"urls", len(urls),
			"duration", time.Since(begin),
		}
		if filter != nil {
			attrs = append(attrs, "include", len(filter.Include), "exclude", len(filter.Exclude))
		}
		if err != nil {
			s.logger.Log(ctx, fetchFailureLevel(err), "sitemap discovery", append(attrs, "code", webtools.ErrorCode(err), "err", err)...)
			return
		}
		s.logger.Info("sitemap discovery", attrs...)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, filter)
}
