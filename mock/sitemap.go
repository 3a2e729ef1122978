package mock

import (
	"context"

	"github.com/fwojciec/webtools"
)

var _ webtools.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of webtools.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *webtools.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *webtools.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
