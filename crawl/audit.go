// Package crawl provides the site audit: page discovery, concurrent
// fetching with per-domain politeness and aggregation of page reports.
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/webtools"
	"golang.org/x/sync/errgroup"
)

// Audit limits.
const (
	DefaultMaxPages    = 20
	MaxPagesLimit      = 50
	DefaultConcurrency = 4
)

// Page sources reported by an audit.
const (
	SourceSitemap = "sitemap"
	SourceLinks   = "links"
)

// Auditor audits a site by analyzing up to MaxPages of its pages.
// Pages come from the sitemap when one exists and from same-host link
// walking otherwise.
type Auditor struct {
	Sitemaps    webtools.SitemapService
	Fetcher     webtools.Fetcher
	Analyzer    webtools.PageAnalyzer
	Links       webtools.LinkExtractor
	Limiter     webtools.DomainLimiter
	Concurrency int
	RetryDelays []time.Duration
	Logger      *slog.Logger
}

// AuditRequest is the input of a site audit.
type AuditRequest struct {
	URL        string   `json:"url"`
	MaxPages   int      `json:"maxPages,omitempty"`
	Include    []string `json:"include,omitempty"`
	Exclude    []string `json:"exclude,omitempty"`
	UseSitemap *bool    `json:"useSitemap,omitempty"`
}

// pageResult holds the outcome of auditing a single URL.
type pageResult struct {
	url        string
	report     *webtools.PageReport
	discovered []webtools.Link
	err        error
}

// Audit discovers and analyzes pages of the site at req.URL.
// Per-page failures are reported in the result; only invalid input and
// context cancellation fail the audit as a whole.
func (a *Auditor) Audit(ctx context.Context, req AuditRequest) (*AuditReport, error) {
	start, err := parseStartURL(req.URL)
	if err != nil {
		return nil, err
	}

	maxPages := req.MaxPages
	switch {
	case maxPages < 0:
		return nil, webtools.Errorf(webtools.EINVALID, "maxPages must not be negative")
	case maxPages == 0:
		maxPages = DefaultMaxPages
	case maxPages > MaxPagesLimit:
		return nil, webtools.Errorf(webtools.EINVALID, "maxPages must be at most %d", MaxPagesLimit)
	}

	filter, err := webtools.NewURLFilter(req.Include, req.Exclude)
	if err != nil {
		return nil, err
	}

	if a.Sitemaps != nil && (req.UseSitemap == nil || *req.UseSitemap) {
		urls, err := a.Sitemaps.DiscoverURLs(ctx, start.String(), filter)
		switch {
		case err == nil && len(urls) > 0:
			if len(urls) > maxPages {
				urls = urls[:maxPages]
			}
			results, err := a.auditURLs(ctx, urls)
			if err != nil {
				return nil, err
			}
			return buildReport(start.String(), SourceSitemap, results), nil
		case webtools.ErrorCode(err) == webtools.EINVALID:
			return nil, err
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			a.logger().Debug("sitemap discovery failed, walking links", "url", start.String(), "err", err)
		}
	}

	results, err := a.walk(ctx, start, filter, maxPages)
	if err != nil {
		return nil, err
	}
	return buildReport(start.String(), SourceLinks, results), nil
}

// auditURLs analyzes a fixed list of URLs with bounded concurrency.
func (a *Auditor) auditURLs(ctx context.Context, urls []string) ([]pageResult, error) {
	results := make([]pageResult, len(urls))

	var g errgroup.Group
	g.SetLimit(a.concurrency())
	for i, u := range urls {
		g.Go(func() error {
			results[i] = a.auditPage(ctx, u, false)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// auditPage fetches and analyzes one page. Links are extracted only when
// the caller walks the site.
func (a *Auditor) auditPage(ctx context.Context, pageURL string, withLinks bool) pageResult {
	result := pageResult{url: pageURL}

	u, err := url.Parse(pageURL)
	if err != nil {
		result.err = webtools.Errorf(webtools.EINVALID, "invalid URL: %v", err)
		return result
	}

	if a.Limiter != nil {
		if err := a.Limiter.Wait(ctx, u.Host); err != nil {
			result.err = err
			return result
		}
	}

	delays := a.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetryDelays(ctx, pageURL, a.Fetcher.Fetch, a.Logger, delays)
	if err != nil {
		result.err = err
		return result
	}

	report, err := a.Analyzer.AnalyzePage(html, pageURL)
	if err != nil {
		result.err = err
		return result
	}
	report.URL = pageURL
	result.report = report

	if withLinks && a.Links != nil {
		if links, err := a.Links.ExtractLinks(html, pageURL); err == nil {
			result.discovered = links
		}
	}
	return result
}

func (a *Auditor) concurrency() int {
	if a.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return a.Concurrency
}

func (a *Auditor) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

func parseStartURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, webtools.Errorf(webtools.EINVALID, "unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "URL must include a host")
	}
	u.Fragment = ""
	return u, nil
}
