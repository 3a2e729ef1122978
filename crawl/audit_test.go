package crawl_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/crawl"
	"github.com/fwojciec/webtools/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSite is an in-memory site: every page's HTML is its own URL, so the
// analyzer and link extractor mocks can look pages up by content.
type testSite struct {
	titles       map[string]string
	descriptions map[string]string
	links        map[string][]string
	failing      map[string]error
}

type testMocks struct {
	Sitemaps *mock.SitemapService
	Fetcher  *mock.Fetcher
	Analyzer *mock.PageAnalyzer
	Links    *mock.LinkExtractor
	Limiter  *mock.DomainLimiter

	mu      sync.Mutex
	fetched []string
	waited  []string
}

func newTestAuditor(site testSite) (*crawl.Auditor, *testMocks) {
	m := &testMocks{}
	m.Sitemaps = &mock.SitemapService{
		DiscoverURLsFn: func(_ context.Context, _ string, _ *webtools.URLFilter) ([]string, error) {
			return nil, webtools.Errorf(webtools.ENOTFOUND, "no sitemap found")
		},
	}
	m.Fetcher = &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			m.mu.Lock()
			m.fetched = append(m.fetched, url)
			m.mu.Unlock()
			if err, ok := site.failing[url]; ok {
				return "", err
			}
			return url, nil
		},
	}
	m.Analyzer = &mock.PageAnalyzer{
		AnalyzePageFn: func(html string, _ string) (*webtools.PageReport, error) {
			return &webtools.PageReport{
				Title:       site.titles[html],
				Description: site.descriptions[html],
				Score:       80,
				WordCount:   100,
				Issues:      []webtools.Issue{{Code: "missing-h1", Severity: webtools.SeverityWarning, Message: "No H1"}},
			}, nil
		},
	}
	m.Links = &mock.LinkExtractor{
		ExtractLinksFn: func(html string, _ string) ([]webtools.Link, error) {
			var links []webtools.Link
			for _, u := range site.links[html] {
				links = append(links, webtools.Link{URL: u, Priority: webtools.PriorityContent})
			}
			return links, nil
		},
	}
	m.Limiter = &mock.DomainLimiter{
		WaitFn: func(_ context.Context, domain string) error {
			m.mu.Lock()
			m.waited = append(m.waited, domain)
			m.mu.Unlock()
			return nil
		},
	}

	a := &crawl.Auditor{
		Sitemaps:    m.Sitemaps,
		Fetcher:     m.Fetcher,
		Analyzer:    m.Analyzer,
		Links:       m.Links,
		Limiter:     m.Limiter,
		Concurrency: 3,
		RetryDelays: []time.Duration{time.Millisecond},
	}
	return a, m
}

func TestAuditor_Audit_sitemap(t *testing.T) {
	t.Parallel()

	t.Run("analyzes sitemap URLs and aggregates duplicates", func(t *testing.T) {
		t.Parallel()

		a, m := newTestAuditor(testSite{
			titles: map[string]string{
				"https://example.com/a": "Home",
				"https://example.com/b": "home ",
				"https://example.com/c": "Contact",
			},
			descriptions: map[string]string{
				"https://example.com/a": "Same description",
				"https://example.com/c": "Same  description",
			},
		})
		m.Sitemaps.DiscoverURLsFn = func(_ context.Context, baseURL string, _ *webtools.URLFilter) ([]string, error) {
			assert.Equal(t, "https://example.com", baseURL)
			return []string{"https://example.com/c", "https://example.com/a", "https://example.com/b"}, nil
		}

		report, err := a.Audit(context.Background(), crawl.AuditRequest{URL: "https://example.com"})
		require.NoError(t, err)

		assert.Equal(t, crawl.SourceSitemap, report.Source)
		assert.Equal(t, 3, report.PagesAnalyzed)
		assert.Equal(t, 0, report.PagesFailed)
		assert.InDelta(t, 80.0, report.AverageScore, 0.001)
		require.Len(t, report.Pages, 3)
		assert.Equal(t, "https://example.com/a", report.Pages[0].URL)
		assert.Equal(t, 3, report.IssueCounts["missing-h1"])

		require.Len(t, report.DuplicateTitles, 1)
		assert.Equal(t, "Home", report.DuplicateTitles[0].Value)
		assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, report.DuplicateTitles[0].URLs)

		require.Len(t, report.DuplicateDescriptions, 1)
		assert.Equal(t, []string{"https://example.com/a", "https://example.com/c"}, report.DuplicateDescriptions[0].URLs)

		assert.Equal(t, []string{"example.com", "example.com", "example.com"}, m.waited)
	})

	t.Run("caps sitemap URLs at maxPages", func(t *testing.T) {
		t.Parallel()

		a, m := newTestAuditor(testSite{})
		m.Sitemaps.DiscoverURLsFn = func(_ context.Context, _ string, _ *webtools.URLFilter) ([]string, error) {
			return []string{
				"https://example.com/1", "https://example.com/2", "https://example.com/3",
				"https://example.com/4", "https://example.com/5",
			}, nil
		}

		report, err := a.Audit(context.Background(), crawl.AuditRequest{URL: "https://example.com", MaxPages: 2})
		require.NoError(t, err)

		assert.Equal(t, 2, report.PagesAnalyzed)
		assert.ElementsMatch(t, []string{"https://example.com/1", "https://example.com/2"}, m.fetched)
	})

	t.Run("reports failed pages without failing the audit", func(t *testing.T) {
		t.Parallel()

		a, m := newTestAuditor(testSite{
			failing: map[string]error{
				"https://example.com/broken": webtools.Errorf(webtools.EINVALID, "HTTP 404 fetching https://example.com/broken"),
			},
		})
		m.Sitemaps.DiscoverURLsFn = func(_ context.Context, _ string, _ *webtools.URLFilter) ([]string, error) {
			return []string{"https://example.com/ok", "https://example.com/broken"}, nil
		}

		report, err := a.Audit(context.Background(), crawl.AuditRequest{URL: "https://example.com"})
		require.NoError(t, err)

		assert.Equal(t, 1, report.PagesAnalyzed)
		assert.Equal(t, 1, report.PagesFailed)
		require.Len(t, report.Failed, 1)
		assert.Equal(t, "https://example.com/broken", report.Failed[0].URL)
		assert.Contains(t, report.Failed[0].Error, "404")

		// EINVALID is not retried.
		assert.Len(t, m.fetched, 2)
	})

	t.Run("retries transient fetch failures", func(t *testing.T) {
		t.Parallel()

		a, m := newTestAuditor(testSite{})
		var attempts atomic.Int32
		m.Sitemaps.DiscoverURLsFn = func(_ context.Context, _ string, _ *webtools.URLFilter) ([]string, error) {
			return []string{"https://example.com/flaky"}, nil
		}
		m.Fetcher.FetchFn = func(_ context.Context, url string) (string, error) {
			if attempts.Add(1) == 1 {
				return "", webtools.Errorf(webtools.EUNAVAILABLE, "HTTP 503")
			}
			return url, nil
		}

		report, err := a.Audit(context.Background(), crawl.AuditRequest{URL: "https://example.com"})
		require.NoError(t, err)

		assert.Equal(t, 1, report.PagesAnalyzed)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("returns invalid sitemap errors", func(t *testing.T) {
		t.Parallel()

		a, m := newTestAuditor(testSite{})
		m.Sitemaps.DiscoverURLsFn = func(_ context.Context, _ string, _ *webtools.URLFilter) ([]string, error) {
			return nil, webtools.Errorf(webtools.EINVALID, "address 127.0.0.1 is a loopback address")
		}

		_, err := a.Audit(context.Background(), crawl.AuditRequest{URL: "https://example.com"})
		assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
	})
}

func TestAuditor_Audit_walk(t *testing.T) {
	t.Parallel()

	t.Run("walks same-host links under the start path", func(t *testing.T) {
		t.Parallel()

		a, m := newTestAuditor(testSite{
			links: map[string][]string{
				"https://example.com/docs": {
					"https://example.com/docs/intro",
					"https://example.com/docs/guide#setup",
					"https://example.com/blog/post",
					"https://other.com/docs/page",
					"mailto:team@example.com",
				},
				"https://example.com/docs/intro": {
					"https://example.com/docs",
					"https://example.com/docs/guide",
				},
			},
		})

		report, err := a.Audit(context.Background(), crawl.AuditRequest{URL: "https://example.com/docs"})
		require.NoError(t, err)

		assert.Equal(t, crawl.SourceLinks, report.Source)
		assert.Equal(t, 3, report.PagesAnalyzed)
		assert.ElementsMatch(t, []string{
			"https://example.com/docs",
			"https://example.com/docs/intro",
			"https://example.com/docs/guide",
		}, m.fetched)
	})

	t.Run("stops after maxPages pages", func(t *testing.T) {
		t.Parallel()

		links := map[string][]string{}
		for _, p := range []string{"a", "b", "c", "d", "e", "f"} {
			links["https://example.com"] = append(links["https://example.com"], "https://example.com/"+p)
		}
		a, m := newTestAuditor(testSite{links: links})

		report, err := a.Audit(context.Background(), crawl.AuditRequest{URL: "https://example.com", MaxPages: 4})
		require.NoError(t, err)

		assert.Equal(t, 4, report.PagesAnalyzed)
		assert.Len(t, m.fetched, 4)
	})

	t.Run("applies include and exclude filters to discovered links", func(t *testing.T) {
		t.Parallel()

		a, m := newTestAuditor(testSite{
			links: map[string][]string{
				"https://example.com": {
					"https://example.com/docs/a",
					"https://example.com/docs/private/b",
					"https://example.com/blog/c",
				},
			},
		})

		_, err := a.Audit(context.Background(), crawl.AuditRequest{
			URL:     "https://example.com",
			Include: []string{"/docs/"},
			Exclude: []string{"/private/"},
		})
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"https://example.com", "https://example.com/docs/a"}, m.fetched)
	})

	t.Run("skips the sitemap when disabled", func(t *testing.T) {
		t.Parallel()

		a, m := newTestAuditor(testSite{})
		m.Sitemaps.DiscoverURLsFn = func(_ context.Context, _ string, _ *webtools.URLFilter) ([]string, error) {
			t.Error("sitemap should not be consulted")
			return nil, nil
		}
		useSitemap := false

		report, err := a.Audit(context.Background(), crawl.AuditRequest{URL: "https://example.com", UseSitemap: &useSitemap})
		require.NoError(t, err)
		assert.Equal(t, crawl.SourceLinks, report.Source)
		assert.Equal(t, 1, report.PagesAnalyzed)
	})

	t.Run("returns context error when canceled", func(t *testing.T) {
		t.Parallel()

		a, m := newTestAuditor(testSite{})
		ctx, cancel := context.WithCancel(context.Background())
		m.Fetcher.FetchFn = func(ctx context.Context, _ string) (string, error) {
			cancel()
			<-ctx.Done()
			return "", ctx.Err()
		}

		_, err := a.Audit(ctx, crawl.AuditRequest{URL: "https://example.com"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAuditor_Audit_validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  crawl.AuditRequest
	}{
		{"missing url", crawl.AuditRequest{}},
		{"unsupported scheme", crawl.AuditRequest{URL: "ftp://example.com"}},
		{"missing host", crawl.AuditRequest{URL: "https:///path"}},
		{"negative maxPages", crawl.AuditRequest{URL: "https://example.com", MaxPages: -1}},
		{"maxPages above limit", crawl.AuditRequest{URL: "https://example.com", MaxPages: crawl.MaxPagesLimit + 1}},
		{"bad include pattern", crawl.AuditRequest{URL: "https://example.com", Include: []string{"("}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, _ := newTestAuditor(testSite{})
			_, err := a.Audit(context.Background(), tt.req)
			assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
		})
	}
}
