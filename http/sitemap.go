package http

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/webtools"
)

// DefaultMaxSitemapURLs caps the number of URLs collected across all sitemaps.
const DefaultMaxSitemapURLs = 10000

// maxSitemapBytes bounds a single sitemap or robots.txt download.
const maxSitemapBytes = 10 << 20

// Ensure SitemapService implements webtools.SitemapService.
var _ webtools.SitemapService = (*SitemapService)(nil)

// SitemapService discovers URLs from website sitemaps via HTTP.
type SitemapService struct {
	client  *http.Client
	maxURLs int
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, a guarded client from NewClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = NewClient(DefaultFetchTimeout, false)
	}
	return &SitemapService{client: client, maxURLs: DefaultMaxSitemapURLs}
}

// DiscoverURLs finds all URLs from a site's sitemap.
// Returns an empty slice (not nil) if no sitemaps are found.
//
// When baseURL has a non-root path (e.g., https://example.com/docs/),
// only URLs with paths starting with that prefix are returned.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *webtools.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateURL(baseURL); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid base URL %q", baseURL)
	}

	pathPrefix := base.Path
	if pathPrefix == "/" {
		pathPrefix = ""
	}

	// Sitemaps are always discovered from the root of the host.
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	sitemapURLs, err := s.findSitemapURLs(ctx, root)
	if err != nil {
		return nil, err
	}

	c := &collector{
		service:  s,
		seen:     make(map[string]bool),
		seenURLs: make(map[string]bool),
		keep: func(u string) bool {
			return (pathPrefix == "" || matchesPathPrefix(u, pathPrefix)) && filter.Match(u)
		},
	}
	for _, sitemapURL := range sitemapURLs {
		if err := c.process(ctx, sitemapURL); err != nil {
			return nil, err
		}
		if c.full() {
			break
		}
	}

	if c.urls == nil {
		return []string{}, nil
	}
	return c.urls, nil
}

// collector walks sitemaps and sitemap indexes, deduplicating both.
type collector struct {
	service  *SitemapService
	seen     map[string]bool
	seenURLs map[string]bool
	keep     func(string) bool
	urls     []string
}

func (c *collector) full() bool {
	return len(c.urls) >= c.service.maxURLs
}

func (c *collector) process(ctx context.Context, sitemapURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.seen[sitemapURL] || c.full() {
		return nil
	}
	c.seen[sitemapURL] = true

	body, err := c.service.get(ctx, sitemapURL)
	if err != nil {
		return err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return webtools.Errorf(webtools.EINVALID, "sitemap %s is not valid XML: %v", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return webtools.Errorf(webtools.EINVALID, "sitemap %s is empty", sitemapURL)
	}

	if root.Tag == "sitemapindex" {
		for _, loc := range locs(root, "sitemap") {
			if err := c.process(ctx, loc); err != nil {
				return err
			}
		}
		return nil
	}

	for _, loc := range locs(root, "url") {
		if c.full() {
			break
		}
		if c.seenURLs[loc] || !c.keep(loc) {
			continue
		}
		c.seenURLs[loc] = true
		c.urls = append(c.urls, loc)
	}
	return nil
}

// locs returns the trimmed <loc> text of every child with the given tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// matchesPathPrefix checks if a URL's path starts with the given prefix,
// respecting path boundaries: /docs matches /docs/ and /docs/intro but not
// /documentation.
func matchesPathPrefix(rawURL, prefix string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(parsed.Path, prefix) || parsed.Path+"/" == prefix
}

// findSitemapURLs discovers sitemap URLs from robots.txt or falls back to /sitemap.xml.
func (s *SitemapService) findSitemapURLs(ctx context.Context, root *url.URL) ([]string, error) {
	robotsURL := root.ResolveReference(&url.URL{Path: "/robots.txt"})
	if body, err := s.get(ctx, robotsURL.String()); err == nil {
		if sitemaps := parseRobotsSitemaps(body); len(sitemaps) > 0 {
			return sitemaps, nil
		}
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	sitemapURL := root.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	exists, err := s.exists(ctx, sitemapURL.String())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Refused addresses must surface; other failures mean "no sitemap".
		if webtools.ErrorCode(err) == webtools.EINVALID {
			return nil, err
		}
		return nil, nil
	}
	if exists {
		return []string{sitemapURL.String()}, nil
	}
	return nil, nil
}

// parseRobotsSitemaps extracts Sitemap: directives from robots.txt.
func parseRobotsSitemaps(body []byte) []string {
	var sitemaps []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) > len("sitemap:") && strings.EqualFold(line[:len("sitemap:")], "sitemap:") {
			if u := strings.TrimSpace(line[len("sitemap:"):]); u != "" {
				sitemaps = append(sitemaps, u)
			}
		}
	}
	return sitemaps
}

func (s *SitemapService) get(ctx context.Context, targetURL string) ([]byte, error) {
	if err := ValidateURL(targetURL); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid url %q", targetURL)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, requestError(ctx, targetURL, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, targetURL); err != nil {
		return nil, err
	}
	return readLimited(resp.Body, maxSitemapBytes)
}

// exists checks if a URL returns 200 OK.
func (s *SitemapService) exists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, webtools.Errorf(webtools.EINVALID, "invalid url %q", targetURL)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, requestError(ctx, targetURL, err)
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
