// Package seo implements the SEO tools. Every page tool accepts inline HTML
// or a URL that is fetched through the configured Fetcher.
package seo

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/crawl"
)

// MaxHTMLBytes bounds inline HTML accepted by the page tools.
const MaxHTMLBytes = 2 << 20

// Content extraction engines.
const (
	EngineTrafilatura = "trafilatura"
	EngineReadability = "readability"
)

// SiteAuditor audits whole sites.
type SiteAuditor interface {
	Audit(ctx context.Context, req crawl.AuditRequest) (*crawl.AuditReport, error)
}

// Service builds the SEO tools. Tools whose dependency is nil are omitted.
type Service struct {
	Fetcher    webtools.Fetcher
	Analyzer   webtools.PageAnalyzer
	Detector   webtools.FrameworkDetector
	Links      webtools.LinkExtractor
	Converter  webtools.Converter
	Extractors map[string]webtools.Extractor
	Sitemaps   webtools.SitemapService
	Auditor    SiteAuditor
}

// Tools returns the SEO tools backed by the configured dependencies.
func (s *Service) Tools() []webtools.Tool {
	var tools []webtools.Tool
	if s.Analyzer != nil {
		tools = append(tools, webtools.NewTool(webtools.ToolInfo{
			Slug:        "meta-analyzer",
			Category:    webtools.CategorySEOTools,
			Name:        "Meta Tag Analyzer",
			Description: "Check title, description, headings, images, social tags and score on-page SEO.",
		}, s.AnalyzeMeta))
	}
	if s.Detector != nil {
		tools = append(tools, webtools.NewTool(webtools.ToolInfo{
			Slug:        "tech-detector",
			Category:    webtools.CategorySEOTools,
			Name:        "Technology Detector",
			Description: "Identify the site generator or platform behind a page.",
		}, s.DetectTech))
	}
	if s.Links != nil {
		tools = append(tools, webtools.NewTool(webtools.ToolInfo{
			Slug:        "link-extractor",
			Category:    webtools.CategorySEOTools,
			Name:        "Link Extractor",
			Description: "List the links of a page with region, rel and internal or external classification.",
		}, s.ExtractLinks))
	}
	if s.Converter != nil {
		tools = append(tools, webtools.NewTool(webtools.ToolInfo{
			Slug:        "html-to-markdown",
			Category:    webtools.CategorySEOTools,
			Name:        "HTML to Markdown",
			Description: "Convert HTML into CommonMark with tables and strikethrough.",
		}, s.ConvertMarkdown))
	}
	if len(s.Extractors) > 0 {
		tools = append(tools, webtools.NewTool(webtools.ToolInfo{
			Slug:        "content-extractor",
			Category:    webtools.CategorySEOTools,
			Name:        "Content Extractor",
			Description: "Extract the main article content of a page without navigation and boilerplate.",
		}, s.ExtractContent))
	}
	if s.Sitemaps != nil {
		tools = append(tools, webtools.NewTool(webtools.ToolInfo{
			Slug:        "sitemap-checker",
			Category:    webtools.CategorySEOTools,
			Name:        "Sitemap Checker",
			Description: "Discover a site's sitemap through robots.txt and list its URLs.",
		}, s.CheckSitemap))
	}
	if s.Auditor != nil {
		tools = append(tools, webtools.NewTool(webtools.ToolInfo{
			Slug:        "site-audit",
			Category:    webtools.CategorySEOTools,
			Name:        "Site Audit",
			Description: "Analyze up to 50 pages of a site and report duplicates, issues and failures.",
		}, s.AuditSite))
	}
	return tools
}

// Source is the page a tool works on: inline HTML, a URL to fetch, or
// both when the HTML should be resolved against the URL.
type Source struct {
	HTML string `json:"html,omitempty"`
	URL  string `json:"url,omitempty"`
}

// load returns the HTML of the source and the URL it belongs to.
func (s *Service) load(ctx context.Context, src Source) (string, string, error) {
	if strings.TrimSpace(src.HTML) != "" {
		if len(src.HTML) > MaxHTMLBytes {
			return "", "", webtools.Errorf(webtools.EINVALID, "html exceeds %d bytes", MaxHTMLBytes)
		}
		return src.HTML, src.URL, nil
	}
	if src.URL == "" {
		return "", "", webtools.Errorf(webtools.EINVALID, "html or url required")
	}
	if s.Fetcher == nil {
		return "", "", webtools.Errorf(webtools.EUNAVAILABLE, "fetching URLs is disabled")
	}
	html, err := s.Fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return "", "", err
	}
	return html, src.URL, nil
}

// AnalyzeMeta runs the on-page SEO analysis.
func (s *Service) AnalyzeMeta(ctx context.Context, req Source) (*webtools.PageReport, error) {
	html, pageURL, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.Analyzer.AnalyzePage(html, pageURL)
}

// TechResponse is the result of the tech-detector tool.
type TechResponse struct {
	Detected  bool     `json:"detected"`
	Framework string   `json:"framework"`
	Generator string   `json:"generator,omitempty"`
	Signals   []string `json:"signals"`
}

// DetectTech identifies the site generator of a page.
func (s *Service) DetectTech(ctx context.Context, req Source) (*TechResponse, error) {
	html, _, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	d := s.Detector.Inspect(html)
	resp := &TechResponse{
		Detected:  d.Framework != webtools.FrameworkUnknown,
		Framework: string(d.Framework),
		Generator: d.Generator,
		Signals:   d.Signals,
	}
	if !resp.Detected {
		resp.Framework = "unknown"
	}
	if resp.Signals == nil {
		resp.Signals = []string{}
	}
	return resp, nil
}

// LinksRequest is the request body of the link-extractor tool.
type LinksRequest struct {
	Source
	InternalOnly bool `json:"internalOnly,omitempty"`
}

// LinksResponse is the result of the link-extractor tool.
type LinksResponse struct {
	Total    int             `json:"total"`
	Internal int             `json:"internal"`
	External int             `json:"external"`
	NoFollow int             `json:"nofollow"`
	Sources  map[string]int  `json:"sources"`
	Links    []webtools.Link `json:"links"`
}

// ExtractLinks lists the links of a page.
func (s *Service) ExtractLinks(ctx context.Context, req LinksRequest) (*LinksResponse, error) {
	html, pageURL, err := s.load(ctx, req.Source)
	if err != nil {
		return nil, err
	}
	links, err := s.Links.ExtractLinks(html, pageURL)
	if err != nil {
		return nil, err
	}

	resp := &LinksResponse{Sources: map[string]int{}, Links: []webtools.Link{}}
	for _, link := range links {
		if req.InternalOnly && !link.Internal {
			continue
		}
		resp.Links = append(resp.Links, link)
		resp.Sources[link.Source]++
		if link.Internal {
			resp.Internal++
		} else {
			resp.External++
		}
		if link.NoFollow {
			resp.NoFollow++
		}
	}
	resp.Total = len(resp.Links)
	return resp, nil
}

// MarkdownResponse is the result of the html-to-markdown tool.
type MarkdownResponse struct {
	Markdown   string `json:"markdown"`
	Characters int    `json:"characters"`
	Lines      int    `json:"lines"`
}

// ConvertMarkdown converts a page to Markdown.
func (s *Service) ConvertMarkdown(ctx context.Context, req Source) (*MarkdownResponse, error) {
	html, _, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	md, err := s.Converter.Convert(html)
	if err != nil {
		return nil, err
	}
	return newMarkdownResponse(md), nil
}

func newMarkdownResponse(md string) *MarkdownResponse {
	resp := &MarkdownResponse{Markdown: md, Characters: len([]rune(md))}
	if md != "" {
		resp.Lines = strings.Count(md, "\n") + 1
	}
	return resp
}

// ContentRequest is the request body of the content-extractor tool.
type ContentRequest struct {
	Source
	Engine string `json:"engine,omitempty"`
	Output string `json:"output,omitempty"`
}

// ContentResponse is the result of the content-extractor tool.
type ContentResponse struct {
	Engine      string `json:"engine"`
	Output      string `json:"output"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
	Content     string `json:"content"`
	WordCount   int    `json:"wordCount"`
}

// ExtractContent extracts the main content of a page as HTML or Markdown.
func (s *Service) ExtractContent(ctx context.Context, req ContentRequest) (*ContentResponse, error) {
	engine := strings.ToLower(req.Engine)
	if engine == "" {
		engine = EngineTrafilatura
	}
	extractor, ok := s.Extractors[engine]
	if !ok {
		return nil, webtools.Errorf(webtools.EINVALID, "unknown engine %q, expected one of: %s", req.Engine, strings.Join(s.engines(), ", "))
	}

	output := strings.ToLower(req.Output)
	switch output {
	case "":
		output = "html"
	case "html":
	case "markdown":
		if s.Converter == nil {
			return nil, webtools.Errorf(webtools.EUNAVAILABLE, "markdown output is not available")
		}
	default:
		return nil, webtools.Errorf(webtools.EINVALID, "unknown output %q, expected html or markdown", req.Output)
	}

	html, _, err := s.load(ctx, req.Source)
	if err != nil {
		return nil, err
	}
	res, err := extractor.Extract(html)
	if err != nil {
		return nil, err
	}

	content := res.ContentHTML
	if output == "markdown" {
		if content, err = s.Converter.Convert(res.ContentHTML); err != nil {
			return nil, err
		}
	}

	return &ContentResponse{
		Engine:      engine,
		Output:      output,
		Title:       res.Title,
		Author:      res.Author,
		Description: res.Description,
		SiteName:    res.SiteName,
		Content:     content,
		WordCount:   countWords(content, output == "html"),
	}, nil
}

func (s *Service) engines() []string {
	names := make([]string, 0, len(s.Extractors))
	for name := range s.Extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// countWords counts whitespace separated words, skipping tags in HTML.
func countWords(content string, isHTML bool) int {
	if !isHTML {
		return len(strings.Fields(content))
	}
	var sb strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
			sb.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return len(strings.Fields(sb.String()))
}

// SitemapRequest is the request body of the sitemap-checker tool.
type SitemapRequest struct {
	URL     string   `json:"url"`
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// SitemapResponse is the result of the sitemap-checker tool.
type SitemapResponse struct {
	URL   string         `json:"url"`
	Count int            `json:"count"`
	Paths map[string]int `json:"sections"`
	URLs  []string       `json:"urls"`
}

// CheckSitemap discovers the URLs listed in a site's sitemaps.
func (s *Service) CheckSitemap(ctx context.Context, req SitemapRequest) (*SitemapResponse, error) {
	if req.URL == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "url required")
	}
	filter, err := webtools.NewURLFilter(req.Include, req.Exclude)
	if err != nil {
		return nil, err
	}
	urls, err := s.Sitemaps.DiscoverURLs(ctx, req.URL, filter)
	if err != nil {
		return nil, err
	}
	if urls == nil {
		urls = []string{}
	}
	return &SitemapResponse{
		URL:   req.URL,
		Count: len(urls),
		Paths: sections(urls),
		URLs:  urls,
	}, nil
}

// sections counts URLs by their first path segment.
func sections(urls []string) map[string]int {
	counts := map[string]int{}
	for _, raw := range urls {
		section := "/"
		if u, err := url.Parse(raw); err == nil {
			if path := strings.Trim(u.Path, "/"); path != "" {
				section = "/" + strings.SplitN(path, "/", 2)[0]
			}
		}
		counts[section]++
	}
	return counts
}

// AuditSite audits a site through the configured auditor.
func (s *Service) AuditSite(ctx context.Context, req crawl.AuditRequest) (*crawl.AuditReport, error) {
	return s.Auditor.Audit(ctx, req)
}
