package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webtools"
)

// Ensure LinkExtractor implements webtools.LinkExtractor.
var _ webtools.LinkExtractor = (*LinkExtractor)(nil)

// SelectorConfig defines a CSS selector with its priority and source label.
type SelectorConfig struct {
	Selector string
	Priority webtools.LinkPriority
	Source   string
}

// genericSelectors use common HTML patterns and class names to identify
// navigation, TOC, content and footer areas on any site.
var genericSelectors = []SelectorConfig{
	{Selector: ".toc a[href], .table-of-contents a[href], .sidebar a[href], aside a[href]", Priority: webtools.PriorityTOC, Source: "toc"},
	{Selector: `nav a[href], [role="navigation"] a[href], .nav a[href], .menu a[href], .navbar a[href]`, Priority: webtools.PriorityNavigation, Source: "nav"},
	{Selector: "main a[href], article a[href], .content a[href], .doc-content a[href]", Priority: webtools.PriorityContent, Source: "content"},
	{Selector: "footer a[href], .footer a[href]", Priority: webtools.PriorityFooter, Source: "footer"},
}

// frameworkSelectors target the navigation markup of specific generators.
// They are applied before the generic selectors.
var frameworkSelectors = map[webtools.Framework][]SelectorConfig{
	webtools.FrameworkDocusaurus: {
		{Selector: ".table-of-contents a[href]", Priority: webtools.PriorityTOC, Source: "toc"},
		{Selector: ".theme-doc-sidebar-container a[href]", Priority: webtools.PriorityNavigation, Source: "sidebar"},
		{Selector: "nav.navbar a[href]", Priority: webtools.PriorityNavigation, Source: "navbar"},
	},
	webtools.FrameworkMkDocs: {
		{Selector: ".md-sidebar--secondary a[href], [data-md-component='toc'] a[href]", Priority: webtools.PriorityTOC, Source: "toc"},
		{Selector: ".md-nav--primary a[href], [data-md-component='navigation'] a[href]", Priority: webtools.PriorityNavigation, Source: "nav"},
		{Selector: ".md-content a[href]", Priority: webtools.PriorityContent, Source: "content"},
	},
	webtools.FrameworkSphinx: {
		{Selector: ".toctree-wrapper a[href], #localtoc a[href]", Priority: webtools.PriorityTOC, Source: "toc"},
		{Selector: ".wy-nav-side a[href], .wy-menu-vertical a[href], .sphinxsidebar a[href]", Priority: webtools.PriorityNavigation, Source: "nav"},
		{Selector: ".document a[href], .body a[href]", Priority: webtools.PriorityContent, Source: "content"},
	},
	webtools.FrameworkVitePress: {
		{Selector: ".VPDocAsideOutline a[href]", Priority: webtools.PriorityTOC, Source: "toc"},
		{Selector: ".VPSidebar a[href]", Priority: webtools.PriorityNavigation, Source: "sidebar"},
		{Selector: ".VPNav a[href]", Priority: webtools.PriorityNavigation, Source: "nav"},
		{Selector: ".VPDoc a[href]", Priority: webtools.PriorityContent, Source: "content"},
	},
	webtools.FrameworkVuePress: {
		{Selector: ".sidebar-links a[href]", Priority: webtools.PriorityNavigation, Source: "sidebar"},
		{Selector: ".theme-default-content a[href]", Priority: webtools.PriorityContent, Source: "content"},
	},
	webtools.FrameworkGitBook: {
		{Selector: "[data-testid='page.desktopTableOfContents'] a[href]", Priority: webtools.PriorityTOC, Source: "toc"},
		{Selector: "[data-testid='space.sidebar'] a[href]", Priority: webtools.PriorityNavigation, Source: "sidebar"},
		{Selector: "[data-testid='space.header'] a[href]", Priority: webtools.PriorityNavigation, Source: "header"},
		{Selector: "[data-testid='page.contentEditor'] a[href]", Priority: webtools.PriorityContent, Source: "content"},
	},
	webtools.FrameworkNextra: {
		{Selector: ".nextra-toc a[href]", Priority: webtools.PriorityTOC, Source: "toc"},
		{Selector: ".nextra-sidebar a[href]", Priority: webtools.PriorityNavigation, Source: "sidebar"},
		{Selector: ".nextra-navbar a[href]", Priority: webtools.PriorityNavigation, Source: "navbar"},
	},
}

// LinkExtractor extracts every HTTP link of a page in document order. Each
// link is labelled with the page region it was found in; the region comes
// from framework-specific selectors when the site generator is detected.
type LinkExtractor struct {
	detector *Detector
}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{detector: NewDetector()}
}

// ExtractLinks parses HTML and returns its links deduplicated by resolved
// URL. Links that appear in several regions keep the highest priority one.
// Fragments are stripped and links back to the page itself are skipped.
func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]webtools.Link, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "failed to parse HTML: %v", err)
	}
	return extractLinks(doc, base, e.configs(doc)), nil
}

func (e *LinkExtractor) configs(doc *goquery.Document) []SelectorConfig {
	framework := e.detector.inspect(doc).Framework
	configs := append([]SelectorConfig{}, frameworkSelectors[framework]...)
	return append(configs, genericSelectors...)
}

func extractLinks(doc *goquery.Document, base *url.URL, configs []SelectorConfig) []webtools.Link {
	// First pass: the best region for every URL.
	best := make(map[string]SelectorConfig)
	for _, config := range configs {
		doc.Find(config.Selector).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			resolved := resolveLink(base, href)
			if resolved == "" {
				return
			}
			if existing, ok := best[resolved]; !ok || config.Priority > existing.Priority {
				best[resolved] = config
			}
		})
	}

	// Second pass: document order, first occurrence wins.
	seen := make(map[string]bool)
	var links []webtools.Link
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		resolved := resolveLink(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true

		rel := strings.ToLower(strings.TrimSpace(sel.AttrOr("rel", "")))
		link := webtools.Link{
			URL:      resolved,
			Text:     linkText(sel),
			Rel:      rel,
			Internal: isSameHost(base, resolved),
			NoFollow: hasToken(rel, "nofollow") || hasToken(rel, "ugc") || hasToken(rel, "sponsored"),
			Source:   "body",
			Priority: webtools.PriorityFallback,
		}
		if config, ok := best[resolved]; ok {
			link.Source = config.Source
			link.Priority = config.Priority
		}
		links = append(links, link)
	})
	return links
}

// resolveLink resolves href against base. It returns "" for empty hrefs,
// non-HTTP schemes and links back to the base page.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || isNonHTTPLink(href) {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	if resolved.Scheme != "" && resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	baseNoFragment.RawFragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// isSameHost checks if the resolved URL has the same host as the base URL.
// This uses exact host matching - subdomains are considered different hosts.
func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, base.Host)
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

// linkText returns the visible text of an anchor, falling back to the alt
// text of an image inside it.
func linkText(sel *goquery.Selection) string {
	text := strings.Join(strings.Fields(sel.Text()), " ")
	if text == "" {
		text = strings.TrimSpace(sel.Find("img[alt]").First().AttrOr("alt", ""))
	}
	return text
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(list) {
		if f == token {
			return true
		}
	}
	return false
}
