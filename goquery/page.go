package goquery

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webtools"
)

// Ensure PageAnalyzer implements webtools.PageAnalyzer.
var _ webtools.PageAnalyzer = (*PageAnalyzer)(nil)

// Recommended lengths in characters.
const (
	MinTitleLength       = 30
	MaxTitleLength       = 60
	MinDescriptionLength = 70
	MaxDescriptionLength = 160
	MinWordCount         = 300
)

// Score penalties per issue severity.
var penalties = map[string]int{
	webtools.SeverityError:   15,
	webtools.SeverityWarning: 7,
	webtools.SeverityInfo:    2,
}

// PageAnalyzer inspects a page for on-page SEO signals.
type PageAnalyzer struct{}

// NewPageAnalyzer creates a new PageAnalyzer.
func NewPageAnalyzer() *PageAnalyzer {
	return &PageAnalyzer{}
}

// AnalyzePage parses HTML and returns a report with issues and a score
// between 0 and 100.
func (a *PageAnalyzer) AnalyzePage(html string, pageURL string) (*webtools.PageReport, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid page URL: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "failed to parse HTML: %v", err)
	}

	r := &webtools.PageReport{
		URL:       pageURL,
		Title:     collapse(doc.Find("head title").First().Text()),
		Lang:      strings.TrimSpace(doc.Find("html").AttrOr("lang", "")),
		OpenGraph: map[string]string{},
		Twitter:   map[string]string{},
		Headings:  []webtools.Heading{},
		Issues:    []webtools.Issue{},
	}
	if r.Title == "" {
		r.Title = collapse(doc.Find("title").First().Text())
	}
	r.TitleLength = utf8.RuneCountInString(r.Title)

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content := strings.TrimSpace(s.AttrOr("content", ""))
		name := strings.ToLower(s.AttrOr("name", ""))
		property := strings.ToLower(s.AttrOr("property", ""))
		switch {
		case name == "description" && r.Description == "":
			r.Description = collapse(content)
		case name == "robots":
			r.Robots = strings.ToLower(content)
		case name == "viewport":
			r.Viewport = true
		case strings.HasPrefix(property, "og:"):
			r.OpenGraph[strings.TrimPrefix(property, "og:")] = content
		case strings.HasPrefix(name, "twitter:"):
			r.Twitter[strings.TrimPrefix(name, "twitter:")] = content
		}
	})
	r.DescriptionLen = utf8.RuneCountInString(r.Description)

	if href, ok := doc.Find("link[rel='canonical']").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			r.Canonical = base.ResolveReference(ref).String()
		}
	}

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		level := int(goquery.NodeName(s)[1] - '0')
		r.Headings = append(r.Headings, webtools.Heading{Level: level, Text: collapse(s.Text())})
		if level == 1 {
			r.H1Count++
		}
	})

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		r.Images++
		if _, ok := s.Attr("alt"); !ok {
			r.ImagesMissingAlt++
		}
	})

	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	r.WordCount = len(strings.Fields(body.Text()))

	for _, link := range extractLinks(doc, base, genericSelectors) {
		if link.Internal {
			r.InternalLinks++
		} else {
			r.ExternalLinks++
		}
	}

	r.Issues = check(r)
	r.Score = score(r.Issues)
	return r, nil
}

// check derives the issues of a report.
func check(r *webtools.PageReport) []webtools.Issue {
	issues := []webtools.Issue{}
	add := func(code, severity, format string, args ...any) {
		issues = append(issues, webtools.Issue{Code: code, Severity: severity, Message: fmt.Sprintf(format, args...)})
	}

	switch {
	case r.Title == "":
		add("title-missing", webtools.SeverityError, "page has no <title>")
	case r.TitleLength < MinTitleLength:
		add("title-short", webtools.SeverityWarning, "title is %d characters, aim for %d-%d", r.TitleLength, MinTitleLength, MaxTitleLength)
	case r.TitleLength > MaxTitleLength:
		add("title-long", webtools.SeverityWarning, "title is %d characters and may be truncated in results, aim for %d-%d", r.TitleLength, MinTitleLength, MaxTitleLength)
	}

	switch {
	case r.Description == "":
		add("description-missing", webtools.SeverityWarning, "page has no meta description")
	case r.DescriptionLen < MinDescriptionLength:
		add("description-short", webtools.SeverityWarning, "meta description is %d characters, aim for %d-%d", r.DescriptionLen, MinDescriptionLength, MaxDescriptionLength)
	case r.DescriptionLen > MaxDescriptionLength:
		add("description-long", webtools.SeverityWarning, "meta description is %d characters, aim for %d-%d", r.DescriptionLen, MinDescriptionLength, MaxDescriptionLength)
	}

	switch {
	case r.H1Count == 0:
		add("h1-missing", webtools.SeverityError, "page has no <h1>")
	case r.H1Count > 1:
		add("h1-multiple", webtools.SeverityWarning, "page has %d <h1> elements", r.H1Count)
	}
	prev := 0
	for _, h := range r.Headings {
		if prev > 0 && h.Level > prev+1 {
			add("heading-skip", webtools.SeverityInfo, "heading level jumps from h%d to h%d at %q", prev, h.Level, h.Text)
			break
		}
		prev = h.Level
	}

	if r.ImagesMissingAlt > 0 {
		add("img-alt-missing", webtools.SeverityWarning, "%d of %d images have no alt attribute", r.ImagesMissingAlt, r.Images)
	}
	if strings.Contains(r.Robots, "noindex") {
		add("robots-noindex", webtools.SeverityWarning, "robots meta tag prevents indexing")
	}
	if !r.Viewport {
		add("viewport-missing", webtools.SeverityWarning, "page has no viewport meta tag")
	}
	if r.Canonical == "" {
		add("canonical-missing", webtools.SeverityInfo, "page has no canonical link")
	}
	if r.Lang == "" {
		add("lang-missing", webtools.SeverityInfo, "html element has no lang attribute")
	}
	for _, p := range []string{"title", "description", "image"} {
		if r.OpenGraph[p] == "" {
			add("og-"+p+"-missing", webtools.SeverityInfo, "Open Graph og:%s is missing", p)
		}
	}
	if r.Twitter["card"] == "" {
		add("twitter-card-missing", webtools.SeverityInfo, "twitter:card is missing")
	}
	if r.WordCount < MinWordCount {
		add("thin-content", webtools.SeverityInfo, "page has %d words, fewer than %d", r.WordCount, MinWordCount)
	}
	return issues
}

func score(issues []webtools.Issue) int {
	s := 100
	for _, i := range issues {
		s -= penalties[i.Severity]
	}
	return max(s, 0)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
