// Package readability extracts the main content of a page with
// github.com/go-shiori/go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/webtools"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements webtools.Extractor at compile time.
var _ webtools.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*webtools.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "no content could be extracted: %v", err)
	}

	return &webtools.ExtractResult{
		Title:       article.Title,
		Author:      article.Byline,
		Description: article.Excerpt,
		SiteName:    article.SiteName,
		ContentHTML: article.Content,
	}, nil
}
