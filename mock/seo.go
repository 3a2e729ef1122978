package mock

import "github.com/fwojciec/webtools"

var _ webtools.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of webtools.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, baseURL string) ([]webtools.Link, error)
}

func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]webtools.Link, error) {
	return e.ExtractLinksFn(html, baseURL)
}

var _ webtools.FrameworkDetector = (*FrameworkDetector)(nil)

// FrameworkDetector is a mock implementation of webtools.FrameworkDetector.
type FrameworkDetector struct {
	DetectFn  func(html string) webtools.Framework
	InspectFn func(html string) webtools.FrameworkDetection
}

func (d *FrameworkDetector) Detect(html string) webtools.Framework {
	return d.DetectFn(html)
}

func (d *FrameworkDetector) Inspect(html string) webtools.FrameworkDetection {
	return d.InspectFn(html)
}

var _ webtools.PageAnalyzer = (*PageAnalyzer)(nil)

// PageAnalyzer is a mock implementation of webtools.PageAnalyzer.
type PageAnalyzer struct {
	AnalyzePageFn func(html string, pageURL string) (*webtools.PageReport, error)
}

func (a *PageAnalyzer) AnalyzePage(html string, pageURL string) (*webtools.PageReport, error) {
	return a.AnalyzePageFn(html, pageURL)
}
