package mock

import "github.com/fwojciec/webtools"

var _ webtools.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of webtools.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*webtools.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*webtools.ExtractResult, error) {
	return e.ExtractFn(html)
}
