package mock

import (
	"context"

	"github.com/fwojciec/webtools"
)

var _ webtools.Analyzer = (*Analyzer)(nil)

// Analyzer is a mock implementation of webtools.Analyzer.
type Analyzer struct {
	AnalyzeFn func(ctx context.Context, req webtools.AnalysisRequest) (string, error)
}

func (a *Analyzer) Analyze(ctx context.Context, req webtools.AnalysisRequest) (string, error) {
	return a.AnalyzeFn(ctx, req)
}
