package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webtools"
)

// Ensure LoggingAnalyzer implements webtools.Analyzer.
var _ webtools.Analyzer = (*LoggingAnalyzer)(nil)

// LoggingAnalyzer wraps an Analyzer with logging.
type LoggingAnalyzer struct {
	next   webtools.Analyzer
	logger *slog.Logger
}

// NewLoggingAnalyzer creates a new LoggingAnalyzer.
func NewLoggingAnalyzer(next webtools.Analyzer, logger *slog.Logger) *LoggingAnalyzer {
	return &LoggingAnalyzer{next: next, logger: logger}
}

// Analyze delegates to the wrapped analyzer and logs the operation.
func (a *LoggingAnalyzer) Analyze(ctx context.Context, req webtools.AnalysisRequest) (text string, err error) {
	defer func(begin time.Time) {
		a.logger.Info("analysis",
			"tool", req.Tool.Key(),
			"chars", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Analyze(ctx, req)
}
