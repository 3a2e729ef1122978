// Package slog provides logging decorators for webtools services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webtools"
)

// Ensure LoggingTool implements webtools.Tool.
var _ webtools.Tool = (*LoggingTool)(nil)

// LoggingTool wraps a Tool and logs every run.
type LoggingTool struct {
	next   webtools.Tool
	logger *slog.Logger
}

// NewLoggingTool creates a new LoggingTool.
func NewLoggingTool(next webtools.Tool, logger *slog.Logger) *LoggingTool {
	return &LoggingTool{next: next, logger: logger}
}

// ToolMiddleware returns a decorator for webtools.Catalog.Wrap.
func ToolMiddleware(logger *slog.Logger) func(webtools.Tool) webtools.Tool {
	return func(next webtools.Tool) webtools.Tool {
		return NewLoggingTool(next, logger)
	}
}

// Unwrap returns the wrapped tool.
func (t *LoggingTool) Unwrap() webtools.Tool {
	return t.next
}

// Info delegates to the wrapped tool.
func (t *LoggingTool) Info() webtools.ToolInfo {
	return t.next.Info()
}

// Run delegates to the wrapped tool and logs the outcome. Invalid input is
// logged at debug level since it is the caller's mistake, not ours.
func (t *LoggingTool) Run(ctx context.Context, input []byte) (result any, err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		if err != nil && webtools.ErrorCode(err) != webtools.EINVALID {
			level = slog.LevelError
		}
		t.logger.Log(ctx, level, "tool run",
			"tool", t.next.Info().Key(),
			"bytes", len(input),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return t.next.Run(ctx, input)
}
