package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/webtools"
)

// Ensure LoggingDetector implements webtools.FrameworkDetector.
var _ webtools.FrameworkDetector = (*LoggingDetector)(nil)

// LoggingDetector wraps a FrameworkDetector with debug logging.
type LoggingDetector struct {
	next   webtools.FrameworkDetector
	logger *slog.Logger
}

// NewLoggingDetector creates a new LoggingDetector.
func NewLoggingDetector(next webtools.FrameworkDetector, logger *slog.Logger) *LoggingDetector {
	return &LoggingDetector{next: next, logger: logger}
}

// Detect delegates to the wrapped detector and logs the result.
func (d *LoggingDetector) Detect(html string) webtools.Framework {
	begin := time.Now()
	framework := d.next.Detect(html)
	d.logger.Debug("framework detection",
		"framework", frameworkName(framework),
		"duration", time.Since(begin),
	)
	return framework
}

// Inspect delegates to the wrapped detector and logs the result.
func (d *LoggingDetector) Inspect(html string) webtools.FrameworkDetection {
	begin := time.Now()
	res := d.next.Inspect(html)
	d.logger.Debug("framework inspection",
		"framework", frameworkName(res.Framework),
		"signals", len(res.Signals),
		"duration", time.Since(begin),
	)
	return res
}

func frameworkName(f webtools.Framework) string {
	if f == webtools.FrameworkUnknown {
		return "(unknown)"
	}
	return string(f)
}
