// Package prometheus exports tool usage metrics in the Prometheus format.
package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/fwojciec/webtools"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "webtools"

// Metrics holds the collectors for tool runs on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	analyses *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "tool_runs_total",
				Help:      "Number of tool runs by outcome code.",
			},
			[]string{"category", "tool", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "tool_duration_seconds",
				Help:      "Tool run duration in seconds.",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 15, 30},
			},
			[]string{"category", "tool"},
		),
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "analysis_total",
				Help:      "Number of analysis requests by outcome.",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		m.runs,
		m.duration,
		m.analyses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAnalysis counts an analysis attempt. outcome is "ok", "error"
// or "empty".
func (m *Metrics) ObserveAnalysis(outcome string) {
	m.analyses.WithLabelValues(outcome).Inc()
}

// ToolMiddleware returns a decorator for webtools.Catalog.Wrap.
func (m *Metrics) ToolMiddleware() func(webtools.Tool) webtools.Tool {
	return func(next webtools.Tool) webtools.Tool {
		return &instrumentedTool{next: next, metrics: m}
	}
}

type instrumentedTool struct {
	next    webtools.Tool
	metrics *Metrics
}

func (t *instrumentedTool) Unwrap() webtools.Tool {
	return t.next
}

func (t *instrumentedTool) Info() webtools.ToolInfo {
	return t.next.Info()
}

func (t *instrumentedTool) Run(ctx context.Context, input []byte) (any, error) {
	info := t.next.Info()
	begin := time.Now()

	result, err := t.next.Run(ctx, input)

	code := "ok"
	if err != nil {
		code = webtools.ErrorCode(err)
	}
	t.metrics.runs.WithLabelValues(info.Category, info.Slug, code).Inc()
	t.metrics.duration.WithLabelValues(info.Category, info.Slug).Observe(time.Since(begin).Seconds())

	return result, err
}

// InstrumentAnalyzer wraps next so every call is counted by outcome.
func (m *Metrics) InstrumentAnalyzer(next webtools.Analyzer) webtools.Analyzer {
	return &instrumentedAnalyzer{next: next, metrics: m}
}

type instrumentedAnalyzer struct {
	next    webtools.Analyzer
	metrics *Metrics
}

func (a *instrumentedAnalyzer) Analyze(ctx context.Context, req webtools.AnalysisRequest) (string, error) {
	text, err := a.next.Analyze(ctx, req)
	switch {
	case err != nil:
		a.metrics.ObserveAnalysis("error")
	case text == "":
		a.metrics.ObserveAnalysis("empty")
	default:
		a.metrics.ObserveAnalysis("ok")
	}
	return text, err
}
