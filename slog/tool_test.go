package slog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/mock"
	webslog "github.com/fwojciec/webtools/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTool(err error) *mock.Tool {
	return &mock.Tool{
		InfoFn: func() webtools.ToolInfo {
			return webtools.ToolInfo{Category: "text-tools", Slug: "case-converter"}
		},
		RunFn: func(ctx context.Context, input []byte) (any, error) {
			if err != nil {
				return nil, err
			}
			return "HELLO", nil
		},
	}
}

func TestLoggingTool_Run(t *testing.T) {
	t.Parallel()

	t.Run("logs successful runs at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		tool := webslog.NewLoggingTool(newTool(nil), logger)

		result, err := tool.Run(context.Background(), []byte(`{"text":"hello"}`))

		require.NoError(t, err)
		assert.Equal(t, "HELLO", result)
		output := buf.String()
		assert.Contains(t, output, "level=DEBUG")
		assert.Contains(t, output, "tool=text-tools/case-converter")
		assert.Contains(t, output, "bytes=16")
		assert.Contains(t, output, "duration=")
	})

	t.Run("keeps invalid input at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		tool := webslog.NewLoggingTool(newTool(webtools.Errorf(webtools.EINVALID, "bad")), logger)

		_, err := tool.Run(context.Background(), nil)

		require.Error(t, err)
		assert.Empty(t, buf.String())
	})

	t.Run("logs internal failures at error level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		tool := webslog.NewLoggingTool(newTool(errors.New("disk full")), logger)

		_, err := tool.Run(context.Background(), nil)

		require.Error(t, err)
		assert.Contains(t, buf.String(), "level=ERROR")
		assert.Contains(t, buf.String(), `err="disk full"`)
	})

	t.Run("wraps every tool of a catalog", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		catalog := webtools.NewCatalog(newTool(nil))
		catalog.Wrap(webslog.ToolMiddleware(logger))

		tool, err := catalog.Find("text-tools", "case-converter")
		require.NoError(t, err)
		assert.Equal(t, "case-converter", tool.Info().Slug)
		_, err = tool.Run(context.Background(), nil)
		require.NoError(t, err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "tool run", entry["msg"])
	})
}

func TestLoggingAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.Analyzer{
		AnalyzeFn: func(ctx context.Context, req webtools.AnalysisRequest) (string, error) {
			return "fine", nil
		},
	}

	text, err := webslog.NewLoggingAnalyzer(inner, logger).Analyze(context.Background(), webtools.AnalysisRequest{
		Tool: webtools.ToolInfo{Category: "converters", Slug: "length-converter"},
	})

	require.NoError(t, err)
	assert.Equal(t, "fine", text)
	assert.Contains(t, buf.String(), "msg=analysis")
	assert.Contains(t, buf.String(), "tool=converters/length-converter")
	assert.Contains(t, buf.String(), "chars=4")
}

func TestLoggingDetector_Detect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		framework webtools.Framework
		want      string
	}{
		{webtools.FrameworkHugo, "framework=hugo"},
		{webtools.FrameworkUnknown, `framework=(unknown)`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			inner := &mock.FrameworkDetector{
				DetectFn: func(html string) webtools.Framework { return tt.framework },
			}

			got := webslog.NewLoggingDetector(inner, logger).Detect("<html></html>")

			assert.Equal(t, tt.framework, got)
			assert.Contains(t, buf.String(), "framework detection")
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestLoggingDetector_Inspect(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	want := webtools.FrameworkDetection{
		Framework: webtools.FrameworkDocusaurus,
		Signals:   []string{".theme-doc-sidebar-container"},
	}
	inner := &mock.FrameworkDetector{
		InspectFn: func(html string) webtools.FrameworkDetection { return want },
	}

	got := webslog.NewLoggingDetector(inner, logger).Inspect("<html></html>")

	assert.Equal(t, want, got)
	assert.Contains(t, buf.String(), "framework inspection")
	assert.Contains(t, buf.String(), "framework=docusaurus")
	assert.Contains(t, buf.String(), "signals=1")
}
