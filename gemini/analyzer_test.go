package gemini_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// newTestClient points a Gemini client at a local server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *genai.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	require.NoError(t, err)
	return client
}

func TestAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	req := webtools.AnalysisRequest{
		Tool:   webtools.ToolInfo{Category: "converters", Slug: "length-converter", Name: "Length Converter"},
		Input:  json.RawMessage(`{"value":5,"fromUnit":"km","toUnit":"mi"}`),
		Result: map[string]any{"value": 3.106856},
	}

	t.Run("sends the prompt and returns the text", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.Path, gemini.DefaultModel+":generateContent")

			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.Contains(t, string(body), "Length Converter")
			assert.Contains(t, string(body), "concise assistant")

			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"  Five kilometres is a bit over three miles.\n"}]}}]}`)
		})

		text, err := gemini.NewAnalyzer(client, "").Analyze(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "Five kilometres is a bit over three miles.", text)
	})

	t.Run("wraps API errors", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`)
		})

		_, err := gemini.NewAnalyzer(client, "").Analyze(context.Background(), req)

		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "gemini generate content"))
	})

	t.Run("requires a tool", func(t *testing.T) {
		t.Parallel()

		_, err := gemini.NewAnalyzer(nil, "").Analyze(context.Background(), webtools.AnalysisRequest{})

		assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
	})
}

func TestNewClient_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := gemini.NewClient(context.Background(), "")

	assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Equal(t, webtools.AnalysisSystemInstruction, config.SystemInstruction.Parts[0].Text)
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.4, *config.Temperature, 0.001)
}
