package azopenai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/fwojciec/webtools"
	webazopenai "github.com/fwojciec/webtools/azopenai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T, handler http.HandlerFunc) *webazopenai.Analyzer {
	t.Helper()

	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	analyzer, err := webazopenai.NewAnalyzer(srv.URL, "secret-key", "gpt-4o-mini", &azopenai.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: srv.Client(),
			Retry:     policy.RetryOptions{MaxRetries: -1},
		},
	})
	require.NoError(t, err)
	return analyzer
}

var request = webtools.AnalysisRequest{
	Tool:   webtools.ToolInfo{Category: "hash-tools", Slug: "hash-generator", Name: "Hash Generator"},
	Input:  json.RawMessage(`{"text":"hello"}`),
	Result: map[string]string{"sha256": "2cf24dba"},
}

func TestAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	t.Run("sends system and user messages to the deployment", func(t *testing.T) {
		t.Parallel()

		analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/openai/deployments/gpt-4o-mini/chat/completions", r.URL.Path)
			assert.Equal(t, "secret-key", r.Header.Get("api-key"))

			var body struct {
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if assert.Len(t, body.Messages, 2) {
				assert.Equal(t, "system", body.Messages[0].Role)
				assert.Equal(t, webtools.AnalysisSystemInstruction, body.Messages[0].Content)
				assert.Equal(t, "user", body.Messages[1].Role)
				assert.Contains(t, body.Messages[1].Content, "<tool>Hash Generator</tool>")
			}

			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"id":"c1","created":1700000000,"model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" SHA-256 of hello. "}}]}`)
		})

		text, err := analyzer.Analyze(context.Background(), request)

		require.NoError(t, err)
		assert.Equal(t, "SHA-256 of hello.", text)
	})

	t.Run("reports empty completions", func(t *testing.T) {
		t.Parallel()

		analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"id":"c1","created":1700000000,"choices":[]}`)
		})

		_, err := analyzer.Analyze(context.Background(), request)

		assert.Equal(t, webtools.EINTERNAL, webtools.ErrorCode(err))
	})

	t.Run("wraps service errors", func(t *testing.T) {
		t.Parallel()

		analyzer := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"code":"401","message":"Access denied"}}`)
		})

		_, err := analyzer.Analyze(context.Background(), request)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "azure openai chat completion")
	})
}

func TestNewAnalyzer_RequiresConfiguration(t *testing.T) {
	t.Parallel()

	_, err := webazopenai.NewAnalyzer("https://example.openai.azure.com", "", "gpt", nil)

	assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
}
