// Package gemini provides analysis commentary and token counting backed by
// Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/webtools"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used for analysis.
const DefaultModel = "gemini-2.5-flash"

// Ensure Analyzer implements webtools.Analyzer at compile time.
var _ webtools.Analyzer = (*Analyzer)(nil)

// Analyzer implements webtools.Analyzer using Google Gemini.
type Analyzer struct {
	client *genai.Client
	model  string
}

// NewAnalyzer creates a new Analyzer. An empty model selects DefaultModel.
func NewAnalyzer(client *genai.Client, model string) *Analyzer {
	if model == "" {
		model = DefaultModel
	}
	return &Analyzer{client: client, model: model}
}

// NewClient creates a Gemini API client authenticated with apiKey.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "gemini API key required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

// Analyze writes a short commentary on a completed tool run.
func (a *Analyzer) Analyze(ctx context.Context, req webtools.AnalysisRequest) (string, error) {
	if req.Tool.Slug == "" {
		return "", webtools.Errorf(webtools.EINVALID, "tool required")
	}

	result, err := a.client.Models.GenerateContent(ctx, a.model,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: webtools.BuildAnalysisPrompt(req)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if result == nil {
		return "", webtools.Errorf(webtools.EINTERNAL, "gemini returned nil result")
	}

	return strings.TrimSpace(result.Text()), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: webtools.AnalysisSystemInstruction}},
		},
		Temperature: &temp,
	}
}
