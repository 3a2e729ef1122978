// Package text implements the text tools: statistics, similarity, case and
// slug conversion, line operations, Markdown tables of contents and token
// counting.
package text

import (
	"context"
	"strings"
	"unicode"

	"github.com/fwojciec/webtools"
)

// MaxInputBytes bounds the size of a single text field.
const MaxInputBytes = 512 << 10

// Service builds the text tools.
type Service struct {
	// Counter backs the token-counter tool. The tool is omitted when nil.
	Counter webtools.TokenCounter

	// CounterModel names the model the counter tokenizes for.
	CounterModel string
}

// Tools returns every text tool.
func (s *Service) Tools() []webtools.Tool {
	tools := []webtools.Tool{
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "text-statistics",
			Category:    webtools.CategoryTextTools,
			Name:        "Text Statistics",
			Description: "Count characters, words, sentences and estimate reading time.",
		}, AnalyzeStatistics),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "text-similarity",
			Category:    webtools.CategoryTextTools,
			Name:        "Text Similarity",
			Description: "Compare two texts with Levenshtein, Jaccard, cosine, Dice and LCS similarity.",
		}, CompareTexts),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "case-converter",
			Category:    webtools.CategoryTextTools,
			Name:        "Case Converter",
			Description: "Convert text between upper, lower, title, camel, snake and other cases.",
		}, ConvertCase),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "slug-generator",
			Category:    webtools.CategoryTextTools,
			Name:        "Slug Generator",
			Description: "Turn a title into a URL-safe slug.",
		}, GenerateSlug),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "line-tools",
			Category:    webtools.CategoryTextTools,
			Name:        "Line Tools",
			Description: "Sort, deduplicate, reverse, trim and number lines.",
		}, ProcessLines),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "markdown-toc",
			Category:    webtools.CategoryTextTools,
			Name:        "Markdown Table of Contents",
			Description: "Generate a linked table of contents from Markdown headings.",
		}, GenerateTOC),
	}
	if s.Counter != nil {
		tools = append(tools, webtools.NewTool(webtools.ToolInfo{
			Slug:        "token-counter",
			Category:    webtools.CategoryTextTools,
			Name:        "Token Counter",
			Description: "Count LLM tokens in a text.",
		}, s.CountTokens))
	}
	return tools
}

func checkSize(field, s string) error {
	if len(s) > MaxInputBytes {
		return webtools.Errorf(webtools.EINVALID, "%s exceeds %d bytes", field, MaxInputBytes)
	}
	return nil
}

// words splits s into words made of letters, digits and inner apostrophes
// or hyphens.
func words(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '’' && r != '-'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'’-")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// TokenRequest is the request body of the token-counter tool.
type TokenRequest struct {
	Text string `json:"text"`
}

// TokenResponse is the result of the token-counter tool.
type TokenResponse struct {
	Tokens     int     `json:"tokens"`
	Model      string  `json:"model,omitempty"`
	Characters int     `json:"characters"`
	Words      int     `json:"words"`
	CharsPer   float64 `json:"charactersPerToken"`
}

// CountTokens counts model tokens in the request text.
func (s *Service) CountTokens(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	if err := checkSize("text", req.Text); err != nil {
		return nil, err
	}
	n, err := s.Counter.CountTokens(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	resp := &TokenResponse{
		Tokens:     n,
		Model:      s.CounterModel,
		Characters: graphemeCount(req.Text),
		Words:      len(words(req.Text)),
	}
	if n > 0 {
		resp.CharsPer = round(float64(resp.Characters)/float64(n), 2)
	}
	return resp, nil
}
