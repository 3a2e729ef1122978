package webtools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// AnalysisSystemInstruction is the system prompt shared by all analysis backends.
const AnalysisSystemInstruction = "You are a concise assistant embedded in an online tools website. " +
	"Given a tool, the user's input and the computed result, write a short commentary (at most 120 words) " +
	"that explains the result and points out anything notable. Never recompute or contradict the result."

// maxPromptFieldBytes bounds how much of the input and result is sent to the model.
const maxPromptFieldBytes = 4000

// AnalysisRequest describes a completed tool run that should receive commentary.
type AnalysisRequest struct {
	Tool   ToolInfo        `json:"tool"`
	Input  json.RawMessage `json:"input"`
	Result any             `json:"result"`
}

// Analyzer produces supplementary natural language commentary for tool results.
// Analysis is never required for correctness; callers treat failures as soft.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (string, error)
}

// BuildAnalysisPrompt builds the user prompt for a tool run.
// Input and result are truncated to keep prompts small.
func BuildAnalysisPrompt(req AnalysisRequest) string {
	result, err := json.Marshal(req.Result)
	if err != nil {
		result = []byte(fmt.Sprintf("%v", req.Result))
	}

	name := req.Tool.Name
	if name == "" {
		name = req.Tool.Slug
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<tool>%s</tool>\n", name)
	if req.Tool.Description != "" {
		fmt.Fprintf(&sb, "<description>%s</description>\n", req.Tool.Description)
	}
	fmt.Fprintf(&sb, "<input>%s</input>\n", truncate(string(req.Input), maxPromptFieldBytes))
	fmt.Fprintf(&sb, "<result>%s</result>\n\n", truncate(string(result), maxPromptFieldBytes))
	sb.WriteString("Write the commentary.")
	return sb.String()
}

// truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8Start(s[cut]) {
		cut--
	}
	return s[:cut] + "…(truncated)"
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
