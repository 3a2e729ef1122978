package yaml

import (
	"context"
	"fmt"
	"sort"

	"github.com/fwojciec/webtools"
)

const defaultIndent = 2

// ValidateOptions tunes the yaml-validator tool.
type ValidateOptions struct {
	Indent             int   `json:"indent"`
	AllowMultiDocument *bool `json:"allowMultiDocument"`
	AllowDuplicateKeys bool  `json:"allowDuplicateKeys"`
	MaxDepth           int   `json:"maxDepth"`
}

// ValidateRequest is the request body of the yaml-validator tool.
type ValidateRequest struct {
	YAML    string          `json:"yaml"`
	Options ValidateOptions `json:"options"`
}

// ValidateResponse is the result of the yaml-validator tool. Parsed is a
// single tree, or a list of trees for multi-document input, and is only set
// when the input is valid.
type ValidateResponse struct {
	IsValid  bool                  `json:"isValid"`
	Parsed   any                   `json:"parsed,omitempty"`
	Errors   []webtools.Diagnostic `json:"errors"`
	Warnings []webtools.Diagnostic `json:"warnings"`
	Stats    Stats                 `json:"stats"`
}

// Validate is the yaml-validator tool. Syntax problems are reported in the
// response, never as an error.
func Validate(_ context.Context, req ValidateRequest) (*ValidateResponse, error) {
	if err := checkSize("yaml", req.YAML); err != nil {
		return nil, err
	}
	opts := req.Options
	if opts.Indent == 0 {
		opts.Indent = defaultIndent
	}
	if opts.Indent < 1 || opts.Indent > 8 {
		return nil, webtools.Errorf(webtools.EINVALID, "indent must be between 1 and 8")
	}
	if opts.MaxDepth < 0 {
		return nil, webtools.Errorf(webtools.EINVALID, "maxDepth must not be negative")
	}
	allowMulti := opts.AllowMultiDocument == nil || *opts.AllowMultiDocument

	linted := lint(req.YAML, opts.Indent)
	parsed := Parse(req.YAML, ParseOptions{AllowDuplicateKeys: opts.AllowDuplicateKeys})

	diags := append(linted.diags, parsed.Diagnostics...)
	stats := parsed.Stats
	if stats.Documents == 0 && webtools.HasErrors(parsed.Diagnostics) {
		stats.Documents = linted.documents
	}

	if !allowMulti && stats.Documents > 1 {
		diags = append(diags, webtools.Diagnostic{
			Message:  fmt.Sprintf("found %d documents but multiple documents are not allowed", stats.Documents),
			Severity: webtools.SeverityError,
		})
	}
	if opts.MaxDepth > 0 && stats.MaxDepth > opts.MaxDepth {
		diags = append(diags, webtools.Diagnostic{
			Message:  fmt.Sprintf("nesting depth %d exceeds the maximum of %d", stats.MaxDepth, opts.MaxDepth),
			Severity: webtools.SeverityError,
		})
	}
	if stats.Documents == 0 && !webtools.HasErrors(diags) {
		diags = append(diags, webtools.Diagnostic{
			Message:  "document is empty",
			Severity: webtools.SeverityInfo,
		})
	}

	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Line == 0 || diags[j].Line == 0 {
			return diags[i].Line != 0 && diags[j].Line == 0
		}
		return diags[i].Line < diags[j].Line
	})

	resp := &ValidateResponse{
		Errors:   []webtools.Diagnostic{},
		Warnings: []webtools.Diagnostic{},
		Stats:    stats,
	}
	for _, d := range diags {
		if d.Severity == webtools.SeverityError {
			resp.Errors = append(resp.Errors, d)
		} else {
			resp.Warnings = append(resp.Warnings, d)
		}
	}

	resp.IsValid = len(resp.Errors) == 0
	if resp.IsValid {
		switch len(parsed.Documents) {
		case 0:
		case 1:
			resp.Parsed = parsed.Documents[0]
		default:
			resp.Parsed = parsed.Documents
		}
	}
	return resp, nil
}
