// Package jsonpath implements the JSON developer tools: a formatter and a
// JSONPath tester built on github.com/PaesslerAG/jsonpath.
package jsonpath

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"
	"github.com/fwojciec/webtools"
)

// language adds gval's arithmetic and comparison operators to JSONPath so
// filters such as [?(@.price < 10)] evaluate.
var language = gval.Full(jsonpath.Language())

// MaxInputBytes bounds the size of a JSON document.
const MaxInputBytes = 1 << 20

// Tools returns every JSON tool.
func Tools() []webtools.Tool {
	return []webtools.Tool{
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "json-formatter",
			Category:    webtools.CategoryDeveloperTools,
			Name:        "JSON Formatter",
			Description: "Format, minify or validate JSON with syntax errors located by line and column.",
		}, Format),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "jsonpath-tester",
			Category:    webtools.CategoryDeveloperTools,
			Name:        "JSONPath Tester",
			Description: "Evaluate a JSONPath expression against a JSON document.",
		}, Query),
	}
}

// QueryRequest is the request body of the jsonpath-tester tool.
type QueryRequest struct {
	JSON       string `json:"json"`
	Expression string `json:"expression"`
}

// QueryResponse is the result of the jsonpath-tester tool. Matches is the
// number of values selected; a single value counts as one.
type QueryResponse struct {
	Expression string `json:"expression"`
	Result     any    `json:"result"`
	Matches    int    `json:"matches"`
}

// Query is the jsonpath-tester tool.
func Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if len(req.JSON) > MaxInputBytes {
		return nil, webtools.Errorf(webtools.EINVALID, "json exceeds %d bytes", MaxInputBytes)
	}
	expr := strings.TrimSpace(req.Expression)
	if expr == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "expression is required")
	}

	var doc any
	if err := json.Unmarshal([]byte(req.JSON), &doc); err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid json: %s", describe(req.JSON, err).Message)
	}

	eval, err := language.NewEvaluable(expr)
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid expression: %v", err)
	}
	result, err := eval(ctx, doc)
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "evaluate %s: %v", expr, err)
	}

	resp := &QueryResponse{Expression: expr, Result: result, Matches: 1}
	if list, ok := result.([]any); ok {
		resp.Matches = len(list)
	}
	return resp, nil
}
