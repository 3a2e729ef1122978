package webtools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Tool categories.
const (
	CategoryConverters     = "converters"
	CategoryTextTools      = "text-tools"
	CategoryDeveloperTools = "developer-tools"
	CategoryHashTools      = "hash-tools"
	CategoryEncodingTools  = "encoding-tools"
	CategoryGenerators     = "generators"
	CategorySEOTools       = "seo-tools"
	CategoryNetwork        = "network"
)

// ToolInfo describes a single tool in the catalog.
type ToolInfo struct {
	Slug        string `json:"slug"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Key returns the catalog key of the tool ("category/slug").
func (i ToolInfo) Key() string {
	return i.Category + "/" + i.Slug
}

// Validate returns an error if the tool info contains invalid fields.
func (i ToolInfo) Validate() error {
	if i.Slug == "" {
		return Errorf(EINVALID, "tool slug required")
	}
	if i.Category == "" {
		return Errorf(EINVALID, "tool category required")
	}
	if strings.ContainsAny(i.Slug+i.Category, "/ ") {
		return Errorf(EINVALID, "tool key %q must not contain slashes or spaces", i.Key())
	}
	return nil
}

// Tool is a single-purpose unit that transforms a JSON request into a result.
type Tool interface {
	// Info returns the catalog metadata of the tool.
	Info() ToolInfo

	// Run decodes the JSON input, performs the tool's work and returns a
	// JSON-serializable result. Invalid input returns EINVALID.
	Run(ctx context.Context, input []byte) (any, error)
}

// AnalysisSetter is implemented by results that embed their own analysis
// commentary inside the result payload.
type AnalysisSetter interface {
	SetAnalysis(text string)
}

// NewTool adapts a typed function to the Tool interface. The request body is
// decoded into Req before fn is called. An empty body decodes to the zero Req.
func NewTool[Req, Resp any](info ToolInfo, fn func(ctx context.Context, req Req) (Resp, error)) Tool {
	return &toolFunc[Req, Resp]{info: info, fn: fn}
}

type toolFunc[Req, Resp any] struct {
	info ToolInfo
	fn   func(ctx context.Context, req Req) (Resp, error)
}

func (t *toolFunc[Req, Resp]) Info() ToolInfo {
	return t.info
}

func (t *toolFunc[Req, Resp]) requestTemplate() any {
	var req Req
	return req
}

func (t *toolFunc[Req, Resp]) Run(ctx context.Context, input []byte) (any, error) {
	var req Req
	if err := DecodeRequest(input, &req); err != nil {
		return nil, err
	}
	return t.fn(ctx, req)
}

// RequestTemplate returns the zero request of a tool built with NewTool as
// indented JSON. Decorators exposing Unwrap() Tool are looked through.
// Other tools get "{}".
func RequestTemplate(t Tool) string {
	for {
		u, ok := t.(interface{ Unwrap() Tool })
		if !ok {
			break
		}
		t = u.Unwrap()
	}
	tf, ok := t.(interface{ requestTemplate() any })
	if !ok {
		return "{}"
	}
	b, err := json.MarshalIndent(tf.requestTemplate(), "", "  ")
	if err != nil || string(b) == "null" {
		return "{}"
	}
	return string(b)
}

// DecodeRequest decodes a JSON request body into v.
// Syntax and type errors are reported as EINVALID.
func DecodeRequest(input []byte, v any) error {
	if len(bytes.TrimSpace(input)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(input))
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return Errorf(EINVALID, "invalid request body: field %q must be %s", typeErr.Field, typeErr.Type)
		}
		return Errorf(EINVALID, "invalid request body: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Errorf(EINVALID, "invalid request body: unexpected data after JSON value")
	}
	return nil
}
