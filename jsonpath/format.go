package jsonpath

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/fwojciec/webtools"
)

// Formatter modes.
const (
	ModeFormat   = "format"
	ModeMinify   = "minify"
	ModeValidate = "validate"
)

// FormatRequest is the request body of the json-formatter tool.
type FormatRequest struct {
	JSON     string `json:"json"`
	Mode     string `json:"mode"`
	Indent   *int   `json:"indent"`
	UseTabs  bool   `json:"useTabs"`
	SortKeys bool   `json:"sortKeys"`
}

// FormatResponse is the result of the json-formatter tool. Syntax errors
// are reported in Error rather than failing the request.
type FormatResponse struct {
	Valid       bool                 `json:"valid"`
	Output      string               `json:"output,omitempty"`
	Error       *webtools.Diagnostic `json:"error,omitempty"`
	InputBytes  int                  `json:"inputBytes"`
	OutputBytes int                  `json:"outputBytes"`
}

// Format is the json-formatter tool.
func Format(_ context.Context, req FormatRequest) (*FormatResponse, error) {
	if len(req.JSON) > MaxInputBytes {
		return nil, webtools.Errorf(webtools.EINVALID, "json exceeds %d bytes", MaxInputBytes)
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeFormat
	}
	if mode != ModeFormat && mode != ModeMinify && mode != ModeValidate {
		return nil, webtools.Errorf(webtools.EINVALID, "unknown mode %q", req.Mode)
	}
	indent := "  "
	switch {
	case req.UseTabs:
		indent = "\t"
	case req.Indent != nil:
		if *req.Indent < 1 || *req.Indent > 8 {
			return nil, webtools.Errorf(webtools.EINVALID, "indent must be between 1 and 8")
		}
		indent = strings.Repeat(" ", *req.Indent)
	}

	resp := &FormatResponse{InputBytes: len(req.JSON)}
	src := []byte(req.JSON)
	if err := validate(src); err != nil {
		d := describe(req.JSON, err)
		resp.Error = &d
		return resp, nil
	}
	resp.Valid = true
	if mode == ModeValidate {
		return resp, nil
	}

	if req.SortKeys {
		dec := json.NewDecoder(bytes.NewReader(src))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, webtools.Errorf(webtools.EINVALID, "invalid json: %v", err)
		}
		sorted, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		src = sorted
	}

	var out bytes.Buffer
	var err error
	if mode == ModeMinify {
		err = json.Compact(&out, src)
	} else {
		err = json.Indent(&out, src, "", indent)
	}
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid json: %v", err)
	}
	resp.Output = out.String()
	resp.OutputBytes = out.Len()
	return resp, nil
}

// validate checks that src holds exactly one JSON value.
func validate(src []byte) error {
	if len(bytes.TrimSpace(src)) == 0 {
		return errors.New("unexpected end of JSON input")
	}
	dec := json.NewDecoder(bytes.NewReader(src))
	var v json.RawMessage
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return errors.New("unexpected end of JSON input")
		}
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		off := dec.InputOffset()
		rest := src[off:]
		skipped := len(rest) - len(bytes.TrimLeft(rest, " \t\r\n"))
		return &trailingDataError{offset: off + int64(skipped) + 1}
	}
	return nil
}

// trailingDataError reports content after the top-level value. offset
// follows the json.SyntaxError convention.
type trailingDataError struct {
	offset int64
}

func (e *trailingDataError) Error() string {
	return "unexpected data after top-level value"
}

// describe turns a decode error into a diagnostic. Syntax error offsets are
// converted to 1-based line and column.
func describe(src string, err error) webtools.Diagnostic {
	d := webtools.Diagnostic{Message: err.Error(), Severity: webtools.SeverityError}

	var syntaxErr *json.SyntaxError
	var trailingErr *trailingDataError
	switch {
	case errors.As(err, &syntaxErr):
		d.Line, d.Column = position(src, syntaxErr.Offset)
	case errors.As(err, &trailingErr):
		d.Line, d.Column = position(src, trailingErr.offset)
	case err.Error() == "unexpected end of JSON input":
		d.Line, d.Column = position(src, int64(len(src)))
	}
	return d
}

// position returns the 1-based line and column of the byte before offset,
// which is where encoding/json reports the offending character.
func position(src string, offset int64) (line, col int) {
	if offset > int64(len(src)) {
		offset = int64(len(src))
	}
	prefix := src[:offset]
	if offset > 0 {
		prefix = src[:offset-1]
	}
	line = strings.Count(prefix, "\n") + 1
	col = len(prefix) - strings.LastIndex(prefix, "\n")
	return line, col
}
