// Package codec implements the encoding tools: Base64, URL, HTML entity and
// hex encoders with a shared encode/decode request shape.
package codec

import (
	"github.com/fwojciec/webtools"
)

// MaxInputBytes bounds the size of the text to encode or decode.
const MaxInputBytes = 1 << 20

// Operations.
const (
	OpEncode = "encode"
	OpDecode = "decode"
)

// Result is the common result of the encoding tools. Decoded bytes that are
// not valid UTF-8 are returned hex-encoded with Binary set.
type Result struct {
	Operation    string `json:"operation"`
	Output       string `json:"output"`
	Binary       bool   `json:"binary,omitempty"`
	InputLength  int    `json:"inputLength"`
	OutputLength int    `json:"outputLength"`
}

// Tools returns every encoding tool.
func Tools() []webtools.Tool {
	return []webtools.Tool{
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "base64",
			Category:    webtools.CategoryEncodingTools,
			Name:        "Base64 Encoder/Decoder",
			Description: "Encode or decode Base64 in the standard, URL-safe and unpadded variants.",
		}, Base64),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "url-encoder",
			Category:    webtools.CategoryEncodingTools,
			Name:        "URL Encoder/Decoder",
			Description: "Percent-encode or decode URL components, paths and query strings.",
		}, URL),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "html-entities",
			Category:    webtools.CategoryEncodingTools,
			Name:        "HTML Entities",
			Description: "Escape or unescape HTML entities.",
		}, HTMLEntities),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "hex-encoder",
			Category:    webtools.CategoryEncodingTools,
			Name:        "Hex Encoder/Decoder",
			Description: "Convert text to hexadecimal and back.",
		}, Hex),
	}
}

func checkInput(op, input string) (string, error) {
	if len(input) > MaxInputBytes {
		return "", webtools.Errorf(webtools.EINVALID, "input exceeds %d bytes", MaxInputBytes)
	}
	switch op {
	case "", OpEncode:
		return OpEncode, nil
	case OpDecode:
		return OpDecode, nil
	default:
		return "", webtools.Errorf(webtools.EINVALID, "operation must be %q or %q", OpEncode, OpDecode)
	}
}

func newResult(op, input, output string) *Result {
	return &Result{
		Operation:    op,
		Output:       output,
		InputLength:  len(input),
		OutputLength: len(output),
	}
}
