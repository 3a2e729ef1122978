package codec

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/webtools"
)

// Base64 variants.
const (
	VariantStandard = "standard"
	VariantURL      = "url"
	VariantRawStd   = "raw-standard"
	VariantRawURL   = "raw-url"
)

// Base64Request is the request body of the base64 tool.
type Base64Request struct {
	Input     string `json:"input"`
	Operation string `json:"operation"`
	Variant   string `json:"variant"`
}

// Base64 is the base64 tool. Decoding ignores whitespace and accepts both
// padded and unpadded input of the chosen alphabet.
func Base64(_ context.Context, req Base64Request) (*Result, error) {
	op, err := checkInput(req.Operation, req.Input)
	if err != nil {
		return nil, err
	}

	var enc *base64.Encoding
	switch req.Variant {
	case "", VariantStandard:
		enc = base64.StdEncoding
	case VariantURL:
		enc = base64.URLEncoding
	case VariantRawStd:
		enc = base64.RawStdEncoding
	case VariantRawURL:
		enc = base64.RawURLEncoding
	default:
		return nil, webtools.Errorf(webtools.EINVALID, "unknown variant %q", req.Variant)
	}

	if op == OpEncode {
		return newResult(op, req.Input, enc.EncodeToString([]byte(req.Input))), nil
	}

	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, req.Input)
	raw, err := enc.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid base64: %v", err)
	}
	return decoded(op, req.Input, raw), nil
}

// decoded builds the result for decoded bytes.
func decoded(op, input string, raw []byte) *Result {
	if utf8.Valid(raw) {
		return newResult(op, input, string(raw))
	}
	res := newResult(op, input, hex.EncodeToString(raw))
	res.Binary = true
	res.OutputLength = len(raw)
	return res
}
