package codec

import (
	"context"
	"encoding/hex"
	"fmt"
	"html"
	"strings"

	"github.com/fwojciec/webtools"
)

// HTMLRequest is the request body of the html-entities tool. With
// EncodeNonASCII every non-ASCII character is written as a numeric entity.
type HTMLRequest struct {
	Input          string `json:"input"`
	Operation      string `json:"operation"`
	EncodeNonASCII bool   `json:"encodeNonAscii"`
}

// HTMLEntities is the html-entities tool. Decoding understands named,
// decimal and hexadecimal entities.
func HTMLEntities(_ context.Context, req HTMLRequest) (*Result, error) {
	op, err := checkInput(req.Operation, req.Input)
	if err != nil {
		return nil, err
	}
	if op == OpDecode {
		return newResult(op, req.Input, html.UnescapeString(req.Input)), nil
	}

	out := html.EscapeString(req.Input)
	if req.EncodeNonASCII {
		var sb strings.Builder
		for _, r := range out {
			if r > 127 {
				fmt.Fprintf(&sb, "&#x%X;", r)
				continue
			}
			sb.WriteRune(r)
		}
		out = sb.String()
	}
	return newResult(op, req.Input, out), nil
}

// HexRequest is the request body of the hex-encoder tool.
type HexRequest struct {
	Input     string `json:"input"`
	Operation string `json:"operation"`
	Separator string `json:"separator"`
	Uppercase bool   `json:"uppercase"`
}

// Hex is the hex-encoder tool. Decoding ignores whitespace, colons, dashes
// and a leading 0x.
func Hex(_ context.Context, req HexRequest) (*Result, error) {
	op, err := checkInput(req.Operation, req.Input)
	if err != nil {
		return nil, err
	}
	if len(req.Separator) > 1 {
		return nil, webtools.Errorf(webtools.EINVALID, "separator must be at most one character")
	}

	if op == OpEncode {
		enc := hex.EncodeToString([]byte(req.Input))
		if req.Uppercase {
			enc = strings.ToUpper(enc)
		}
		if req.Separator != "" {
			parts := make([]string, 0, len(enc)/2)
			for i := 0; i < len(enc); i += 2 {
				parts = append(parts, enc[i:i+2])
			}
			enc = strings.Join(parts, req.Separator)
		}
		return newResult(op, req.Input, enc), nil
	}

	s := strings.TrimSpace(req.Input)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n', ':', '-':
			return -1
		}
		return r
	}, s)
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid hex: %v", err)
	}
	return decoded(op, req.Input, raw), nil
}
