package codec

import (
	"context"
	"net/url"

	"github.com/fwojciec/webtools"
)

// URL encoding modes.
const (
	ModeComponent = "component"
	ModePath      = "path"
	ModeQuery     = "query"
)

// URLRequest is the request body of the url-encoder tool.
type URLRequest struct {
	Input     string `json:"input"`
	Operation string `json:"operation"`
	Mode      string `json:"mode"`
}

// URLResponse adds the decoded query parameters when decoding in query mode.
type URLResponse struct {
	Result
	Params map[string][]string `json:"params,omitempty"`
}

// URL is the url-encoder tool. Component mode escapes everything outside the
// unreserved set and encodes spaces as %20; query mode encodes spaces as "+".
// Path mode keeps slashes.
func URL(_ context.Context, req URLRequest) (*URLResponse, error) {
	op, err := checkInput(req.Operation, req.Input)
	if err != nil {
		return nil, err
	}

	var out string
	switch req.Mode {
	case "", ModeComponent:
		if op == OpEncode {
			out = escapeComponent(url.PathEscape(req.Input))
		} else {
			out, err = url.PathUnescape(req.Input)
		}
	case ModeQuery:
		if op == OpEncode {
			out = url.QueryEscape(req.Input)
		} else {
			out, err = url.QueryUnescape(req.Input)
		}
	case ModePath:
		if op == OpEncode {
			out = (&url.URL{Path: req.Input}).EscapedPath()
		} else {
			out, err = url.PathUnescape(req.Input)
		}
	default:
		return nil, webtools.Errorf(webtools.EINVALID, "unknown mode %q", req.Mode)
	}
	if err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid percent-encoding: %v", err)
	}

	resp := &URLResponse{Result: *newResult(op, req.Input, out)}
	if op == OpDecode && req.Mode == ModeQuery {
		if params, err := url.ParseQuery(req.Input); err == nil && len(params) > 0 {
			resp.Params = params
		}
	}
	return resp, nil
}

// escapeComponent escapes the delimiters url.PathEscape leaves alone in a
// path segment.
func escapeComponent(s string) string {
	const hexDigits = "0123456789ABCDEF"
	var out []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '$', '&', '+', '=', ':', '@':
			out = append(out, '%', hexDigits[c>>4], hexDigits[c&15])
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
