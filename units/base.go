package units

import (
	"context"
	"math/big"
	"strings"

	"github.com/fwojciec/webtools"
)

// BaseRequest is the request body of the number-base-converter tool.
type BaseRequest struct {
	Value     string `json:"value"`
	FromBase  int    `json:"fromBase"`
	ToBase    int    `json:"toBase"`
	Uppercase bool   `json:"uppercase"`
}

// BaseResponse is the result of the number-base-converter tool.
type BaseResponse struct {
	Input           string            `json:"input"`
	FromBase        int               `json:"fromBase"`
	ToBase          int               `json:"toBase"`
	Result          string            `json:"result"`
	Representations map[string]string `json:"representations"`
	BitLength       int               `json:"bitLength"`
}

var basePrefixes = map[int]string{2: "0b", 8: "0o", 16: "0x"}

// ConvertBase converts an arbitrary precision integer between bases.
func ConvertBase(_ context.Context, req BaseRequest) (*BaseResponse, error) {
	if req.FromBase == 0 {
		req.FromBase = 10
	}
	if req.ToBase == 0 {
		req.ToBase = 2
	}
	for _, b := range []int{req.FromBase, req.ToBase} {
		if b < 2 || b > 36 {
			return nil, webtools.Errorf(webtools.EINVALID, "base must be between 2 and 36, got %d", b)
		}
	}

	digits := strings.ReplaceAll(strings.TrimSpace(req.Value), "_", "")
	neg := strings.HasPrefix(digits, "-")
	if neg || strings.HasPrefix(digits, "+") {
		digits = digits[1:]
	}
	if p, ok := basePrefixes[req.FromBase]; ok {
		if len(digits) > 2 && strings.EqualFold(digits[:2], p) {
			digits = digits[2:]
		}
	}
	if digits == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "value is required")
	}
	if strings.ContainsAny(digits[:1], "+-") {
		return nil, webtools.Errorf(webtools.EINVALID, "%q is not a valid base %d number", req.Value, req.FromBase)
	}

	n, ok := new(big.Int).SetString(digits, req.FromBase)
	if !ok {
		return nil, webtools.Errorf(webtools.EINVALID, "%q is not a valid base %d number", req.Value, req.FromBase)
	}
	if neg {
		n.Neg(n)
	}

	format := func(base int) string {
		s := n.Text(base)
		if req.Uppercase {
			s = strings.ToUpper(s)
		}
		return s
	}

	return &BaseResponse{
		Input:    req.Value,
		FromBase: req.FromBase,
		ToBase:   req.ToBase,
		Result:   format(req.ToBase),
		Representations: map[string]string{
			"binary":      format(2),
			"octal":       format(8),
			"decimal":     n.Text(10),
			"hexadecimal": format(16),
		},
		BitLength: n.BitLen(),
	}, nil
}
