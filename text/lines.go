package text

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fwojciec/webtools"
)

// Line operations.
const (
	LineTrim        = "trim"
	LineRemoveEmpty = "remove-empty"
	LineDedupe      = "dedupe"
	LineSort        = "sort"
	LineReverse     = "reverse"
	LineNumber      = "number"
)

// LinesRequest is the request body of the line-tools tool. Operations are
// applied in order.
type LinesRequest struct {
	Text            string   `json:"text"`
	Operations      []string `json:"operations"`
	Descending      bool     `json:"descending"`
	CaseInsensitive bool     `json:"caseInsensitive"`
}

// LinesResponse is the result of the line-tools tool.
type LinesResponse struct {
	Result       string   `json:"result"`
	InputLines   int      `json:"inputLines"`
	OutputLines  int      `json:"outputLines"`
	RemovedLines int      `json:"removedLines"`
	Applied      []string `json:"applied"`
}

// ProcessLines is the line-tools tool.
func ProcessLines(_ context.Context, req LinesRequest) (*LinesResponse, error) {
	if err := checkSize("text", req.Text); err != nil {
		return nil, err
	}
	if len(req.Operations) == 0 {
		return nil, webtools.Errorf(webtools.EINVALID, "at least one operation is required")
	}

	lines := strings.Split(strings.ReplaceAll(req.Text, "\r\n", "\n"), "\n")
	if req.Text == "" {
		lines = nil
	}
	in := len(lines)

	key := func(s string) string {
		if req.CaseInsensitive {
			return strings.ToLower(s)
		}
		return s
	}

	for _, op := range req.Operations {
		switch op {
		case LineTrim:
			for i, l := range lines {
				lines[i] = strings.TrimSpace(l)
			}
		case LineRemoveEmpty:
			lines = slices.DeleteFunc(lines, func(l string) bool { return strings.TrimSpace(l) == "" })
		case LineDedupe:
			seen := make(map[string]struct{}, len(lines))
			lines = slices.DeleteFunc(lines, func(l string) bool {
				k := key(l)
				if _, ok := seen[k]; ok {
					return true
				}
				seen[k] = struct{}{}
				return false
			})
		case LineSort:
			slices.SortStableFunc(lines, func(a, b string) int {
				c := strings.Compare(key(a), key(b))
				if req.Descending {
					return -c
				}
				return c
			})
		case LineReverse:
			slices.Reverse(lines)
		case LineNumber:
			width := len(fmt.Sprint(len(lines)))
			for i, l := range lines {
				lines[i] = fmt.Sprintf("%*d. %s", width, i+1, l)
			}
		default:
			return nil, webtools.Errorf(webtools.EINVALID, "unknown line operation %q", op)
		}
	}

	return &LinesResponse{
		Result:       strings.Join(lines, "\n"),
		InputLines:   in,
		OutputLines:  len(lines),
		RemovedLines: in - len(lines),
		Applied:      req.Operations,
	}, nil
}
