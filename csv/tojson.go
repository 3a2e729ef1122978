package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fwojciec/webtools"
)

// ToJSONRequest is the request body of the csv-to-json tool.
type ToJSONRequest struct {
	CSV        string `json:"csv"`
	Delimiter  string `json:"delimiter"`
	HasHeader  *bool  `json:"hasHeader"`
	InferTypes *bool  `json:"inferTypes"`
	Trim       bool   `json:"trim"`
	LazyQuotes bool   `json:"lazyQuotes"`
	Indent     *int   `json:"indent"`
}

// ToJSONResponse is the result of the csv-to-json tool. Warnings report
// rows whose field count differs from the first row.
type ToJSONResponse struct {
	JSON     string                `json:"json"`
	Rows     int                   `json:"rows"`
	Columns  []string              `json:"columns,omitempty"`
	Warnings []webtools.Diagnostic `json:"warnings"`
}

// ToJSON is the csv-to-json tool. With a header row each record becomes an
// object keyed by column name, otherwise an array. Missing fields are null
// and extra fields are dropped with a warning.
func ToJSON(_ context.Context, req ToJSONRequest) (*ToJSONResponse, error) {
	if err := checkSize("csv", req.CSV); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.CSV) == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "csv is required")
	}
	delim, err := parseDelimiter(req.Delimiter)
	if err != nil {
		return nil, err
	}
	indent := "  "
	if req.Indent != nil {
		if *req.Indent < 0 || *req.Indent > 8 {
			return nil, webtools.Errorf(webtools.EINVALID, "indent must be between 0 and 8")
		}
		indent = strings.Repeat(" ", *req.Indent)
	}
	header := req.HasHeader == nil || *req.HasHeader
	infer := req.InferTypes == nil || *req.InferTypes

	r := csv.NewReader(strings.NewReader(req.CSV))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = req.LazyQuotes
	r.TrimLeadingSpace = req.Trim

	resp := &ToJSONResponse{Warnings: []webtools.Diagnostic{}}
	var columns []string
	width := -1
	rows := []any{}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, webtools.Errorf(webtools.EINVALID, "line %d, column %d: %v", parseErr.Line, parseErr.Column, parseErr.Err)
			}
			return nil, webtools.Errorf(webtools.EINVALID, "invalid csv: %v", err)
		}
		line, _ := r.FieldPos(0)

		if req.Trim {
			for i := range rec {
				rec[i] = strings.TrimSpace(rec[i])
			}
		}

		if width < 0 {
			width = len(rec)
			if header {
				columns = headerNames(rec)
				resp.Columns = columns
				continue
			}
		}
		if len(rec) != width {
			resp.Warnings = append(resp.Warnings, webtools.Diagnostic{
				Message:  fmt.Sprintf("expected %d fields, found %d", width, len(rec)),
				Severity: webtools.SeverityWarning,
				Line:     line,
			})
		}

		values := make([]any, width)
		for i := range values {
			if i >= len(rec) {
				continue
			}
			if infer {
				values[i] = webtools.ParseScalar(rec[i])
			} else {
				values[i] = rec[i]
			}
		}

		if !header {
			rows = append(rows, values)
			continue
		}
		obj := make(map[string]any, width)
		for i, name := range columns {
			obj[name] = values[i]
		}
		rows = append(rows, obj)
	}
	resp.Rows = len(rows)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(rows); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	resp.JSON = strings.TrimSuffix(buf.String(), "\n")
	return resp, nil
}

// headerNames names empty columns column_N and makes duplicates unique.
func headerNames(rec []string) []string {
	names := make([]string, len(rec))
	seen := make(map[string]int, len(rec))
	for i, name := range rec {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = name + "_" + strconv.Itoa(n)
		}
		names[i] = name
	}
	return names
}
