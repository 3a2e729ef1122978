package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/webtools"
)

// FromJSONRequest is the request body of the json-to-csv tool.
type FromJSONRequest struct {
	JSON          string `json:"json"`
	Delimiter     string `json:"delimiter"`
	IncludeHeader *bool  `json:"includeHeader"`
}

// FromJSONResponse is the result of the json-to-csv tool.
type FromJSONResponse struct {
	CSV     string   `json:"csv"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns,omitempty"`
}

// FromJSON is the json-to-csv tool. The input is an array of objects, whose
// keys are collected in first-seen order to form the header, or an array
// of arrays written as-is. Nested values are written as compact JSON.
func FromJSON(_ context.Context, req FromJSONRequest) (*FromJSONResponse, error) {
	if err := checkSize("json", req.JSON); err != nil {
		return nil, err
	}
	delim, err := parseDelimiter(req.Delimiter)
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows(req.JSON)
	if err != nil {
		return nil, err
	}

	var columns []string
	index := make(map[string]int)
	objects := false
	for i, row := range rows {
		if i == 0 {
			objects = row.keys != nil
		} else if objects != (row.keys != nil) {
			return nil, webtools.Errorf(webtools.EINVALID, "item %d: cannot mix objects and arrays", i)
		}
		for _, k := range row.keys {
			if _, ok := index[k]; !ok {
				index[k] = len(columns)
				columns = append(columns, k)
			}
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delim
	if objects && (req.IncludeHeader == nil || *req.IncludeHeader) {
		if err := w.Write(columns); err != nil {
			return nil, fmt.Errorf("write csv: %w", err)
		}
	}
	for _, row := range rows {
		rec := row.values
		if objects {
			rec = make([]string, len(columns))
			for j, k := range row.keys {
				rec[index[k]] = row.values[j]
			}
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}

	resp := &FromJSONResponse{CSV: buf.String(), Rows: len(rows)}
	if objects {
		resp.Columns = columns
	}
	return resp, nil
}

// row is one decoded item. keys is nil for array items.
type row struct {
	keys   []string
	values []string
}

// decodeRows reads a JSON array of objects or arrays, keeping object keys in
// document order. A later duplicate key overwrites the earlier value.
func decodeRows(src string) ([]row, error) {
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()

	invalid := func(err error) error {
		return webtools.Errorf(webtools.EINVALID, "invalid json: %v", err)
	}

	tok, err := dec.Token()
	if err != nil {
		return nil, invalid(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, webtools.Errorf(webtools.EINVALID, "json must be an array of objects or arrays")
	}

	var rows []row
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, invalid(err)
		}
		r, err := decodeRow(raw)
		if err != nil {
			return nil, webtools.Errorf(webtools.EINVALID, "item %d: %v", len(rows), err)
		}
		rows = append(rows, r)
	}
	if _, err := dec.Token(); err != nil {
		return nil, invalid(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid json: unexpected data after value")
	}
	return rows, nil
}

func decodeRow(raw json.RawMessage) (row, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return row{}, err
	}

	switch tok {
	case json.Delim('{'):
		r := row{keys: []string{}}
		pos := make(map[string]int)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return row{}, err
			}
			key := keyTok.(string)
			var v json.RawMessage
			if err := dec.Decode(&v); err != nil {
				return row{}, err
			}
			if i, ok := pos[key]; ok {
				r.values[i] = cell(v)
				continue
			}
			pos[key] = len(r.keys)
			r.keys = append(r.keys, key)
			r.values = append(r.values, cell(v))
		}
		return r, nil
	case json.Delim('['):
		var r row
		for dec.More() {
			var v json.RawMessage
			if err := dec.Decode(&v); err != nil {
				return row{}, err
			}
			r.values = append(r.values, cell(v))
		}
		return r, nil
	default:
		return row{}, errors.New("expected an object or an array")
	}
}

// cell renders a raw JSON value as CSV field text.
func cell(v json.RawMessage) string {
	s := string(bytes.TrimSpace(v))
	switch {
	case s == "null":
		return ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			return str
		}
		return s
	case strings.HasPrefix(s, "{"), strings.HasPrefix(s, "["):
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err == nil {
			return buf.String()
		}
		return s
	default:
		return s
	}
}
