// Package csv implements the CSV developer tools on top of encoding/csv.
package csv

import (
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/webtools"
)

// MaxInputBytes bounds the size of a CSV or JSON document.
const MaxInputBytes = 1 << 20

// Tools returns every CSV tool.
func Tools() []webtools.Tool {
	return []webtools.Tool{
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "csv-to-json",
			Category:    webtools.CategoryDeveloperTools,
			Name:        "CSV to JSON",
			Description: "Convert CSV rows to JSON objects or arrays with optional type inference.",
		}, ToJSON),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "json-to-csv",
			Category:    webtools.CategoryDeveloperTools,
			Name:        "JSON to CSV",
			Description: "Convert a JSON array of objects to CSV.",
		}, FromJSON),
	}
}

// parseDelimiter returns the field delimiter named by s. The default is a comma.
func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, webtools.Errorf(webtools.EINVALID, "invalid delimiter %q", s)
	}
	return r, nil
}

func checkSize(field, s string) error {
	if len(s) > MaxInputBytes {
		return webtools.Errorf(webtools.EINVALID, "%s exceeds %d bytes", field, MaxInputBytes)
	}
	return nil
}
