// Package yaml implements the YAML developer tools on top of
// gopkg.in/yaml.v3 and sigs.k8s.io/yaml.
package yaml

import (
	"github.com/fwojciec/webtools"
)

// MaxInputBytes bounds the size of a YAML or JSON document.
const MaxInputBytes = 512 << 10

// Tools returns every YAML tool.
func Tools() []webtools.Tool {
	return []webtools.Tool{
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "yaml-validator",
			Category:    webtools.CategoryDeveloperTools,
			Name:        "YAML Validator",
			Description: "Validate YAML syntax, lint indentation and inspect the parsed structure.",
		}, Validate),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "yaml-to-json",
			Category:    webtools.CategoryDeveloperTools,
			Name:        "YAML to JSON",
			Description: "Convert YAML documents to JSON.",
		}, ToJSON),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "json-to-yaml",
			Category:    webtools.CategoryDeveloperTools,
			Name:        "JSON to YAML",
			Description: "Convert JSON to YAML.",
		}, FromJSON),
	}
}

func checkSize(field, s string) error {
	if len(s) > MaxInputBytes {
		return webtools.Errorf(webtools.EINVALID, "%s exceeds %d bytes", field, MaxInputBytes)
	}
	return nil
}
