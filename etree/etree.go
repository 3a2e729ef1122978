// Package etree implements the XML developer tools on top of
// github.com/beevik/etree.
package etree

import (
	"encoding/xml"
	"errors"
	"regexp"
	"strings"

	"github.com/fwojciec/webtools"
)

// MaxInputBytes bounds the size of an XML or JSON document.
const MaxInputBytes = 512 << 10

const (
	defaultAttributePrefix = "@"
	defaultTextKey         = "#text"
	defaultRootTag         = "root"
	defaultItemTag         = "item"
)

// nameRe matches a valid XML element or attribute name, optionally prefixed
// with a namespace.
var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*(:[A-Za-z_][A-Za-z0-9_.\-]*)?$`)

// Tools returns every XML tool.
func Tools() []webtools.Tool {
	return []webtools.Tool{
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "xml-to-json",
			Category:    webtools.CategoryDeveloperTools,
			Name:        "XML to JSON",
			Description: "Convert an XML document to JSON with attributes, text nodes and repeated elements mapped predictably.",
		}, ToJSON),
		webtools.NewTool(webtools.ToolInfo{
			Slug:        "json-to-xml",
			Category:    webtools.CategoryDeveloperTools,
			Name:        "JSON to XML",
			Description: "Convert JSON to an XML document.",
		}, FromJSON),
	}
}

func checkSize(field, s string) error {
	if len(s) > MaxInputBytes {
		return webtools.Errorf(webtools.EINVALID, "%s exceeds %d bytes", field, MaxInputBytes)
	}
	return nil
}

// diagnose converts an XML read error into a line-tagged diagnostic.
// etree does not expose the position of a syntax error, so src is tokenized
// again with encoding/xml to find the offending line.
func diagnose(src string, err error) webtools.Diagnostic {
	d := webtools.Diagnostic{Message: err.Error(), Severity: webtools.SeverityError}
	var syntaxErr *xml.SyntaxError
	if !errors.As(err, &syntaxErr) {
		syntaxErr = locateSyntaxError(src)
	}
	if syntaxErr != nil {
		d.Message = syntaxErr.Msg
		d.Line = syntaxErr.Line
	}
	return d
}

// locateSyntaxError returns the first syntax error encoding/xml reports for
// src, or nil if it reaches the end of the input.
func locateSyntaxError(src string) *xml.SyntaxError {
	dec := xml.NewDecoder(strings.NewReader(src))
	for {
		_, err := dec.Token()
		if err == nil {
			continue
		}
		var syntaxErr *xml.SyntaxError
		if errors.As(err, &syntaxErr) {
			return syntaxErr
		}
		return nil
	}
}
