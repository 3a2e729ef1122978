package etree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/webtools"
)

// ToJSONRequest is the request body of the xml-to-json tool.
type ToJSONRequest struct {
	XML             string  `json:"xml"`
	AttributePrefix *string `json:"attributePrefix"`
	TextKey         string  `json:"textKey"`
	InferTypes      *bool   `json:"inferTypes"`
	Indent          *int    `json:"indent"`
}

// ToJSONResponse is the result of the xml-to-json tool.
type ToJSONResponse struct {
	Valid    bool                  `json:"valid"`
	JSON     string                `json:"json"`
	Root     string                `json:"root"`
	Elements int                   `json:"elements"`
	Errors   []webtools.Diagnostic `json:"errors"`
}

// ToJSON is the xml-to-json tool. The root element becomes the single key of
// the top-level object. Attributes are prefixed, repeated child elements
// become arrays and text that sits beside attributes or children is stored
// under the text key. Elements without attributes, children or text are null.
// Malformed XML is reported in Errors with the line of the problem.
func ToJSON(_ context.Context, req ToJSONRequest) (*ToJSONResponse, error) {
	if err := checkSize("xml", req.XML); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.XML) == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "xml is required")
	}
	indent, err := jsonIndent(req.Indent)
	if err != nil {
		return nil, err
	}

	c := &toJSON{
		prefix:  defaultAttributePrefix,
		textKey: req.TextKey,
		infer:   req.InferTypes == nil || *req.InferTypes,
	}
	if req.AttributePrefix != nil {
		c.prefix = *req.AttributePrefix
	}
	if c.textKey == "" {
		c.textKey = defaultTextKey
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(req.XML); err != nil {
		return &ToJSONResponse{Errors: []webtools.Diagnostic{diagnose(req.XML, err)}}, nil
	}
	root := doc.Root()
	if root == nil {
		return &ToJSONResponse{Errors: []webtools.Diagnostic{{
			Message:  "xml has no root element",
			Severity: webtools.SeverityError,
		}}}, nil
	}

	tree := map[string]any{root.FullTag(): c.element(root)}

	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(tree); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return &ToJSONResponse{
		Valid:    true,
		Errors:   []webtools.Diagnostic{},
		JSON:     strings.TrimSuffix(out.String(), "\n"),
		Root:     root.FullTag(),
		Elements: c.elements,
	}, nil
}

type toJSON struct {
	prefix   string
	textKey  string
	infer    bool
	elements int
}

func (c *toJSON) element(e *etree.Element) any {
	c.elements++

	var sb strings.Builder
	for _, tok := range e.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			sb.WriteString(cd.Data)
		}
	}
	text := strings.TrimSpace(sb.String())
	children := e.ChildElements()

	if len(children) == 0 && len(e.Attr) == 0 {
		if text == "" {
			return nil
		}
		return c.scalar(text)
	}

	obj := make(map[string]any, len(e.Attr)+len(children)+1)
	for _, a := range e.Attr {
		obj[c.prefix+a.FullKey()] = c.scalar(a.Value)
	}

	repeated := make(map[string]bool)
	for _, child := range children {
		key := child.FullTag()
		v := c.element(child)
		existing, ok := obj[key]
		switch {
		case !ok:
			obj[key] = v
		case repeated[key]:
			obj[key] = append(existing.([]any), v)
		default:
			obj[key] = []any{existing, v}
			repeated[key] = true
		}
	}

	if text != "" {
		obj[c.textKey] = c.scalar(text)
	}
	return obj
}

func (c *toJSON) scalar(s string) any {
	if !c.infer {
		return s
	}
	return webtools.ParseScalar(s)
}

func jsonIndent(n *int) (string, error) {
	if n == nil {
		return "  ", nil
	}
	if *n < 0 || *n > 8 {
		return "", webtools.Errorf(webtools.EINVALID, "indent must be between 0 and 8")
	}
	return strings.Repeat(" ", *n), nil
}
