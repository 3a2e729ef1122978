package etree

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/webtools"
)

// FromJSONRequest is the request body of the json-to-xml tool.
type FromJSONRequest struct {
	JSON            string  `json:"json"`
	RootTag         string  `json:"rootTag"`
	AttributePrefix *string `json:"attributePrefix"`
	TextKey         string  `json:"textKey"`
	Indent          *int    `json:"indent"`
	Declaration     *bool   `json:"declaration"`
}

// FromJSONResponse is the result of the json-to-xml tool.
type FromJSONResponse struct {
	XML string `json:"xml"`
}

// FromJSON is the json-to-xml tool and the inverse of ToJSON. An object with
// a single key becomes the root element unless rootTag is set; anything else
// is wrapped in rootTag. Array items become repeated elements.
func FromJSON(_ context.Context, req FromJSONRequest) (*FromJSONResponse, error) {
	if err := checkSize("json", req.JSON); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.JSON) == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "json is required")
	}
	indent := 2
	if req.Indent != nil {
		indent = *req.Indent
	}
	if indent < 0 || indent > 8 {
		return nil, webtools.Errorf(webtools.EINVALID, "indent must be between 0 and 8")
	}

	dec := json.NewDecoder(strings.NewReader(req.JSON))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid json: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid json: unexpected data after value")
	}

	c := &fromJSON{prefix: defaultAttributePrefix, textKey: req.TextKey}
	if req.AttributePrefix != nil {
		c.prefix = *req.AttributePrefix
	}
	if c.textKey == "" {
		c.textKey = defaultTextKey
	}

	rootTag := req.RootTag
	if obj, ok := v.(map[string]any); ok && rootTag == "" && len(obj) == 1 {
		for k, val := range obj {
			if !c.isAttr(k) && k != c.textKey {
				rootTag, v = k, val
			}
		}
	}
	if rootTag == "" {
		rootTag = defaultRootTag
	}
	if _, ok := v.([]any); ok && req.RootTag == "" && rootTag != defaultRootTag {
		// {"a": [1, 2]} has no single root; wrap the repeated elements.
		v = map[string]any{rootTag: v}
		rootTag = defaultRootTag
	}
	if !nameRe.MatchString(rootTag) {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid element name %q", rootTag)
	}

	doc := etree.NewDocument()
	if req.Declaration == nil || *req.Declaration {
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	}
	root := doc.CreateElement(rootTag)
	if err := c.fill(root, v); err != nil {
		return nil, err
	}

	if indent == 0 {
		doc.Indent(etree.NoIndent)
	} else {
		doc.Indent(indent)
	}
	out, err := doc.WriteToString()
	if err != nil {
		return nil, fmt.Errorf("write xml: %w", err)
	}
	return &FromJSONResponse{XML: strings.TrimRight(out, "\n")}, nil
}

type fromJSON struct {
	prefix  string
	textKey string
}

func (c *fromJSON) isAttr(key string) bool {
	return c.prefix != "" && strings.HasPrefix(key, c.prefix) && len(key) > len(c.prefix)
}

func (c *fromJSON) fill(el *etree.Element, v any) error {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := c.field(el, k, t[k]); err != nil {
				return err
			}
		}
	case []any:
		for _, item := range t {
			if err := c.fill(el.CreateElement(defaultItemTag), item); err != nil {
				return err
			}
		}
	case nil:
	default:
		el.SetText(text(t))
	}
	return nil
}

func (c *fromJSON) field(el *etree.Element, key string, v any) error {
	switch {
	case key == c.textKey:
		el.SetText(text(v))
		return nil
	case c.isAttr(key):
		name := strings.TrimPrefix(key, c.prefix)
		if !nameRe.MatchString(name) {
			return webtools.Errorf(webtools.EINVALID, "invalid attribute name %q", name)
		}
		el.CreateAttr(name, text(v))
		return nil
	}

	if !nameRe.MatchString(key) {
		return webtools.Errorf(webtools.EINVALID, "invalid element name %q", key)
	}
	if items, ok := v.([]any); ok {
		for _, item := range items {
			if err := c.fill(el.CreateElement(key), item); err != nil {
				return err
			}
		}
		return nil
	}
	return c.fill(el.CreateElement(key), v)
}

// text renders a JSON scalar as element or attribute text.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
