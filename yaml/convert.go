package yaml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/webtools"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// Conversion flavors.
const (
	// FlavorCore coerces plain scalars with webtools.ParseScalar.
	FlavorCore = "core"

	// FlavorKubernetes follows sigs.k8s.io/yaml, the YAML 1.1 rules used by
	// Kubernetes manifests ("yes" is true, "0755" is octal).
	FlavorKubernetes = "kubernetes"
)

// ToJSONRequest is the request body of the yaml-to-json tool.
type ToJSONRequest struct {
	YAML   string `json:"yaml"`
	Indent *int   `json:"indent"`
	Flavor string `json:"flavor"`
}

// ToJSONResponse is the result of the yaml-to-json tool.
type ToJSONResponse struct {
	JSON      string `json:"json"`
	Documents int    `json:"documents"`
}

// ToJSON is the yaml-to-json tool. Multi-document input becomes a JSON array.
func ToJSON(_ context.Context, req ToJSONRequest) (*ToJSONResponse, error) {
	if err := checkSize("yaml", req.YAML); err != nil {
		return nil, err
	}
	indent, err := jsonIndent(req.Indent)
	if err != nil {
		return nil, err
	}

	var docs []json.RawMessage
	switch req.Flavor {
	case "", FlavorCore:
		res := Parse(req.YAML, ParseOptions{})
		if err := firstError(res.Diagnostics); err != nil {
			return nil, err
		}
		for _, d := range res.Documents {
			b, err := json.Marshal(d)
			if err != nil {
				return nil, fmt.Errorf("encode json: %w", err)
			}
			docs = append(docs, b)
		}
	case FlavorKubernetes:
		docs, err = kubernetesToJSON(req.YAML)
		if err != nil {
			return nil, err
		}
	default:
		return nil, webtools.Errorf(webtools.EINVALID, "unknown flavor %q", req.Flavor)
	}

	var raw []byte
	switch len(docs) {
	case 0:
		raw = []byte("null")
	case 1:
		raw = docs[0]
	default:
		raw, err = json.Marshal(docs)
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
	}

	var out bytes.Buffer
	if indent == "" {
		out.Write(raw)
	} else if err := json.Indent(&out, raw, "", indent); err != nil {
		return nil, fmt.Errorf("indent json: %w", err)
	}
	return &ToJSONResponse{JSON: out.String(), Documents: len(docs)}, nil
}

// kubernetesToJSON splits the stream with yaml.v3 and converts each
// document with sigs.k8s.io/yaml.
func kubernetesToJSON(src string) ([]json.RawMessage, error) {
	var docs []json.RawMessage
	dec := yaml.NewDecoder(strings.NewReader(src))
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, firstError(parserDiagnostics(err))
		}
		b, err := yaml.Marshal(&node)
		if err != nil {
			return nil, fmt.Errorf("re-encode yaml: %w", err)
		}
		j, err := sigsyaml.YAMLToJSON(b)
		if err != nil {
			return nil, webtools.Errorf(webtools.EINVALID, "line %d: %v", node.Line, err)
		}
		docs = append(docs, j)
	}
}

// FromJSONRequest is the request body of the json-to-yaml tool.
type FromJSONRequest struct {
	JSON   string `json:"json"`
	Indent int    `json:"indent"`
	Flavor string `json:"flavor"`
}

// FromJSONResponse is the result of the json-to-yaml tool.
type FromJSONResponse struct {
	YAML string `json:"yaml"`
}

// FromJSON is the json-to-yaml tool. Keys are sorted.
func FromJSON(_ context.Context, req FromJSONRequest) (*FromJSONResponse, error) {
	if err := checkSize("json", req.JSON); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.JSON) == "" {
		return nil, webtools.Errorf(webtools.EINVALID, "json is required")
	}
	if req.Indent < 0 || req.Indent > 8 {
		return nil, webtools.Errorf(webtools.EINVALID, "indent must be between 1 and 8")
	}

	switch req.Flavor {
	case "", FlavorCore:
		v, err := DecodeJSON(req.JSON)
		if err != nil {
			return nil, err
		}
		out, err := Serialize([]any{v}, req.Indent)
		if err != nil {
			return nil, err
		}
		return &FromJSONResponse{YAML: out}, nil
	case FlavorKubernetes:
		out, err := sigsyaml.JSONToYAML([]byte(req.JSON))
		if err != nil {
			return nil, webtools.Errorf(webtools.EINVALID, "invalid json: %v", err)
		}
		return &FromJSONResponse{YAML: string(out)}, nil
	default:
		return nil, webtools.Errorf(webtools.EINVALID, "unknown flavor %q", req.Flavor)
	}
}

// DecodeJSON decodes a single JSON value. Integers become int64 and other
// numbers float64.
func DecodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid json: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, webtools.Errorf(webtools.EINVALID, "invalid json: unexpected data after value")
	}
	return convertNumbers(v), nil
}

func convertNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = convertNumbers(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = convertNumbers(val)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	default:
		return v
	}
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

// firstError turns the first error diagnostic into an EINVALID error.
func firstError(diags []webtools.Diagnostic) error {
	for _, d := range diags {
		if d.Severity != webtools.SeverityError {
			continue
		}
		if d.Line > 0 {
			return webtools.Errorf(webtools.EINVALID, "line %d: %s", d.Line, d.Message)
		}
		return webtools.Errorf(webtools.EINVALID, "%s", d.Message)
	}
	return nil
}
