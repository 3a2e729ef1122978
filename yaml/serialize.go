package yaml

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/fwojciec/webtools"
	"gopkg.in/yaml.v3"
)

// Serialize renders documents as a YAML stream. Strings that would be
// coerced to another type when read back are quoted, so that parsing the
// output yields the same trees.
func Serialize(docs []any, indent int) (string, error) {
	if indent <= 0 {
		indent = 2
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	for _, doc := range docs {
		n, err := toNode(doc)
		if err != nil {
			return "", err
		}
		if err := enc.Encode(n); err != nil {
			return "", fmt.Errorf("encode yaml: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	return buf.String(), nil
}

func toNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}, nil
	case string:
		return stringNode(t), nil
	case int:
		return intNode(int64(t)), nil
	case int64:
		return intNode(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, webtools.Errorf(webtools.EINVALID, "cannot serialize non-finite number %v", t)
		}
		s := strconv.FormatFloat(t, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			c, err := toNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case map[string]any:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			c, err := toNode(t[k])
			if err != nil {
				return nil, err
			}
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
			if k == "<<" {
				key.Style = yaml.DoubleQuotedStyle
			}
			n.Content = append(n.Content, key, c)
		}
		return n, nil
	default:
		return nil, webtools.Errorf(webtools.EINVALID, "cannot serialize value of type %s", reflect.TypeOf(v))
	}
}

func intNode(i int64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(i, 10)}
}

func stringNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.Contains(s, "\n") {
		return n
	}
	if v, ok := webtools.ParseScalar(s).(string); !ok || v != s {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}
