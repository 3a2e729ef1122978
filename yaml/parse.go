package yaml

import (
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/fwojciec/webtools"
	"gopkg.in/yaml.v3"
)

// maxNodes bounds the number of values a stream may expand to through
// aliases.
const maxNodes = 100000

var errorLineRe = regexp.MustCompile(`^line (\d+): (.*)$`)

// Stats counts the structure of a parsed stream.
type Stats struct {
	Lines     int `json:"lines"`
	Documents int `json:"documents"`
	Mappings  int `json:"mappings"`
	Sequences int `json:"sequences"`
	Scalars   int `json:"scalars"`
	Keys      int `json:"keys"`
	Aliases   int `json:"aliases"`
	MaxDepth  int `json:"maxDepth"`
}

// ParseOptions controls Parse.
type ParseOptions struct {
	// AllowDuplicateKeys reports duplicate mapping keys as warnings instead
	// of errors. The last value wins.
	AllowDuplicateKeys bool
}

// Result is the outcome of parsing a YAML stream.
type Result struct {
	Documents   []any
	Diagnostics []webtools.Diagnostic
	Stats       Stats
}

// Parse parses every document in src into JSON-compatible trees. Syntax
// errors never fail the call; they are returned as diagnostics and parsing
// stops at the first one.
//
// Plain scalars are coerced with webtools.ParseScalar. Quoted and block
// scalars are always strings. Explicit tags are honored.
func Parse(src string, opts ParseOptions) *Result {
	res := &Result{}
	if src != "" {
		res.Stats.Lines = strings.Count(strings.TrimSuffix(src, "\n"), "\n") + 1
	}

	dec := yaml.NewDecoder(strings.NewReader(src))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, parserDiagnostics(err)...)
			break
		}

		res.Stats.Documents++
		w := &walker{opts: opts, stats: &res.Stats}
		w.walk(&doc, 0)
		res.Diagnostics = append(res.Diagnostics, w.diags...)

		b := &builder{}
		v, err := b.build(&doc)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, webtools.Diagnostic{
				Message:  err.Error(),
				Severity: webtools.SeverityError,
				Line:     doc.Line,
			})
			break
		}
		res.Documents = append(res.Documents, v)
	}
	return res
}

// parserDiagnostics converts a yaml.v3 error into line tagged diagnostics.
func parserDiagnostics(err error) []webtools.Diagnostic {
	var typeErr *yaml.TypeError
	msgs := []string{err.Error()}
	if errors.As(err, &typeErr) {
		msgs = typeErr.Errors
	}

	out := make([]webtools.Diagnostic, 0, len(msgs))
	for _, msg := range msgs {
		msg = strings.TrimPrefix(msg, "yaml: ")
		d := webtools.Diagnostic{Message: msg, Severity: webtools.SeverityError}
		if m := errorLineRe.FindStringSubmatch(msg); m != nil {
			d.Line, _ = strconv.Atoi(m[1])
			d.Message = m[2]
		}
		out = append(out, d)
	}
	return out
}

// walker collects statistics and duplicate key diagnostics from the raw
// node tree. Aliases are counted but not followed.
type walker struct {
	opts  ParseOptions
	stats *Stats
	diags []webtools.Diagnostic
}

func (w *walker) walk(n *yaml.Node, depth int) {
	if depth > w.stats.MaxDepth {
		w.stats.MaxDepth = depth
	}
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			w.walk(c, depth)
		}
	case yaml.MappingNode:
		w.stats.Mappings++
		seen := make(map[string]int)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			w.stats.Keys++
			if k.Kind == yaml.ScalarNode && k.Tag != "!!merge" {
				if first, dup := seen[k.Value]; dup {
					sev := webtools.SeverityError
					if w.opts.AllowDuplicateKeys {
						sev = webtools.SeverityWarning
					}
					w.diags = append(w.diags, webtools.Diagnostic{
						Message:  fmt.Sprintf("duplicate key %q (first defined on line %d)", k.Value, first),
						Severity: sev,
						Line:     k.Line,
						Column:   k.Column,
					})
				} else {
					seen[k.Value] = k.Line
				}
			}
			if k.Kind != yaml.ScalarNode {
				w.walk(k, depth+1)
			}
			w.walk(v, depth+1)
		}
	case yaml.SequenceNode:
		w.stats.Sequences++
		for _, c := range n.Content {
			w.walk(c, depth+1)
		}
	case yaml.ScalarNode:
		w.stats.Scalars++
	case yaml.AliasNode:
		w.stats.Aliases++
	}
}

// builder turns nodes into plain Go values.
type builder struct {
	nodes int
}

func (b *builder) build(n *yaml.Node) (any, error) {
	b.nodes++
	if b.nodes > maxNodes {
		return nil, fmt.Errorf("document expands to more than %d nodes", maxNodes)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return b.build(n.Content[0])
	case yaml.AliasNode:
		return b.build(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := b.build(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return b.mapping(n)
	case yaml.ScalarNode:
		return scalarValue(n), nil
	default:
		return nil, fmt.Errorf("unsupported node kind %d", n.Kind)
	}
}

// mapping builds a map. Merge keys are applied first so explicit keys
// override merged ones.
func (b *builder) mapping(n *yaml.Node) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Tag != "!!merge" {
			continue
		}
		merged, err := b.build(v)
		if err != nil {
			return nil, err
		}
		sources := []any{merged}
		if seq, ok := merged.([]any); ok {
			sources = seq
		}
		for _, src := range sources {
			m, ok := src.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("line %d: merge value must be a mapping or a list of mappings", v.Line)
			}
			for mk, mv := range m {
				if _, exists := out[mk]; !exists {
					out[mk] = mv
				}
			}
		}
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Tag == "!!merge" {
			continue
		}
		key, err := b.key(k)
		if err != nil {
			return nil, err
		}
		val, err := b.build(v)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

func (b *builder) key(k *yaml.Node) (string, error) {
	if k.Kind == yaml.ScalarNode {
		return k.Value, nil
	}
	v, err := b.build(k)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

func scalarValue(n *yaml.Node) any {
	if n.Style&yaml.TaggedStyle != 0 {
		switch n.ShortTag() {
		case "!!str", "!!binary":
			return n.Value
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return n.Value
		}
		// JSON has no representation for infinities and NaN.
		if f, ok := v.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
			return n.Value
		}
		return webtools.Normalize(v)
	}
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
		return n.Value
	}
	return webtools.ParseScalar(n.Value)
}
