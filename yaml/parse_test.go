package yaml_test

import (
	"testing"

	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `name: webtools
version: 3
ratio: 0.75
enabled: true
nothing: null
zip: "007"
code: 007
date: 2024-01-01
list:
  - a
  - 1
  - {x: 1, y: [true, ~]}
text: |
  line one
  line two
folded: >
  folded
  text
quoted: 'it''s'
empty: ""
spaced: "  padded  "
`

func TestParse_ScalarCoercion(t *testing.T) {
	t.Parallel()

	res := yaml.Parse(sample, yaml.ParseOptions{})
	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Documents, 1)

	want := map[string]any{
		"name":    "webtools",
		"version": int64(3),
		"ratio":   0.75,
		"enabled": true,
		"nothing": nil,
		"zip":     "007",
		"code":    "007",
		"date":    "2024-01-01",
		"list": []any{
			"a",
			int64(1),
			map[string]any{"x": int64(1), "y": []any{true, nil}},
		},
		"text":   "line one\nline two\n",
		"folded": "folded text\n",
		"quoted": "it's",
		"empty":  "",
		"spaced": "  padded  ",
	}
	if diff := cmp.Diff(want, res.Documents[0]); diff != "" {
		t.Errorf("parsed tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := map[string]string{
		"sample":       sample,
		"multi":        "a: 1\n---\n- x\n- 'TRUE'\n---\nplain\n",
		"nested":       "a:\n  b:\n    c: [1, 2.0, -3e5]\n  d: {e: \"\"}\n",
		"tricky":       "k: \"tRuE\"\nn: \"null\"\nm: \"<<\"\n\"<<\": 1\nf: \"1e3\"\n",
		"multiline":    "s: \"a\\nb\"\nt: |-\n  keep\n  this\n",
		"merge":        "base: &b {x: 1}\nderived:\n  <<: *b\n  y: 2\n",
		"scalar root":  "42\n",
		"empty string": "\"\"\n",
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			first := yaml.Parse(in, yaml.ParseOptions{})
			require.Empty(t, first.Diagnostics)

			out, err := yaml.Serialize(first.Documents, 2)
			require.NoError(t, err)

			second := yaml.Parse(out, yaml.ParseOptions{})
			require.Empty(t, second.Diagnostics, out)
			if diff := cmp.Diff(first.Documents, second.Documents); diff != "" {
				t.Errorf("round trip mismatch (-first +second):\n%s\nserialized:\n%s", diff, out)
			}
		})
	}
}

func TestParse_Diagnostics(t *testing.T) {
	t.Parallel()

	t.Run("syntax error carries line", func(t *testing.T) {
		t.Parallel()

		res := yaml.Parse("ok: 1\na: b: c\n", yaml.ParseOptions{})

		require.NotEmpty(t, res.Diagnostics)
		assert.Equal(t, webtools.SeverityError, res.Diagnostics[0].Severity)
		assert.Equal(t, 2, res.Diagnostics[0].Line)
		assert.NotContains(t, res.Diagnostics[0].Message, "yaml:")
	})

	t.Run("duplicate keys are errors by default", func(t *testing.T) {
		t.Parallel()

		res := yaml.Parse("a: 1\nb: 2\na: 3\n", yaml.ParseOptions{})

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, webtools.SeverityError, res.Diagnostics[0].Severity)
		assert.Equal(t, 3, res.Diagnostics[0].Line)
		assert.Contains(t, res.Diagnostics[0].Message, "first defined on line 1")
	})

	t.Run("duplicate keys can be warnings with last value winning", func(t *testing.T) {
		t.Parallel()

		res := yaml.Parse("a: 1\na: 3\n", yaml.ParseOptions{AllowDuplicateKeys: true})

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, webtools.SeverityWarning, res.Diagnostics[0].Severity)
		assert.Equal(t, map[string]any{"a": int64(3)}, res.Documents[0])
	})
}

func TestParse_Stats(t *testing.T) {
	t.Parallel()

	res := yaml.Parse("a:\n  b: [1, 2]\nc: &x 3\nd: *x\n", yaml.ParseOptions{})

	require.Empty(t, res.Diagnostics)
	assert.Equal(t, yaml.Stats{
		Lines:     4,
		Documents: 1,
		Mappings:  2,
		Sequences: 1,
		Scalars:   3,
		Keys:      4,
		Aliases:   1,
		MaxDepth:  3,
	}, res.Stats)
}

func TestParse_MergeKeys(t *testing.T) {
	t.Parallel()

	res := yaml.Parse("base: &b {x: 1, y: 2}\nderived:\n  <<: *b\n  y: 3\n", yaml.ParseOptions{})

	require.Empty(t, res.Diagnostics)
	doc := res.Documents[0].(map[string]any)
	assert.Equal(t, map[string]any{"x": int64(1), "y": int64(3)}, doc["derived"])
}

func TestParse_ExplicitTags(t *testing.T) {
	t.Parallel()

	res := yaml.Parse("a: !!str 42\nb: !!str true\n", yaml.ParseOptions{})

	require.Empty(t, res.Diagnostics)
	assert.Equal(t, map[string]any{"a": "42", "b": "true"}, res.Documents[0])
}

func TestSerialize_RejectsUnsupportedTypes(t *testing.T) {
	t.Parallel()

	_, err := yaml.Serialize([]any{struct{}{}}, 2)

	assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
}

func TestParse_TaggedNonFiniteFloats(t *testing.T) {
	t.Parallel()

	res := yaml.Parse("inf: !!float .inf\nneg: !!float -.Inf\nnan: !!float .nan\nhalf: !!float 0.5\n", yaml.ParseOptions{})
	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Documents, 1)

	want := map[string]any{
		"inf":  ".inf",
		"neg":  "-.Inf",
		"nan":  ".nan",
		"half": 0.5,
	}
	if diff := cmp.Diff(want, res.Documents[0]); diff != "" {
		t.Errorf("parsed tree mismatch (-want +got):\n%s", diff)
	}
}
