package yaml_test

import (
	"context"
	"testing"

	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestToJSON(t *testing.T) {
	t.Parallel()

	t.Run("tagged infinity stays a string", func(t *testing.T) {
		t.Parallel()

		resp, err := yaml.ToJSON(context.Background(), yaml.ToJSONRequest{YAML: "a: !!float .inf\n", Indent: intPtr(0)})

		require.NoError(t, err)
		assert.Equal(t, `{"a":".inf"}`, resp.JSON)
	})

	t.Run("single document", func(t *testing.T) {
		t.Parallel()

		resp, err := yaml.ToJSON(context.Background(), yaml.ToJSONRequest{YAML: "b: [x, 007]\na: 1\n", Indent: intPtr(0)})

		require.NoError(t, err)
		assert.Equal(t, `{"a":1,"b":["x","007"]}`, resp.JSON)
		assert.Equal(t, 1, resp.Documents)
	})

	t.Run("multiple documents become an array", func(t *testing.T) {
		t.Parallel()

		resp, err := yaml.ToJSON(context.Background(), yaml.ToJSONRequest{YAML: "a: 1\n---\nb: 2\n", Indent: intPtr(0)})

		require.NoError(t, err)
		assert.Equal(t, `[{"a":1},{"b":2}]`, resp.JSON)
	})

	t.Run("indents by default", func(t *testing.T) {
		t.Parallel()

		resp, err := yaml.ToJSON(context.Background(), yaml.ToJSONRequest{YAML: "a: 1\n"})

		require.NoError(t, err)
		assert.Equal(t, "{\n  \"a\": 1\n}", resp.JSON)
	})

	t.Run("kubernetes flavor uses YAML 1.1 booleans", func(t *testing.T) {
		t.Parallel()

		core, err := yaml.ToJSON(context.Background(), yaml.ToJSONRequest{YAML: "enabled: yes\n", Indent: intPtr(0)})
		require.NoError(t, err)
		k8s, err := yaml.ToJSON(context.Background(), yaml.ToJSONRequest{YAML: "enabled: yes\n", Indent: intPtr(0), Flavor: yaml.FlavorKubernetes})
		require.NoError(t, err)

		assert.Equal(t, `{"enabled":"yes"}`, core.JSON)
		assert.Equal(t, `{"enabled":true}`, k8s.JSON)
	})

	t.Run("syntax error is EINVALID with line", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.ToJSON(context.Background(), yaml.ToJSONRequest{YAML: "ok: 1\na: b: c\n"})

		assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
		assert.Contains(t, webtools.ErrorMessage(err), "line 2")
	})

	t.Run("unknown flavor", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.ToJSON(context.Background(), yaml.ToJSONRequest{YAML: "a: 1", Flavor: "toml"})

		assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
	})
}

func TestFromJSON(t *testing.T) {
	t.Parallel()

	t.Run("round trips through the parser", func(t *testing.T) {
		t.Parallel()

		resp, err := yaml.FromJSON(context.Background(), yaml.FromJSONRequest{
			JSON: `{"b":[1,2.5,"007",null,3.0],"a":"true","c":{"d":"x: y"}}`,
		})
		require.NoError(t, err)
		assert.Contains(t, resp.YAML, `a: "true"`)

		parsed := yaml.Parse(resp.YAML, yaml.ParseOptions{})
		require.Empty(t, parsed.Diagnostics)
		want := map[string]any{
			"a": "true",
			"b": []any{int64(1), 2.5, "007", nil, 3.0},
			"c": map[string]any{"d": "x: y"},
		}
		if diff := cmp.Diff(want, parsed.Documents[0]); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s\nyaml:\n%s", diff, resp.YAML)
		}
	})

	t.Run("kubernetes flavor", func(t *testing.T) {
		t.Parallel()

		resp, err := yaml.FromJSON(context.Background(), yaml.FromJSONRequest{JSON: `{"a":1}`, Flavor: yaml.FlavorKubernetes})

		require.NoError(t, err)
		assert.Equal(t, "a: 1\n", resp.YAML)
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.FromJSON(context.Background(), yaml.FromJSONRequest{JSON: `{"a":`})

		assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.FromJSON(context.Background(), yaml.FromJSONRequest{JSON: `{} {}`})

		assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
	})
}
