package webtools_test

import (
	"testing"
	"time"

	"github.com/fwojciec/webtools"
	"github.com/stretchr/testify/assert"
)

func TestParseScalar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want any
	}{
		{`"42"`, "42"},
		{`'it''s'`, "it's"},
		{`"line\nbreak"`, "line\nbreak"},
		{"null", nil},
		{"~", nil},
		{"", nil},
		{"true", true},
		{"FALSE", false},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"007", "007"},
		{"3.14", 3.14},
		{"1e3", 1000.0},
		{"-0.5", -0.5},
		{"NaN", "NaN"},
		{"inf", "inf"},
		{"hello", "hello"},
		{"  padded  ", "padded"},
		{"99999999999999999999", 1e20},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, webtools.ParseScalar(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	in := map[string]any{
		"nested": map[any]any{1: "one", true: []any{map[any]any{"k": ts}}},
	}

	got := webtools.Normalize(in)

	want := map[string]any{
		"nested": map[string]any{
			"1":    "one",
			"true": []any{map[string]any{"k": "2024-01-02T03:04:05Z"}},
		},
	}
	assert.Equal(t, want, got)
}

func TestHasErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, webtools.HasErrors(nil))
	assert.False(t, webtools.HasErrors([]webtools.Diagnostic{{Severity: webtools.SeverityWarning}}))
	assert.True(t, webtools.HasErrors([]webtools.Diagnostic{{Severity: webtools.SeverityError}}))
}
