package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type counterRequest struct {
	Text string `json:"text"`
}

func newTestCatalog() *webtools.Catalog {
	return webtools.NewCatalog(
		webtools.NewTool(webtools.ToolInfo{
			Category:    "text-tools",
			Slug:        "word-counter",
			Name:        "Word Counter",
			Description: "Counts words in text.",
		}, func(_ context.Context, req counterRequest) (int, error) {
			return len(strings.Fields(req.Text)), nil
		}),
		webtools.NewTool(webtools.ToolInfo{
			Category: "hash-tools",
			Slug:     "md5",
			Name:     "MD5",
		}, func(_ context.Context, req counterRequest) (string, error) {
			return req.Text, nil
		}),
	)
}

func TestToolPath(t *testing.T) {
	t.Parallel()

	info := webtools.ToolInfo{Category: "text-tools", Slug: "word-counter"}
	assert.Equal(t, "text-tools/word-counter.md", fs.ToolPath(info))
	assert.Equal(t, "/api/text-tools/word-counter", fs.Endpoint(info))
}

func TestFormatToolPage(t *testing.T) {
	t.Parallel()

	info := webtools.ToolInfo{
		Category:    "text-tools",
		Slug:        "word-counter",
		Name:        "Word Counter",
		Description: "Counts words in text.",
	}
	generated := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	page, err := fs.FormatToolPage(info, "{\n  \"text\": \"\"\n}", generated)
	require.NoError(t, err)

	t.Run("front matter is valid YAML", func(t *testing.T) {
		t.Parallel()

		require.True(t, strings.HasPrefix(page, "---\n"))
		end := strings.Index(page[4:], "---\n")
		require.Positive(t, end)

		var meta map[string]string
		require.NoError(t, yaml.Unmarshal([]byte(page[4:4+end]), &meta))
		assert.Equal(t, "Word Counter", meta["title"])
		assert.Equal(t, "text-tools", meta["category"])
		assert.Equal(t, "POST /api/text-tools/word-counter", meta["endpoint"])
		assert.Equal(t, "2026-03-14", meta["generated"])
	})

	t.Run("body has description and example", func(t *testing.T) {
		t.Parallel()

		assert.Contains(t, page, "# Word Counter\n\nCounts words in text.")
		assert.Contains(t, page, "```json\n{\n  \"text\": \"\"\n}\n```")
	})

	t.Run("falls back to slug without a name", func(t *testing.T) {
		t.Parallel()

		page, err := fs.FormatToolPage(webtools.ToolInfo{Category: "c", Slug: "s"}, "{}", generated)
		require.NoError(t, err)
		assert.Contains(t, page, "# s\n")
	})
}

func TestFormatIndex(t *testing.T) {
	t.Parallel()

	index := fs.FormatIndex(newTestCatalog().List(webtools.ToolFilter{}))

	assert.Contains(t, index, "## hash-tools\n\n- [MD5](hash-tools/md5.md)\n")
	assert.Contains(t, index, "- [Word Counter](text-tools/word-counter.md): Counts words in text.")
	assert.Less(t, strings.Index(index, "## hash-tools"), strings.Index(index, "## text-tools"))
}

// Story: Catalog Export
// Each tool becomes a page and the directory is replaced atomically

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	// Given an exporter with a fixed clock
	base := t.TempDir()
	exporter := fs.NewExporter(base, "docs")
	exporter.Now = func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }

	// When I export the catalog
	n, err := exporter.Export(context.Background(), newTestCatalog())

	// Then every tool gets a page
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	page, err := os.ReadFile(filepath.Join(base, "docs", "text-tools", "word-counter.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "\"text\": \"\"")
	assert.Contains(t, string(page), "generated: \"2026-01-02\"")

	// And an index links them
	index, err := os.ReadFile(filepath.Join(base, "docs", "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "hash-tools/md5.md")

	// And no temporary directory is left behind
	_, err = os.Stat(filepath.Join(base, "docs.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestExporter_ExportAbortsOnCanceledContext(t *testing.T) {
	t.Parallel()

	// Given a previous export
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "docs", "index.md"), []byte("previous"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// When the export is canceled
	_, err := fs.NewExporter(base, "docs").Export(ctx, newTestCatalog())

	// Then the previous export is kept
	require.ErrorIs(t, err, context.Canceled)
	content, err := os.ReadFile(filepath.Join(base, "docs", "index.md"))
	require.NoError(t, err)
	assert.Equal(t, "previous", string(content))

	_, err = os.Stat(filepath.Join(base, "docs.tmp"))
	assert.True(t, os.IsNotExist(err))
}
