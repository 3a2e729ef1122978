package fs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/webtools"
	"gopkg.in/yaml.v3"
)

// frontMatter is the YAML header of an exported tool page.
type frontMatter struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Category    string `yaml:"category"`
	Endpoint    string `yaml:"endpoint"`
	Description string `yaml:"description,omitempty"`
	Generated   string `yaml:"generated"`
}

// ToolPath returns the page path of a tool: category/slug.md.
func ToolPath(info webtools.ToolInfo) string {
	return info.Category + "/" + info.Slug + ".md"
}

// Endpoint returns the API path that runs a tool.
func Endpoint(info webtools.ToolInfo) string {
	return "/api/" + info.Category + "/" + info.Slug
}

// FormatToolPage formats a tool page with YAML front matter, the
// description and an example request.
func FormatToolPage(info webtools.ToolInfo, example string, generated time.Time) (string, error) {
	title := info.Name
	if title == "" {
		title = info.Slug
	}
	header, err := yaml.Marshal(frontMatter{
		Title:       title,
		Slug:        info.Slug,
		Category:    info.Category,
		Endpoint:    "POST " + Endpoint(info),
		Description: info.Description,
		Generated:   generated.UTC().Format("2006-01-02"),
	})
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n", title)
	if info.Description != "" {
		b.WriteString(info.Description)
		b.WriteString("\n\n")
	}
	b.WriteString("## Request\n\n")
	fmt.Fprintf(&b, "`POST %s`\n\n", Endpoint(info))
	b.WriteString("```json\n")
	b.WriteString(example)
	b.WriteString("\n```\n")
	return b.String(), nil
}

// FormatIndex formats the catalog index grouped by category.
func FormatIndex(infos []webtools.ToolInfo) string {
	var b strings.Builder
	b.WriteString("# Tools\n")
	category := ""
	for _, info := range infos {
		if info.Category != category {
			category = info.Category
			fmt.Fprintf(&b, "\n## %s\n\n", category)
		}
		name := info.Name
		if name == "" {
			name = info.Slug
		}
		fmt.Fprintf(&b, "- [%s](%s)", name, ToolPath(info))
		if info.Description != "" {
			b.WriteString(": ")
			b.WriteString(info.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Exporter writes the catalog to a FileStore.
type Exporter struct {
	Store *FileStore
	Now   func() time.Time
}

// NewExporter creates an Exporter writing to baseDir/name.
func NewExporter(baseDir, name string) *Exporter {
	return &Exporter{Store: NewFileStore(baseDir, name), Now: time.Now}
}

// Export writes one page per tool plus index.md and commits the result.
// On failure the partial output is removed and the previous export is kept.
// Returns the number of tool pages written.
func (e *Exporter) Export(ctx context.Context, catalog *webtools.Catalog) (n int, err error) {
	defer func() {
		if err != nil {
			_ = e.Store.Abort()
		}
	}()

	// Start from a clean temporary directory.
	if err := e.Store.Abort(); err != nil {
		return 0, err
	}

	infos := catalog.List(webtools.ToolFilter{})
	now := e.Now()
	for _, info := range infos {
		tool, err := catalog.Find(info.Category, info.Slug)
		if err != nil {
			return 0, err
		}
		page, err := FormatToolPage(info, webtools.RequestTemplate(tool), now)
		if err != nil {
			return 0, err
		}
		if err := e.Store.Save(ctx, ToolPath(info), page); err != nil {
			return 0, err
		}
	}
	if err := e.Store.Save(ctx, "index.md", FormatIndex(infos)); err != nil {
		return 0, err
	}
	if err := e.Store.Commit(); err != nil {
		return 0, err
	}
	return len(infos), nil
}
