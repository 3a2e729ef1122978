package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webtools"
)

// Ensure Detector implements webtools.FrameworkDetector.
var _ webtools.FrameworkDetector = (*Detector)(nil)

// marker is a CSS selector whose presence identifies a framework.
type marker struct {
	framework webtools.Framework
	selector  string
}

// markers are checked in order after the meta generator tag. More specific
// generators come before the ones they build on (VitePress before VuePress,
// Nextra before Next.js).
var markers = []marker{
	{webtools.FrameworkDocusaurus, "#__docusaurus_skipToContent_fallback"},
	{webtools.FrameworkDocusaurus, ".theme-doc-sidebar-container"},
	{webtools.FrameworkMkDocs, "[data-md-color-scheme]"},
	{webtools.FrameworkMkDocs, "[data-md-component]"},
	{webtools.FrameworkMkDocs, ".md-nav--primary"},
	{webtools.FrameworkSphinx, ".toctree-wrapper"},
	{webtools.FrameworkSphinx, ".wy-nav-side"},
	{webtools.FrameworkSphinx, ".wy-menu-vertical"},
	{webtools.FrameworkSphinx, ".sphinxsidebar"},
	{webtools.FrameworkVitePress, "#VPContent"},
	{webtools.FrameworkVitePress, ".VPDoc"},
	{webtools.FrameworkVitePress, ".VPDocAsideOutline"},
	{webtools.FrameworkVuePress, ".theme-default-content"},
	{webtools.FrameworkVuePress, ".sidebar-links"},
	{webtools.FrameworkVuePress, ".vuepress-navbar"},
	{webtools.FrameworkGitBook, "[data-testid='space.sidebar']"},
	{webtools.FrameworkGitBook, "[data-testid='page.desktopTableOfContents']"},
	{webtools.FrameworkNextra, ".nextra-navbar"},
	{webtools.FrameworkNextra, ".nextra-sidebar"},
	{webtools.FrameworkNextra, ".nextra-toc"},
	{webtools.FrameworkWordPress, "link[href*='/wp-content/']"},
	{webtools.FrameworkWordPress, "script[src*='/wp-includes/']"},
	{webtools.FrameworkGatsby, "#___gatsby"},
	{webtools.FrameworkNextJS, "script#__NEXT_DATA__"},
	{webtools.FrameworkNextJS, "script[src*='/_next/static/']"},
	{webtools.FrameworkNuxt, "#__nuxt"},
	{webtools.FrameworkNuxt, "script[src*='/_nuxt/']"},
	{webtools.FrameworkShopify, "script[src*='cdn.shopify.com']"},
	{webtools.FrameworkShopify, "link[href*='cdn.shopify.com']"},
	{webtools.FrameworkWix, "meta[name='wix-dynamic-custom-elements']"},
	{webtools.FrameworkWix, "script[src*='static.parastorage.com']"},
}

// generators maps substrings of the meta generator tag to frameworks.
var generators = []struct {
	needle    string
	framework webtools.Framework
}{
	{"sphinx", webtools.FrameworkSphinx},
	{"gitbook", webtools.FrameworkGitBook},
	{"docusaurus", webtools.FrameworkDocusaurus},
	{"mkdocs", webtools.FrameworkMkDocs},
	{"vitepress", webtools.FrameworkVitePress},
	{"vuepress", webtools.FrameworkVuePress},
	{"nextra", webtools.FrameworkNextra},
	{"wordpress", webtools.FrameworkWordPress},
	{"hugo", webtools.FrameworkHugo},
	{"jekyll", webtools.FrameworkJekyll},
	{"gatsby", webtools.FrameworkGatsby},
	{"next.js", webtools.FrameworkNextJS},
	{"nuxt", webtools.FrameworkNuxt},
	{"wix.com", webtools.FrameworkWix},
}

// Detector identifies site generators and platforms from HTML content.
// It checks the meta generator tag, then framework-specific CSS classes,
// data attributes and asset paths.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes HTML and returns the identified framework.
// Returns FrameworkUnknown if the framework cannot be determined.
func (d *Detector) Detect(html string) webtools.Framework {
	return d.Inspect(html).Framework
}

// Inspect is like Detect but also reports the generator tag and the markers
// that matched.
func (d *Detector) Inspect(html string) webtools.FrameworkDetection {
	res := webtools.FrameworkDetection{Signals: []string{}}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return res
	}
	return d.inspect(doc)
}

func (d *Detector) inspect(doc *goquery.Document) webtools.FrameworkDetection {
	res := webtools.FrameworkDetection{Signals: []string{}}

	// Meta generator tags are the most reliable signal when present.
	if content, ok := doc.Find("meta[name='generator']").Last().Attr("content"); ok {
		res.Generator = strings.TrimSpace(content)
		generator := strings.ToLower(content)
		for _, g := range generators {
			if strings.Contains(generator, g.needle) {
				res.Framework = g.framework
				res.Signals = append(res.Signals, "meta generator: "+res.Generator)
				break
			}
		}
	}

	for _, m := range markers {
		if res.Framework != webtools.FrameworkUnknown && m.framework != res.Framework {
			continue
		}
		if doc.Find(m.selector).Length() > 0 {
			res.Framework = m.framework
			res.Signals = append(res.Signals, m.selector)
		}
	}

	if res.Framework == webtools.FrameworkUnknown && hasGitBookClasses(doc) {
		res.Framework = webtools.FrameworkGitBook
		res.Signals = append(res.Signals, "html.circular-corners.theme-clean")
	}
	return res
}

// hasGitBookClasses checks for GitBook-specific classes on the html element.
// GitBook uses a combination of: circular-corners, theme-clean, tint
func hasGitBookClasses(doc *goquery.Document) bool {
	htmlClass, _ := doc.Find("html").Attr("class")
	if htmlClass == "" {
		return false
	}

	// Require at least two of these GitBook-specific classes
	count := 0
	for _, c := range []string{"circular-corners", "theme-clean", "tint"} {
		if strings.Contains(htmlClass, c) {
			count++
		}
	}
	return count >= 2
}
