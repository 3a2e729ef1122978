package webtools

// LinkPriority represents crawl priority (higher = more important).
type LinkPriority int

// Link priority levels for crawl ordering.
const (
	PriorityIgnore     LinkPriority = 0
	PriorityFallback   LinkPriority = 10
	PriorityFooter     LinkPriority = 20
	PriorityContent    LinkPriority = 50
	PriorityNavigation LinkPriority = 100
	PriorityTOC        LinkPriority = 110
)

// Link is an anchor discovered in an HTML page.
type Link struct {
	URL      string       `json:"url"`
	Text     string       `json:"text"`
	Rel      string       `json:"rel,omitempty"`
	Internal bool         `json:"internal"`
	NoFollow bool         `json:"nofollow"`
	Source   string       `json:"source"` // "nav", "toc", "content", "footer", "body"
	Priority LinkPriority `json:"-"`
}

// LinkExtractor extracts links from HTML.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns its links in document order,
	// deduplicated by resolved URL. The baseURL resolves relative links.
	ExtractLinks(html string, baseURL string) ([]Link, error)
}

// Framework identifies the generator or platform that produced a site.
type Framework string

// Detected site generators and platforms.
const (
	FrameworkUnknown    Framework = ""
	FrameworkWordPress  Framework = "wordpress"
	FrameworkHugo       Framework = "hugo"
	FrameworkJekyll     Framework = "jekyll"
	FrameworkNextJS     Framework = "nextjs"
	FrameworkGatsby     Framework = "gatsby"
	FrameworkNuxt       Framework = "nuxt"
	FrameworkDocusaurus Framework = "docusaurus"
	FrameworkMkDocs     Framework = "mkdocs"
	FrameworkSphinx     Framework = "sphinx"
	FrameworkVuePress   Framework = "vuepress"
	FrameworkVitePress  Framework = "vitepress"
	FrameworkGitBook    Framework = "gitbook"
	FrameworkNextra     Framework = "nextra"
	FrameworkShopify    Framework = "shopify"
	FrameworkWix        Framework = "wix"
)

// FrameworkDetection is the detailed outcome of framework detection.
type FrameworkDetection struct {
	Framework Framework `json:"framework"`
	Generator string    `json:"generator,omitempty"`
	Signals   []string  `json:"signals"`
}

// FrameworkDetector identifies site generators from HTML.
type FrameworkDetector interface {
	// Detect analyzes HTML and returns the identified framework.
	// Returns FrameworkUnknown if the framework cannot be determined.
	Detect(html string) Framework

	// Inspect is like Detect but also reports the generator tag and the
	// signals that matched.
	Inspect(html string) FrameworkDetection
}

// Issue is a single finding of an SEO page analysis.
type Issue struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Heading is an HTML heading in document order.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// PageReport is the result of analyzing one HTML page for on-page SEO.
type PageReport struct {
	URL              string            `json:"url,omitempty"`
	Title            string            `json:"title"`
	TitleLength      int               `json:"titleLength"`
	Description      string            `json:"description"`
	DescriptionLen   int               `json:"descriptionLength"`
	Canonical        string            `json:"canonical,omitempty"`
	Robots           string            `json:"robots,omitempty"`
	Lang             string            `json:"lang,omitempty"`
	Viewport         bool              `json:"viewport"`
	Headings         []Heading         `json:"headings"`
	H1Count          int               `json:"h1Count"`
	WordCount        int               `json:"wordCount"`
	Images           int               `json:"images"`
	ImagesMissingAlt int               `json:"imagesMissingAlt"`
	InternalLinks    int               `json:"internalLinks"`
	ExternalLinks    int               `json:"externalLinks"`
	OpenGraph        map[string]string `json:"openGraph"`
	Twitter          map[string]string `json:"twitter"`
	Issues           []Issue           `json:"issues"`
	Score            int               `json:"score"`
}

// PageAnalyzer inspects an HTML page for on-page SEO signals.
type PageAnalyzer interface {
	// AnalyzePage parses HTML and returns a report.
	// The pageURL resolves relative links and may be empty.
	AnalyzePage(html string, pageURL string) (*PageReport, error)
}
