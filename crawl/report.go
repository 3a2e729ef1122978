package crawl

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/webtools"
)

// AuditReport is the aggregated result of a site audit.
type AuditReport struct {
	URL                   string           `json:"url"`
	Source                string           `json:"source"`
	PagesAnalyzed         int              `json:"pagesAnalyzed"`
	PagesFailed           int              `json:"pagesFailed"`
	AverageScore          float64          `json:"averageScore"`
	Pages                 []PageSummary    `json:"pages"`
	DuplicateTitles       []DuplicateGroup `json:"duplicateTitles"`
	DuplicateDescriptions []DuplicateGroup `json:"duplicateDescriptions"`
	IssueCounts           map[string]int   `json:"issueCounts"`
	Failed                []FailedPage     `json:"failed"`
}

// PageSummary condenses one page report.
type PageSummary struct {
	URL       string           `json:"url"`
	Title     string           `json:"title"`
	Score     int              `json:"score"`
	WordCount int              `json:"wordCount"`
	Issues    []webtools.Issue `json:"issues"`
}

// DuplicateGroup lists pages sharing the same title or description.
type DuplicateGroup struct {
	Value string   `json:"value"`
	URLs  []string `json:"urls"`
}

// FailedPage is a page that could not be fetched or analyzed.
type FailedPage struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// computeHash computes a hash of the content using xxhash.
func computeHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

// buildReport aggregates page results. Pages and failures are sorted by URL.
func buildReport(siteURL, source string, results []pageResult) *AuditReport {
	report := &AuditReport{
		URL:                   siteURL,
		Source:                source,
		Pages:                 []PageSummary{},
		DuplicateTitles:       []DuplicateGroup{},
		DuplicateDescriptions: []DuplicateGroup{},
		IssueCounts:           map[string]int{},
		Failed:                []FailedPage{},
	}

	titles := newDuplicateIndex()
	descriptions := newDuplicateIndex()
	totalScore := 0

	for _, res := range results {
		if res.err != nil {
			report.Failed = append(report.Failed, FailedPage{URL: res.url, Error: webtools.ErrorMessage(res.err)})
			continue
		}
		page := res.report
		issues := page.Issues
		if issues == nil {
			issues = []webtools.Issue{}
		}
		report.Pages = append(report.Pages, PageSummary{
			URL:       res.url,
			Title:     page.Title,
			Score:     page.Score,
			WordCount: page.WordCount,
			Issues:    issues,
		})
		for _, issue := range issues {
			report.IssueCounts[issue.Code]++
		}
		titles.add(page.Title, res.url)
		descriptions.add(page.Description, res.url)
		totalScore += page.Score
	}

	sort.Slice(report.Pages, func(i, j int) bool { return report.Pages[i].URL < report.Pages[j].URL })
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].URL < report.Failed[j].URL })

	report.PagesAnalyzed = len(report.Pages)
	report.PagesFailed = len(report.Failed)
	if report.PagesAnalyzed > 0 {
		avg := float64(totalScore) / float64(report.PagesAnalyzed)
		report.AverageScore = math.Round(avg*10) / 10
	}
	report.DuplicateTitles = titles.groups()
	report.DuplicateDescriptions = descriptions.groups()
	return report
}

// duplicateIndex groups URLs by the hash of a normalized text value.
type duplicateIndex struct {
	values map[string]string
	urls   map[string][]string
}

func newDuplicateIndex() *duplicateIndex {
	return &duplicateIndex{values: map[string]string{}, urls: map[string][]string{}}
}

func (d *duplicateIndex) add(value, pageURL string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	key := computeHash(strings.ToLower(strings.Join(strings.Fields(value), " ")))
	if _, ok := d.values[key]; !ok {
		d.values[key] = value
	}
	d.urls[key] = append(d.urls[key], pageURL)
}

// groups returns values shared by two or more pages, sorted by value.
func (d *duplicateIndex) groups() []DuplicateGroup {
	groups := []DuplicateGroup{}
	for key, urls := range d.urls {
		if len(urls) < 2 {
			continue
		}
		sorted := append([]string(nil), urls...)
		sort.Strings(sorted)
		groups = append(groups, DuplicateGroup{Value: d.values[key], URLs: sorted})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	return groups
}
