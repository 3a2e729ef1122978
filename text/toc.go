package text

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	headingRe   = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+?)(?:[ \t]+#+)?[ \t]*$`)
	codeBlockRe = regexp.MustCompile("(?s)(```|~~~).*?(```|~~~)")
)

// Section represents a heading in a markdown document.
type Section struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
}

// ExtractSections parses markdown and returns all headings (H1-H6).
// It generates URL-safe anchors and handles duplicates with numeric suffixes.
func ExtractSections(markdown string) []Section {
	if markdown == "" {
		return nil
	}

	// Remove code blocks to avoid matching # in code
	cleaned := codeBlockRe.ReplaceAllString(markdown, "")

	matches := headingRe.FindAllStringSubmatch(cleaned, -1)
	if len(matches) == 0 {
		return nil
	}

	sections := make([]Section, 0, len(matches))
	anchorCounts := make(map[string]int)

	for _, match := range matches {
		title := strings.TrimSpace(match[2])
		baseAnchor := generateAnchor(title)

		anchor := baseAnchor
		if count, exists := anchorCounts[baseAnchor]; exists {
			anchor = baseAnchor + "-" + strconv.Itoa(count)
			anchorCounts[baseAnchor]++
		} else {
			anchorCounts[baseAnchor] = 1
		}

		sections = append(sections, Section{
			Level:  len(match[1]),
			Title:  title,
			Anchor: anchor,
		})
	}

	return sections
}

// generateAnchor creates a URL-safe anchor from a title.
// Converts to lowercase, replaces spaces with hyphens, removes special chars.
func generateAnchor(title string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevHyphen = false
		} else if unicode.IsSpace(r) || r == '-' {
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}

// TOCRequest is the request body of the markdown-toc tool.
type TOCRequest struct {
	Markdown string `json:"markdown"`
	MinLevel int    `json:"minLevel"`
	MaxLevel int    `json:"maxLevel"`
	Ordered  bool   `json:"ordered"`
}

// TOCResponse is the result of the markdown-toc tool.
type TOCResponse struct {
	TOC      string    `json:"toc"`
	Sections []Section `json:"sections"`
}

// GenerateTOC is the markdown-toc tool. Entries are indented relative to
// the shallowest included heading.
func GenerateTOC(_ context.Context, req TOCRequest) (*TOCResponse, error) {
	if err := checkSize("markdown", req.Markdown); err != nil {
		return nil, err
	}
	minLevel, maxLevel := req.MinLevel, req.MaxLevel
	if minLevel < 1 {
		minLevel = 1
	}
	if maxLevel < 1 || maxLevel > 6 {
		maxLevel = 6
	}

	sections := []Section{}
	shallowest := 7
	for _, s := range ExtractSections(req.Markdown) {
		if s.Level < minLevel || s.Level > maxLevel {
			continue
		}
		sections = append(sections, s)
		shallowest = min(shallowest, s.Level)
	}

	indent := "  "
	if req.Ordered {
		indent = "   "
	}

	var sb strings.Builder
	counters := make([]int, 7)
	for _, s := range sections {
		depth := s.Level - shallowest
		marker := "-"
		if req.Ordered {
			counters[s.Level]++
			for l := s.Level + 1; l < len(counters); l++ {
				counters[l] = 0
			}
			marker = strconv.Itoa(counters[s.Level]) + "."
		}
		fmt.Fprintf(&sb, "%s%s [%s](#%s)\n", strings.Repeat(indent, depth), marker, s.Title, s.Anchor)
	}

	return &TOCResponse{TOC: sb.String(), Sections: sections}, nil
}
