package yaml

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fwojciec/webtools"
)

// blockHeaderRe matches a line that opens a literal or folded block scalar.
var blockHeaderRe = regexp.MustCompile(`^(?:.*:|\s*-|\s*\?|---)?\s*[|>][-+]?[1-9]?[-+]?\s*(?:#.*)?$`)

// lintResult is the outcome of the line oriented pass.
type lintResult struct {
	diags     []webtools.Diagnostic
	documents int
}

// lint checks indentation and whitespace line by line. It never fails:
// problems are reported as diagnostics. Document markers reset the
// indentation stack and block scalar bodies are skipped.
func lint(src string, indent int) lintResult {
	var res lintResult
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")

	stack := []int{0}
	blockIndent := -1 // indentation of the open block scalar header, -1 when none
	flowDepth := 0
	sawContent := false

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		lead := leadingWhitespace(line)
		width := len(lead)

		if blockIndent >= 0 {
			if trimmed == "" || width > blockIndent {
				continue
			}
			blockIndent = -1
		}

		if strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
			res.diags = append(res.diags, webtools.Diagnostic{
				Message:  "trailing whitespace",
				Severity: webtools.SeverityWarning,
				Line:     lineNo,
				Column:   len(strings.TrimRight(line, " \t")) + 1,
			})
		}

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if isDocumentMarker(line) {
			if strings.HasPrefix(line, "---") && (sawContent || res.documents == 0) {
				res.documents++
			}
			if strings.HasPrefix(line, "---") {
				sawContent = false
			}
			stack = stack[:1]
			flowDepth = 0
			if blockHeaderRe.MatchString(line) {
				blockIndent = 0
			}
			continue
		}
		if strings.HasPrefix(line, "%") {
			continue
		}
		if !sawContent && res.documents == 0 {
			res.documents = 1
		}
		sawContent = true

		if col := strings.IndexByte(lead, '\t'); col >= 0 {
			res.diags = append(res.diags, webtools.Diagnostic{
				Message:  "tab character used for indentation",
				Severity: webtools.SeverityError,
				Line:     lineNo,
				Column:   col + 1,
			})
		} else if flowDepth == 0 {
			if indent > 0 && width%indent != 0 {
				res.diags = append(res.diags, webtools.Diagnostic{
					Message:  fmt.Sprintf("indentation of %d spaces is not a multiple of %d", width, indent),
					Severity: webtools.SeverityWarning,
					Line:     lineNo,
					Column:   1,
				})
			}
			popped := false
			for len(stack) > 1 && stack[len(stack)-1] > width {
				stack = stack[:len(stack)-1]
				popped = true
			}
			if top := stack[len(stack)-1]; top < width && !popped {
				stack = append(stack, width)
			} else if top != width {
				res.diags = append(res.diags, webtools.Diagnostic{
					Message:  "indentation does not match any outer level",
					Severity: webtools.SeverityWarning,
					Line:     lineNo,
					Column:   1,
				})
			}
		}

		flowDepth += flowBalance(trimmed)
		if flowDepth < 0 {
			flowDepth = 0
		}
		if flowDepth == 0 && blockHeaderRe.MatchString(line) {
			blockIndent = width
		}
	}
	return res
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

func isDocumentMarker(line string) bool {
	for _, m := range []string{"---", "..."} {
		if line == m || strings.HasPrefix(line, m+" ") || strings.HasPrefix(line, m+"\t") {
			return true
		}
	}
	return false
}

// flowBalance returns the change in flow collection depth on a line,
// ignoring quoted strings and comments.
func flowBalance(s string) int {
	depth := 0
	var quote rune
	prev := ' '
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case (r == '"' || r == '\'') && strings.ContainsRune(" \t[{,:", prev):
			quote = r
		case r == '#' && (prev == ' ' || prev == '\t'):
			return depth
		case r == '[' || r == '{':
			depth++
		case r == ']' || r == '}':
			depth--
		}
		prev = r
	}
	return depth
}
