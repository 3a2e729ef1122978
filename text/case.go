package text

import (
	"context"
	"strings"
	"unicode"

	"github.com/fwojciec/webtools"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Case styles.
const (
	CaseUpper    = "upper"
	CaseLower    = "lower"
	CaseTitle    = "title"
	CaseSentence = "sentence"
	CaseCamel    = "camel"
	CasePascal   = "pascal"
	CaseSnake    = "snake"
	CaseKebab    = "kebab"
	CaseConstant = "constant"
)

// CaseStyles lists the supported case styles.
var CaseStyles = []string{CaseUpper, CaseLower, CaseTitle, CaseSentence, CaseCamel, CasePascal, CaseSnake, CaseKebab, CaseConstant}

// CaseRequest is the request body of the case-converter tool.
// An empty To converts to every style.
type CaseRequest struct {
	Text string `json:"text"`
	To   string `json:"to"`
}

// CaseResponse is the result of the case-converter tool.
type CaseResponse struct {
	Result      string            `json:"result,omitempty"`
	Conversions map[string]string `json:"conversions"`
}

// ConvertCase is the case-converter tool.
func ConvertCase(_ context.Context, req CaseRequest) (*CaseResponse, error) {
	if err := checkSize("text", req.Text); err != nil {
		return nil, err
	}

	resp := &CaseResponse{Conversions: make(map[string]string)}
	if req.To != "" {
		out, err := ToCase(req.Text, req.To)
		if err != nil {
			return nil, err
		}
		resp.Result = out
		resp.Conversions[req.To] = out
		return resp, nil
	}

	for _, style := range CaseStyles {
		out, _ := ToCase(req.Text, style)
		resp.Conversions[style] = out
	}
	return resp, nil
}

// ToCase converts s to the named case style.
func ToCase(s, style string) (string, error) {
	switch style {
	case CaseUpper:
		return cases.Upper(language.Und).String(s), nil
	case CaseLower:
		return cases.Lower(language.Und).String(s), nil
	case CaseTitle:
		return cases.Title(language.Und).String(s), nil
	case CaseSentence:
		return sentenceCase(s), nil
	case CaseCamel, CasePascal:
		parts := identifierWords(s)
		title := cases.Title(language.Und)
		for i, p := range parts {
			if i == 0 && style == CaseCamel {
				parts[i] = strings.ToLower(p)
				continue
			}
			parts[i] = title.String(p)
		}
		return strings.Join(parts, ""), nil
	case CaseSnake:
		return strings.ToLower(strings.Join(identifierWords(s), "_")), nil
	case CaseKebab:
		return strings.ToLower(strings.Join(identifierWords(s), "-")), nil
	case CaseConstant:
		return strings.ToUpper(strings.Join(identifierWords(s), "_")), nil
	default:
		return "", webtools.Errorf(webtools.EINVALID, "unknown case %q, expected one of %s", style, strings.Join(CaseStyles, ", "))
	}
}

func sentenceCase(s string) string {
	rs := []rune(strings.ToLower(s))
	capNext := true
	for i, r := range rs {
		switch {
		case capNext && unicode.IsLetter(r):
			rs[i] = unicode.ToUpper(r)
			capNext = false
		case r == '.' || r == '!' || r == '?':
			capNext = true
		}
	}
	return string(rs)
}

// identifierWords splits s at separators and case boundaries, so that
// "parseHTTPRequest" yields parse, HTTP and Request.
func identifierWords(s string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 && unicode.IsUpper(r) {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}
