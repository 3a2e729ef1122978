package text

import (
	"context"
	"strings"
	"unicode"

	"github.com/fwojciec/webtools"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const defaultSlugMaxLength = 80

var transliterations = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "Æ", "ae", "ø", "o", "Ø", "o", "œ", "oe", "Œ", "oe",
	"ł", "l", "Ł", "l", "đ", "d", "Đ", "d", "þ", "th", "Þ", "th", "&", " and ",
)

// SlugRequest is the request body of the slug-generator tool.
type SlugRequest struct {
	Text      string `json:"text"`
	Separator string `json:"separator"`
	MaxLength int    `json:"maxLength"`
	ASCIIOnly *bool  `json:"asciiOnly"`
}

// SlugResponse is the result of the slug-generator tool.
type SlugResponse struct {
	Slug   string `json:"slug"`
	Length int    `json:"length"`
}

// GenerateSlug is the slug-generator tool.
func GenerateSlug(_ context.Context, req SlugRequest) (*SlugResponse, error) {
	if err := checkSize("text", req.Text); err != nil {
		return nil, err
	}
	sep := req.Separator
	if sep == "" {
		sep = "-"
	}
	if len(sep) > 3 || strings.ContainsFunc(sep, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) {
		return nil, webtools.Errorf(webtools.EINVALID, "separator must be up to 3 non-alphanumeric characters")
	}
	maxLen := req.MaxLength
	if maxLen <= 0 {
		maxLen = defaultSlugMaxLength
	}
	asciiOnly := req.ASCIIOnly == nil || *req.ASCIIOnly

	slug, err := Slugify(req.Text, sep, maxLen, asciiOnly)
	if err != nil {
		return nil, err
	}
	return &SlugResponse{Slug: slug, Length: len(slug)}, nil
}

// Slugify lowercases s, strips diacritics and joins the remaining
// alphanumeric runs with sep. The result is cut at a separator so it fits
// in maxLen bytes.
func Slugify(s, sep string, maxLen int, asciiOnly bool) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, transliterations.Replace(s))
	if err != nil {
		return "", webtools.Errorf(webtools.EINVALID, "cannot normalize text: %v", err)
	}

	var parts []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.ToLower(stripped) {
		keep := unicode.IsLetter(r) || unicode.IsDigit(r)
		if asciiOnly && r > unicode.MaxASCII {
			keep = false
		}
		if keep {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	var out strings.Builder
	for _, p := range parts {
		extra := len(p)
		if out.Len() > 0 {
			extra += len(sep)
		}
		if out.Len()+extra > maxLen {
			if out.Len() == 0 {
				out.WriteString(truncateRunes(p, maxLen))
			}
			break
		}
		if out.Len() > 0 {
			out.WriteString(sep)
		}
		out.WriteString(p)
	}
	return out.String(), nil
}

func truncateRunes(s string, n int) string {
	size := 0
	for i, r := range s {
		l := len(string(r))
		if size+l > n {
			return s[:i]
		}
		size += l
	}
	return s
}
