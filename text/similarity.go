package text

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/fwojciec/webtools"
)

// Similarity algorithms.
const (
	AlgorithmLevenshtein = "levenshtein"
	AlgorithmJaccard     = "jaccard"
	AlgorithmCosine      = "cosine"
	AlgorithmDice        = "dice"
	AlgorithmLCS         = "lcs"
)

// Algorithms lists the supported similarity algorithms in report order.
var Algorithms = []string{AlgorithmLevenshtein, AlgorithmJaccard, AlgorithmCosine, AlgorithmDice, AlgorithmLCS}

// maxEditRunes bounds inputs to the quadratic algorithms.
const maxEditRunes = 10000

// SimilarityRequest is the request body of the text-similarity tool.
type SimilarityRequest struct {
	Text1         string   `json:"text1"`
	Text2         string   `json:"text2"`
	Algorithms    []string `json:"algorithms"`
	CaseSensitive bool     `json:"caseSensitive"`
}

// TextSummary holds per-text statistics for the similarity report.
type TextSummary struct {
	Characters  int `json:"characters"`
	Words       int `json:"words"`
	UniqueWords int `json:"uniqueWords"`
}

// SimilarityResponse is the result of the text-similarity tool.
type SimilarityResponse struct {
	Similarities map[string]float64 `json:"similarities"`
	Average      float64            `json:"average"`
	Verdict      string             `json:"verdict"`
	Text1        TextSummary        `json:"text1"`
	Text2        TextSummary        `json:"text2"`
	CommonWords  []string           `json:"commonWords"`
}

// CompareTexts is the text-similarity tool.
func CompareTexts(_ context.Context, req SimilarityRequest) (*SimilarityResponse, error) {
	if err := checkSize("text1", req.Text1); err != nil {
		return nil, err
	}
	if err := checkSize("text2", req.Text2); err != nil {
		return nil, err
	}

	algorithms := req.Algorithms
	if len(algorithms) == 0 {
		algorithms = Algorithms
	}

	a, b := req.Text1, req.Text2
	if !req.CaseSensitive {
		a, b = strings.ToLower(a), strings.ToLower(b)
	}

	resp := &SimilarityResponse{
		Similarities: make(map[string]float64, len(algorithms)),
		Text1:        summarize(req.Text1),
		Text2:        summarize(req.Text2),
		CommonWords:  commonWords(a, b),
	}

	var sum float64
	for _, alg := range algorithms {
		if _, seen := resp.Similarities[alg]; seen {
			continue
		}
		score, err := Similarity(alg, a, b)
		if err != nil {
			return nil, err
		}
		score = round(score, 4)
		resp.Similarities[alg] = score
		sum += score
	}
	resp.Average = round(sum/float64(len(resp.Similarities)), 4)
	resp.Verdict = verdict(resp.Average)
	return resp, nil
}

// Similarity scores a and b between 0 (different) and 1 (identical).
// Two empty strings are identical for every algorithm.
func Similarity(algorithm, a, b string) (float64, error) {
	switch algorithm {
	case AlgorithmLevenshtein:
		if err := checkEditSize(a, b); err != nil {
			return 0, err
		}
		return levenshteinSimilarity(a, b), nil
	case AlgorithmJaccard:
		return jaccard(a, b), nil
	case AlgorithmCosine:
		return cosine(a, b), nil
	case AlgorithmDice:
		return dice(a, b), nil
	case AlgorithmLCS:
		if err := checkEditSize(a, b); err != nil {
			return 0, err
		}
		return lcsRatio(a, b), nil
	default:
		return 0, webtools.Errorf(webtools.EINVALID, "unknown similarity algorithm %q", algorithm)
	}
}

func checkEditSize(a, b string) error {
	if utf8.RuneCountInString(a) > maxEditRunes || utf8.RuneCountInString(b) > maxEditRunes {
		return webtools.Errorf(webtools.EINVALID, "texts longer than %d characters are not supported by edit distance algorithms", maxEditRunes)
	}
	return nil
}

func levenshteinSimilarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range words(s) {
		set[w] = struct{}{}
	}
	return set
}

func jaccard(a, b string) float64 {
	sa, sb := wordSet(a), wordSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1
	}
	inter := 0
	for w := range sa {
		if _, ok := sb[w]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(sa)+len(sb)-inter)
}

func termFrequencies(s string) map[string]float64 {
	tf := make(map[string]float64)
	for _, w := range words(s) {
		tf[w]++
	}
	return tf
}

func cosine(a, b string) float64 {
	ta, tb := termFrequencies(a), termFrequencies(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	var dot, na, nb float64
	for w, x := range ta {
		dot += x * tb[w]
		na += x * x
	}
	for _, y := range tb {
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func bigrams(s string) map[string]int {
	rs := []rune(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
	out := make(map[string]int)
	for i := 0; i+1 < len(rs); i++ {
		out[string(rs[i:i+2])]++
	}
	return out
}

// dice is the Sørensen–Dice coefficient over character bigram multisets.
func dice(a, b string) float64 {
	ba, bb := bigrams(a), bigrams(b)
	var na, nb int
	for _, c := range ba {
		na += c
	}
	for _, c := range bb {
		nb += c
	}
	if na == 0 && nb == 0 {
		if strings.Join(strings.Fields(a), "") == strings.Join(strings.Fields(b), "") {
			return 1
		}
		return 0
	}
	inter := 0
	for g, c := range ba {
		inter += min(c, bb[g])
	}
	return 2 * float64(inter) / float64(na+nb)
}

// lcsRatio is the longest common subsequence length over the longer length.
func lcsRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			switch {
			case ra[i-1] == rb[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return float64(prev[len(rb)]) / float64(longest)
}

func summarize(s string) TextSummary {
	ws := words(s)
	unique := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		unique[strings.ToLower(w)] = struct{}{}
	}
	return TextSummary{
		Characters:  graphemeCount(s),
		Words:       len(ws),
		UniqueWords: len(unique),
	}
}

func commonWords(a, b string) []string {
	sa, sb := wordSet(a), wordSet(b)
	out := []string{}
	for w := range sa {
		if _, ok := sb[w]; ok {
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}

func verdict(score float64) string {
	switch {
	case score >= 0.9:
		return "nearly identical"
	case score >= 0.7:
		return "very similar"
	case score >= 0.4:
		return "somewhat similar"
	case score > 0.1:
		return "mostly different"
	default:
		return "completely different"
	}
}
