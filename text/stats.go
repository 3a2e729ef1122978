package text

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

const (
	readingWPM  = 200
	speakingWPM = 130
	topWordsMax = 10
)

var (
	sentenceEndRe = regexp.MustCompile(`[.!?…]+(\s|$)`)
	paragraphRe   = regexp.MustCompile(`\n\s*\n`)
)

// StatisticsRequest is the request body of the text-statistics tool.
type StatisticsRequest struct {
	Text string `json:"text"`
}

// WordCount is a word with its number of occurrences.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Statistics summarizes a text.
type Statistics struct {
	Characters          int         `json:"characters"`
	CharactersNoSpaces  int         `json:"charactersNoSpaces"`
	Bytes               int         `json:"bytes"`
	Words               int         `json:"words"`
	UniqueWords         int         `json:"uniqueWords"`
	Sentences           int         `json:"sentences"`
	Paragraphs          int         `json:"paragraphs"`
	Lines               int         `json:"lines"`
	AverageWordLength   float64     `json:"averageWordLength"`
	LongestWord         string      `json:"longestWord"`
	ReadingTimeSeconds  int         `json:"readingTimeSeconds"`
	SpeakingTimeSeconds int         `json:"speakingTimeSeconds"`
	TopWords            []WordCount `json:"topWords"`
}

// AnalyzeStatistics is the text-statistics tool.
func AnalyzeStatistics(_ context.Context, req StatisticsRequest) (*Statistics, error) {
	if err := checkSize("text", req.Text); err != nil {
		return nil, err
	}
	st := Compute(req.Text)
	return &st, nil
}

// Compute returns the statistics of s. Characters are grapheme clusters.
func Compute(s string) Statistics {
	st := Statistics{
		Bytes:    len(s),
		TopWords: []WordCount{},
	}

	g := uniseg.NewGraphemes(s)
	for g.Next() {
		st.Characters++
		r, _ := utf8.DecodeRuneInString(g.Str())
		if !unicode.IsSpace(r) {
			st.CharactersNoSpaces++
		}
	}

	ws := words(s)
	st.Words = len(ws)

	counts := make(map[string]int)
	totalRunes := 0
	for _, w := range ws {
		n := utf8.RuneCountInString(w)
		totalRunes += n
		if n > utf8.RuneCountInString(st.LongestWord) {
			st.LongestWord = w
		}
		counts[strings.ToLower(w)]++
	}
	st.UniqueWords = len(counts)
	if st.Words > 0 {
		st.AverageWordLength = round(float64(totalRunes)/float64(st.Words), 2)
	}

	for _, part := range sentenceEndRe.Split(s, -1) {
		if hasWord(part) {
			st.Sentences++
		}
	}
	for _, part := range paragraphRe.Split(s, -1) {
		if strings.TrimSpace(part) != "" {
			st.Paragraphs++
		}
	}
	if s != "" {
		st.Lines = strings.Count(s, "\n") + 1
	}

	st.ReadingTimeSeconds = int(math.Ceil(float64(st.Words) / readingWPM * 60))
	st.SpeakingTimeSeconds = int(math.Ceil(float64(st.Words) / speakingWPM * 60))
	st.TopWords = topWords(counts, topWordsMax)
	return st
}

func topWords(counts map[string]int, n int) []WordCount {
	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func hasWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func graphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
