package summarize

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Stats compares a summary with its source text.
type Stats struct {
	OriginalWords    int     `json:"original_words"`
	OriginalChars    int     `json:"original_chars"`
	SummaryWords     int     `json:"summary_words"`
	SummaryChars     int     `json:"summary_chars"`
	CompressionRatio float64 `json:"compression_ratio"`
	// ReadabilityGrade is the Flesch-Kincaid grade level of the summary.
	ReadabilityGrade float64 `json:"readability_grade"`
	// ReadingEase is the Flesch reading ease of the summary.
	ReadingEase float64 `json:"reading_ease"`
}

// Scorer rates the readability of a text.
type Scorer interface {
	Score(text string) (grade, ease float64)
}

// ComputeStats counts words by whitespace splitting and characters as
// runes. Readability is scored on the summary only.
func ComputeStats(original, summary string, scorer Scorer) Stats {
	st := Stats{
		OriginalWords: len(strings.Fields(original)),
		OriginalChars: utf8.RuneCountInString(original),
		SummaryWords:  len(strings.Fields(summary)),
		SummaryChars:  utf8.RuneCountInString(summary),
	}
	st.CompressionRatio = CompressionRatio(st.SummaryWords, st.OriginalWords)
	if scorer != nil {
		st.ReadabilityGrade, st.ReadingEase = scorer.Score(summary)
	}
	return st
}

// CompressionRatio returns summaryWords/originalWords rounded to two
// decimals, halves to even, or 0 when the original has no words.
func CompressionRatio(summaryWords, originalWords int) float64 {
	if originalWords == 0 {
		return 0
	}
	return math.RoundToEven(float64(summaryWords)/float64(originalWords)*100) / 100
}
