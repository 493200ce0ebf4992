// Package textstat computes Flesch readability scores for English prose.
package textstat

import (
	"math"
	"strings"
	"unicode"
)

// Counts are the raw tallies the scores derive from.
type Counts struct {
	Words     int
	Sentences int
	Syllables int
}

// Count tallies words, sentences and syllables in text. A non-empty text
// always has at least one sentence.
func Count(text string) Counts {
	var c Counts
	for _, tok := range strings.Fields(text) {
		word := trimWord(tok)
		if word == "" {
			continue
		}
		c.Words++
		c.Syllables += Syllables(word)
	}
	if c.Words == 0 {
		return c
	}
	c.Sentences = countSentences(text)
	if c.Sentences == 0 {
		c.Sentences = 1
	}
	return c
}

// FleschKincaidGrade returns the U.S. school grade level; higher is harder.
func FleschKincaidGrade(text string) float64 {
	c := Count(text)
	if c.Words == 0 {
		return 0
	}
	wps := float64(c.Words) / float64(c.Sentences)
	spw := float64(c.Syllables) / float64(c.Words)
	return round2(0.39*wps + 11.8*spw - 15.59)
}

// FleschReadingEase returns a score where higher values read more easily;
// ordinary prose lands between 0 and 100.
func FleschReadingEase(text string) float64 {
	c := Count(text)
	if c.Words == 0 {
		return 0
	}
	wps := float64(c.Words) / float64(c.Sentences)
	spw := float64(c.Syllables) / float64(c.Words)
	return round2(206.835 - 1.015*wps - 84.6*spw)
}

// Scorer adapts the package functions to the summarizer's scoring hook.
type Scorer struct{}

// Score returns the grade level and reading ease of text.
func (Scorer) Score(text string) (grade, ease float64) {
	return FleschKincaidGrade(text), FleschReadingEase(text)
}

// Syllables estimates the syllable count of a single word by counting vowel
// groups, discounting a silent trailing "e". Every word has at least one.
func Syllables(word string) int {
	w := strings.ToLower(word)
	n := 0
	prevVowel := false
	for _, r := range w {
		v := isVowel(r)
		if v && !prevVowel {
			n++
		}
		prevVowel = v
	}
	if strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") && n > 1 {
		n--
	}
	if (strings.HasSuffix(w, "es") || strings.HasSuffix(w, "ed")) && len(w) > 3 && n > 1 && !hasAnySuffix(w, voicedEndings) {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

// voicedEndings keep their final "-es"/"-ed" as a separate syllable.
var voicedEndings = []string{"ted", "ded", "ses", "zes", "ces", "xes", "ches", "shes", "ges"}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// countSentences counts words that end in terminal punctuation, ignoring
// trailing quotes and brackets. Trailing text without a terminator counts as
// one more sentence.
func countSentences(text string) int {
	n := 0
	open := false
	for _, tok := range strings.Fields(text) {
		if trimWord(tok) != "" {
			open = true
		}
		end := strings.TrimRight(tok, "\"')]”’")
		if open && end != "" && strings.ContainsAny(end[len(end)-1:], ".!?") {
			n++
			open = false
		}
	}
	if open {
		n++
	}
	return n
}

func trimWord(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func round2(f float64) float64 {
	return math.RoundToEven(f*100) / 100
}
