package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/textstat"
)

// Defaults for window sizing and length bounds.
const (
	DefaultWindowWords  = 500
	DefaultOverlapWords = 150
	DefaultMinWords     = 50
	DefaultMinLength    = 50
	DefaultMaxLength    = 200
)

// Texts returned in place of a summary.
const (
	ModelUnavailableText = "Summarization model unavailable."
	ErrorText            = "Error summarizing text."
)

var (
	// ErrModelUnavailable means the model never initialized. It is permanent.
	ErrModelUnavailable = errors.New("summarization model unavailable")
	// ErrSummarization wraps a failure of one window call; it aborts only the current call.
	ErrSummarization = errors.New("summarization failed")
)

// Model summarizes a single window within the given length bounds.
type Model interface {
	SummarizeWindow(ctx context.Context, text string, minLength, maxLength int) (string, error)
}

// availability is implemented by models that can fail to initialize.
type availability interface {
	Available() bool
}

// Outcome is the terminal state of one Summarize call.
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeModelUnavailable
	OutcomeTooShort
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeModelUnavailable:
		return "model_unavailable"
	case OutcomeTooShort:
		return "too_short"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the output of one Summarize call. Stats is nil exactly when
// summarization was skipped or failed.
type Result struct {
	Text    string
	Stats   *Stats
	Outcome Outcome
	Windows int
	// Err carries the cause for logging when Outcome is ModelUnavailable or Failed.
	Err error
}

// Options bound each window summary. Zero values select the defaults.
type Options struct {
	MinLength int
	MaxLength int
	// Label identifies the text in logs, typically the article title.
	Label string
}

func (o Options) bounds() (int, int) {
	min, max := o.MinLength, o.MaxLength
	if min <= 0 {
		min = DefaultMinLength
	}
	if max <= 0 {
		max = DefaultMaxLength
	}
	if min > max {
		min = max
	}
	return min, max
}

// Summarizer splits long text into overlapping windows, summarizes each
// through Model and joins the results in window order.
type Summarizer struct {
	Model        Model
	WindowWords  int
	OverlapWords int
	// MinWords is the word count below which text is returned unchanged.
	MinWords int
	// Scorer rates the joined summary. Nil uses textstat.
	Scorer Scorer
}

func (s *Summarizer) available() bool {
	if s == nil || s.Model == nil {
		return false
	}
	if a, ok := s.Model.(availability); ok {
		return a.Available()
	}
	return true
}

func (s *Summarizer) windowWords() int {
	if s.WindowWords > 0 {
		return s.WindowWords
	}
	return DefaultWindowWords
}

// overlapWords treats zero as the default and a negative value as no overlap.
func (s *Summarizer) overlapWords() int {
	overlap := s.OverlapWords
	if overlap == 0 {
		overlap = DefaultOverlapWords
	}
	if overlap < 0 || overlap >= s.windowWords() {
		return 0
	}
	return overlap
}

func (s *Summarizer) minWords() int {
	if s.MinWords > 0 {
		return s.MinWords
	}
	return DefaultMinWords
}

func (s *Summarizer) scorer() Scorer {
	if s.Scorer != nil {
		return s.Scorer
	}
	return textstat.Scorer{}
}

// Summarize never returns an error: failures are reported through the
// returned Result. Any window failure discards the windows already done.
func (s *Summarizer) Summarize(ctx context.Context, text string, opts Options) Result {
	logger := log.With().Str("title", opts.Label).Logger()
	if !s.available() {
		logger.Error().Msg("summarization model not initialized")
		return Result{Text: ModelUnavailableText, Outcome: OutcomeModelUnavailable, Err: ErrModelUnavailable}
	}

	words := len(strings.Fields(text))
	if words < s.minWords() {
		logger.Warn().Int("words", words).Msg("text too short for summarization")
		return Result{Text: text, Outcome: OutcomeTooShort}
	}

	minLen, maxLen := opts.bounds()
	chunks := Chunk(text, s.windowWords(), s.overlapWords())
	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		out, err := s.Model.SummarizeWindow(ctx, chunk, minLen, maxLen)
		if err != nil {
			err = fmt.Errorf("%w: window %d of %d: %v", ErrSummarization, i+1, len(chunks), err)
			logger.Error().Err(err).Msg("error during summarization")
			return Result{Text: ErrorText, Outcome: OutcomeFailed, Windows: len(chunks), Err: err}
		}
		parts = append(parts, strings.TrimSpace(out))
	}

	summary := strings.Join(parts, " ")
	st := ComputeStats(text, summary, s.scorer())
	logger.Info().
		Int("windows", len(chunks)).
		Int("original_words", st.OriginalWords).
		Int("summary_words", st.SummaryWords).
		Float64("compression_ratio", st.CompressionRatio).
		Msg("summarization successful")
	return Result{Text: summary, Stats: &st, Outcome: OutcomeDone, Windows: len(chunks)}
}
