package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

type call struct {
	text     string
	min, max int
}

type fakeModel struct {
	calls  []call
	failAt int
	down   bool
}

func (m *fakeModel) Available() bool { return !m.down }

func (m *fakeModel) SummarizeWindow(_ context.Context, text string, min, max int) (string, error) {
	m.calls = append(m.calls, call{text: text, min: min, max: max})
	if m.failAt > 0 && len(m.calls) == m.failAt {
		return "", errors.New("boom")
	}
	return strings.Fields(text)[0] + " done. ", nil
}

type fixedScorer struct{ seen string }

func (s *fixedScorer) Score(text string) (float64, float64) {
	s.seen = text
	return 7.5, 61.25
}

func TestSummarize_TwoWindows(t *testing.T) {
	m := &fakeModel{}
	sc := &fixedScorer{}
	s := &Summarizer{Model: m, Scorer: sc}
	text := words(700)
	res := s.Summarize(context.Background(), text, Options{})
	if res.Outcome != OutcomeDone || res.Err != nil {
		t.Fatalf("outcome %v err %v", res.Outcome, res.Err)
	}
	if len(m.calls) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(m.calls))
	}
	if m.calls[0].min != DefaultMinLength || m.calls[0].max != DefaultMaxLength {
		t.Fatalf("bounds: %+v", m.calls[0])
	}
	if res.Text != "w0 done. w350 done." {
		t.Fatalf("summary %q", res.Text)
	}
	if sc.seen != res.Text {
		t.Fatalf("scorer saw %q", sc.seen)
	}
	st := res.Stats
	if st == nil {
		t.Fatalf("expected stats")
	}
	if st.OriginalWords != 700 || st.SummaryWords != 4 {
		t.Fatalf("word counts: %+v", st)
	}
	if st.OriginalChars != utf8.RuneCountInString(text) || st.SummaryChars != len(res.Text) {
		t.Fatalf("char counts: %+v", st)
	}
	if st.CompressionRatio != 0.01 {
		t.Fatalf("ratio: %v", st.CompressionRatio)
	}
	if st.ReadabilityGrade != 7.5 || st.ReadingEase != 61.25 {
		t.Fatalf("readability: %+v", st)
	}
}

func TestSummarize_SingleWindow(t *testing.T) {
	m := &fakeModel{}
	res := (&Summarizer{Model: m}).Summarize(context.Background(), words(500), Options{MinLength: 30, MaxLength: 100})
	if len(m.calls) != 1 || res.Windows != 1 {
		t.Fatalf("expected one window, got %d calls", len(m.calls))
	}
	if m.calls[0].min != 30 || m.calls[0].max != 100 {
		t.Fatalf("bounds not forwarded: %+v", m.calls[0])
	}
}

func TestSummarize_TooShort(t *testing.T) {
	m := &fakeModel{}
	s := &Summarizer{Model: m}
	text := words(49)
	res := s.Summarize(context.Background(), text, Options{})
	if res.Outcome != OutcomeTooShort || res.Text != text || res.Stats != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(m.calls) != 0 {
		t.Fatalf("model should not be called")
	}
	if res := s.Summarize(context.Background(), words(50), Options{}); res.Outcome != OutcomeDone {
		t.Fatalf("50 words should be summarized, got %v", res.Outcome)
	}
}

func TestSummarize_EmptyText(t *testing.T) {
	res := (&Summarizer{Model: &fakeModel{}}).Summarize(context.Background(), "", Options{})
	if res.Outcome != OutcomeTooShort || res.Text != "" || res.Stats != nil {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSummarize_ModelUnavailable(t *testing.T) {
	for name, s := range map[string]*Summarizer{
		"nil model": {},
		"down":      {Model: &fakeModel{down: true}},
	} {
		res := s.Summarize(context.Background(), words(600), Options{})
		if res.Outcome != OutcomeModelUnavailable || res.Text != ModelUnavailableText || res.Stats != nil {
			t.Fatalf("%s: unexpected result %+v", name, res)
		}
		if !errors.Is(res.Err, ErrModelUnavailable) {
			t.Fatalf("%s: err %v", name, res.Err)
		}
	}
}

func TestSummarize_FailureDiscardsPartialResults(t *testing.T) {
	m := &fakeModel{failAt: 2}
	res := (&Summarizer{Model: m}).Summarize(context.Background(), words(1000), Options{})
	if res.Outcome != OutcomeFailed || res.Text != ErrorText || res.Stats != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if !errors.Is(res.Err, ErrSummarization) {
		t.Fatalf("err %v", res.Err)
	}
	if len(m.calls) != 2 {
		t.Fatalf("expected processing to stop after window 2, got %d calls", len(m.calls))
	}
}

func TestSummarize_MinAboveMaxIsClamped(t *testing.T) {
	m := &fakeModel{}
	(&Summarizer{Model: m}).Summarize(context.Background(), words(60), Options{MinLength: 250, MaxLength: 100})
	if m.calls[0].min != 100 || m.calls[0].max != 100 {
		t.Fatalf("bounds: %+v", m.calls[0])
	}
}

func TestCompressionRatio(t *testing.T) {
	if got := CompressionRatio(10, 0); got != 0 {
		t.Fatalf("zero original: %v", got)
	}
	if got := CompressionRatio(1, 3); got != 0.33 {
		t.Fatalf("1/3: %v", got)
	}
	if got := CompressionRatio(150, 600); got != 0.25 {
		t.Fatalf("150/600: %v", got)
	}
}

func TestCompressionRatio_HalvesRoundToEven(t *testing.T) {
	if got := CompressionRatio(1, 8); got != 0.12 {
		t.Fatalf("1/8: %v", got)
	}
	if got := CompressionRatio(3, 8); got != 0.38 {
		t.Fatalf("3/8: %v", got)
	}
}

func TestComputeStats_CountsRunes(t *testing.T) {
	st := ComputeStats("café au lait", "café", nil)
	if st.OriginalChars != 12 || st.SummaryChars != 4 {
		t.Fatalf("rune counts: %+v", st)
	}
	if st.CompressionRatio != 0.33 {
		t.Fatalf("ratio: %v", st.CompressionRatio)
	}
}
