package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hyperifyio/newsdigest/internal/article"
	"github.com/hyperifyio/newsdigest/internal/feedback"
	"github.com/hyperifyio/newsdigest/internal/summarize"
)

type fakeService struct {
	mu        sync.Mutex
	available bool
	fetches   int
	maxLength int
	entries   []feedback.Entry
}

var storyRecord = article.Record{
	URL:     "https://techcrunch.com/story",
	Title:   "Story/Two",
	Authors: []string{"Ann Lee"},
	Content: "Body text of the story.",
}

func (f *fakeService) Latest(_ context.Context, limit int) []article.Record {
	return []article.Record{storyRecord, article.Failed("https://techcrunch.com/gone")}
}

func (f *fakeService) Fetch(_ context.Context, url string) article.Record {
	f.mu.Lock()
	f.fetches++
	f.mu.Unlock()
	if url == storyRecord.URL {
		return storyRecord
	}
	return article.Failed(url)
}

func (f *fakeService) Summarize(_ context.Context, rec article.Record, maxLength int) summarize.Result {
	f.mu.Lock()
	f.maxLength = maxLength
	f.mu.Unlock()
	if !f.available {
		return summarize.Result{Text: summarize.ModelUnavailableText, Outcome: summarize.OutcomeModelUnavailable}
	}
	st := summarize.Stats{OriginalWords: 5, SummaryWords: 2, CompressionRatio: 0.4}
	return summarize.Result{Text: "Short summary.", Stats: &st, Outcome: summarize.OutcomeDone, Windows: 1}
}

func (f *fakeService) SummarizeText(_ context.Context, text, _ string, _ int) summarize.Result {
	return summarize.Result{Text: text, Outcome: summarize.OutcomeTooShort}
}

func (f *fakeService) SubmitFeedback(_ context.Context, e feedback.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeService) ModelAvailable() bool { return f.available }

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return m
}

func TestHealth(t *testing.T) {
	srv := NewServer(NewHandler(&fakeService{available: true}, "1.2.3"), "secret")
	w := do(t, srv, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	m := decode(t, w)
	if m["version"] != "1.2.3" || m["model_available"] != true {
		t.Fatalf("body %v", m)
	}
}

func TestLatest_ViewsWithSentinels(t *testing.T) {
	srv := NewServer(NewHandler(&fakeService{}, "dev"), "")
	w := do(t, srv, http.MethodGet, "/articles/latest?limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var body struct {
		Articles []article.View `json:"articles"`
		Total    int            `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 2 || body.Articles[0].Title != "Story/Two" {
		t.Fatalf("body %+v", body)
	}
	if body.Articles[1].Content != article.FetchFailedContent || body.Articles[1].Published != article.Unknown {
		t.Fatalf("failed view %+v", body.Articles[1])
	}
	if w := do(t, srv, http.MethodGet, "/articles/latest?limit=0", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("limit=0 status %d", w.Code)
	}
}

func TestFetchArticle(t *testing.T) {
	srv := NewServer(NewHandler(&fakeService{}, "dev"), "")
	if w := do(t, srv, http.MethodPost, "/articles/fetch", `{"url":"ftp://x"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad url status %d", w.Code)
	}
	w := do(t, srv, http.MethodPost, "/articles/fetch", `{"url":"https://techcrunch.com/missing"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("failed fetch status %d", w.Code)
	}
	if m := decode(t, w); m["title"] != article.Unknown {
		t.Fatalf("body %v", m)
	}
}

func TestSummarizeThenExport(t *testing.T) {
	svc := &fakeService{available: true}
	srv := NewServer(NewHandler(svc, "dev"), "")

	w := do(t, srv, http.MethodPost, "/summaries", `{"url":"https://techcrunch.com/story","max_length":250}`)
	if w.Code != http.StatusOK {
		t.Fatalf("summary status %d: %s", w.Code, w.Body.String())
	}
	m := decode(t, w)
	if m["summary"] != "Short summary." || m["outcome"] != "done" {
		t.Fatalf("body %v", m)
	}
	if svc.maxLength != 250 || svc.fetches != 1 {
		t.Fatalf("service calls: max=%d fetches=%d", svc.maxLength, svc.fetches)
	}

	w = do(t, srv, http.MethodPost, "/exports", `{"url":"https://techcrunch.com/story","format":"txt"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("export status %d: %s", w.Code, w.Body.String())
	}
	want := "Title: Story/Two\nAuthor(s): Ann Lee\nPublished: Unknown\n\nSummary:\nShort summary."
	if w.Body.String() != want {
		t.Fatalf("export body %q", w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `"Story-Two.txt"`) {
		t.Fatalf("content disposition %q", cd)
	}

	w = do(t, srv, http.MethodPost, "/exports", `{"url":"https://techcrunch.com/story","format":"pdf"}`)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("pdf export: %d %q", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestSummarize_ModelUnavailable(t *testing.T) {
	srv := NewServer(NewHandler(&fakeService{}, "dev"), "")
	w := do(t, srv, http.MethodPost, "/summaries", `{"url":"https://techcrunch.com/story"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", w.Code)
	}
	if m := decode(t, w); m["summary"] != summarize.ModelUnavailableText {
		t.Fatalf("body %v", m)
	}
}

func TestSummarize_RawContentAndErrors(t *testing.T) {
	srv := NewServer(NewHandler(&fakeService{available: true}, "dev"), "")
	w := do(t, srv, http.MethodPost, "/summaries", `{"content":"just a few words"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if m := decode(t, w); m["summary"] != "just a few words" || m["outcome"] != "too_short" {
		t.Fatalf("body %v", m)
	}
	if w := do(t, srv, http.MethodPost, "/summaries", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("empty request status %d", w.Code)
	}
	if w := do(t, srv, http.MethodPost, "/summaries", `{"url":"https://techcrunch.com/gone"}`); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("no content status %d", w.Code)
	}
}

func TestExport_RequiresSessionArticle(t *testing.T) {
	srv := NewServer(NewHandler(&fakeService{}, "dev"), "")
	if w := do(t, srv, http.MethodPost, "/exports", `{"url":"https://techcrunch.com/story"}`); w.Code != http.StatusNotFound {
		t.Fatalf("status %d", w.Code)
	}
	do(t, srv, http.MethodGet, "/articles/latest", "")
	w := do(t, srv, http.MethodPost, "/exports", `{"url":"https://techcrunch.com/story"}`)
	if w.Code != http.StatusOK || !strings.HasSuffix(w.Body.String(), "\n\nBody text of the story.") {
		t.Fatalf("export without summary: %d %q", w.Code, w.Body.String())
	}
	if w := do(t, srv, http.MethodPost, "/exports", `{"url":"https://techcrunch.com/story","format":"docx"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad format status %d", w.Code)
	}
}

func TestSubmitFeedback(t *testing.T) {
	svc := &fakeService{}
	srv := NewServer(NewHandler(svc, "dev"), "")
	if w := do(t, srv, http.MethodPost, "/feedback", `{"message":"x"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("short message status %d", w.Code)
	}
	w := do(t, srv, http.MethodPost, "/feedback", `{"type":"summary_feedback","message":"Nice","summary":"S"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if len(svc.entries) != 1 || svc.entries[0].Type != feedback.TypeSummary {
		t.Fatalf("entries %+v", svc.entries)
	}
}

func TestAuth(t *testing.T) {
	srv := NewServer(NewHandler(&fakeService{}, "dev"), "secret")
	if w := do(t, srv, http.MethodGet, "/articles/latest", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing key status %d", w.Code)
	}
	if w := do(t, srv, http.MethodGet, "/articles/latest", "", "X-API-Key", "wrong"); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key status %d", w.Code)
	}
	if w := do(t, srv, http.MethodGet, "/articles/latest", "", "Authorization", "Bearer secret"); w.Code != http.StatusOK {
		t.Fatalf("bearer status %d", w.Code)
	}
}
