package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hyperifyio/newsdigest/internal/cache"
)

type stubServer struct {
	srv       *httptest.Server
	chatCalls atomic.Int32
	lastReq   map[string]any
}

func newStubServer(t *testing.T, modelsStatus int, reply string) *stubServer {
	t.Helper()
	s := &stubServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		if modelsStatus != http.StatusOK {
			http.Error(w, "down", modelsStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": "test-model", "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		s.chatCalls.Add(1)
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.lastReq = req
		if reply == "" {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	})
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func TestOpen_NoModelIsUnavailable(t *testing.T) {
	h := Open(context.Background(), Options{BaseURL: "http://127.0.0.1:1/v1"})
	if h.Available() {
		t.Fatalf("expected unavailable handle")
	}
	if _, err := h.SummarizeWindow(context.Background(), "text", 10, 20); !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestOpen_PreflightFailureIsPermanent(t *testing.T) {
	s := newStubServer(t, http.StatusServiceUnavailable, "ok")
	h := Open(context.Background(), Options{BaseURL: s.srv.URL + "/v1", Model: "test-model"})
	if h.Available() {
		t.Fatalf("expected unavailable handle")
	}
	if !errors.Is(h.Err(), ErrModelUnavailable) {
		t.Fatalf("err: %v", h.Err())
	}
	for i := 0; i < 2; i++ {
		if _, err := h.SummarizeWindow(context.Background(), "text", 10, 20); !errors.Is(err, ErrModelUnavailable) {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if n := s.chatCalls.Load(); n != 0 {
		t.Fatalf("unavailable handle must not call the model, got %d calls", n)
	}
}

func TestSummarizeWindow_RequestShape(t *testing.T) {
	s := newStubServer(t, http.StatusOK, "  A short summary.  ")
	h := Open(context.Background(), Options{BaseURL: s.srv.URL + "/v1", Model: "test-model"})
	if !h.Available() {
		t.Fatalf("expected available handle: %v", h.Err())
	}
	out, err := h.SummarizeWindow(context.Background(), "the window text", 50, 200)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if out != "A short summary." {
		t.Fatalf("got %q", out)
	}
	if got := s.lastReq["model"]; got != "test-model" {
		t.Fatalf("model: %v", got)
	}
	if got, _ := s.lastReq["max_tokens"].(float64); got != 400 {
		t.Fatalf("max_tokens: %v", s.lastReq["max_tokens"])
	}
	if got, ok := s.lastReq["temperature"].(float64); !ok || got != 0.1 {
		t.Fatalf("temperature: %v", s.lastReq["temperature"])
	}
	msgs, _ := s.lastReq["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages: %v", s.lastReq["messages"])
	}
	user, _ := msgs[1].(map[string]any)["content"].(string)
	if !strings.Contains(user, "50 to 200 words") || !strings.HasSuffix(user, "the window text") {
		t.Fatalf("user prompt: %q", user)
	}
}

func TestSummarizeWindow_ServerError(t *testing.T) {
	s := newStubServer(t, http.StatusOK, "")
	h := Open(context.Background(), Options{BaseURL: s.srv.URL + "/v1", Model: "test-model"})
	if _, err := h.SummarizeWindow(context.Background(), "text", 10, 20); err == nil {
		t.Fatalf("expected error")
	}
	if !h.Available() {
		t.Fatalf("a failed call must not disable the handle")
	}
}

func TestSummarizeWindow_UsesCache(t *testing.T) {
	s := newStubServer(t, http.StatusOK, "cached summary")
	c := &cache.SummaryCache{Dir: t.TempDir()}
	h := Open(context.Background(), Options{BaseURL: s.srv.URL + "/v1", Model: "test-model", Cache: c})
	for i := 0; i < 2; i++ {
		out, err := h.SummarizeWindow(context.Background(), "same window", 50, 200)
		if err != nil || out != "cached summary" {
			t.Fatalf("call %d: %q %v", i, out, err)
		}
	}
	if n := s.chatCalls.Load(); n != 1 {
		t.Fatalf("expected one model call, got %d", n)
	}
	if _, err := h.SummarizeWindow(context.Background(), "same window", 50, 150); err != nil {
		t.Fatalf("different bounds: %v", err)
	}
	if n := s.chatCalls.Load(); n != 2 {
		t.Fatalf("different bounds must miss the cache, got %d calls", n)
	}
}
