package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/article"
	"github.com/hyperifyio/newsdigest/internal/export"
	"github.com/hyperifyio/newsdigest/internal/feedback"
	"github.com/hyperifyio/newsdigest/internal/summarize"
)

// maxLatest caps the limit query parameter.
const maxLatest = 20

// Service is the application surface used by the handlers.
type Service interface {
	Latest(ctx context.Context, limit int) []article.Record
	Fetch(ctx context.Context, url string) article.Record
	Summarize(ctx context.Context, rec article.Record, maxLength int) summarize.Result
	SummarizeText(ctx context.Context, text, label string, maxLength int) summarize.Result
	SubmitFeedback(ctx context.Context, e feedback.Entry) error
	ModelAvailable() bool
}

// Handler keeps the review session: articles seen and summaries produced,
// keyed by URL. Requests are served concurrently, so the session is locked.
type Handler struct {
	svc     Service
	version string

	mu        sync.Mutex
	articles  map[string]article.Record
	summaries map[string]summarize.Result
}

func NewHandler(svc Service, version string) *Handler {
	return &Handler{
		svc:       svc,
		version:   version,
		articles:  map[string]article.Record{},
		summaries: map[string]summarize.Result{},
	}
}

func (h *Handler) remember(recs ...article.Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range recs {
		h.articles[r.URL] = r
		delete(h.summaries, r.URL)
	}
}

func (h *Handler) lookup(u string) (article.Record, *summarize.Result, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rec, ok := h.articles[u]
	if !ok {
		return article.Record{}, nil, false
	}
	if s, ok := h.summaries[u]; ok {
		return rec, &s, true
	}
	return rec, nil, true
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"version":         h.version,
		"model_available": h.svc.ModelAvailable(),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) Latest(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxLatest {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be between 1 and %d", maxLatest)})
			return
		}
		limit = n
	}
	recs := h.svc.Latest(c.Request.Context(), limit)
	h.remember(recs...)
	views := make([]article.View, 0, len(recs))
	for _, r := range recs {
		views = append(views, r.View())
	}
	c.JSON(http.StatusOK, gin.H{"articles": views, "total": len(views)})
}

type fetchRequest struct {
	URL string `json:"url"`
}

func (h *Handler) FetchArticle(c *gin.Context) {
	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !validURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must be an absolute http(s) URL"})
		return
	}
	rec := h.svc.Fetch(c.Request.Context(), req.URL)
	h.remember(rec)
	status := http.StatusOK
	if rec.FetchFailed {
		status = http.StatusBadGateway
	}
	c.JSON(status, rec.View())
}

type summaryRequest struct {
	URL       string `json:"url"`
	Content   string `json:"content"`
	Title     string `json:"title"`
	MaxLength int    `json:"max_length"`
}

type summaryResponse struct {
	URL     string           `json:"url,omitempty"`
	Summary string           `json:"summary"`
	Outcome string           `json:"outcome"`
	Windows int              `json:"windows"`
	Stats   *summarize.Stats `json:"stats,omitempty"`
}

// Summarize accepts either the URL of an article in the session (fetched on
// demand when missing) or raw content.
func (h *Handler) Summarize(c *gin.Context) {
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ctx := c.Request.Context()
	var res summarize.Result
	switch {
	case req.URL != "":
		if !validURL(req.URL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url must be an absolute http(s) URL"})
			return
		}
		rec, _, ok := h.lookup(req.URL)
		if !ok {
			rec = h.svc.Fetch(ctx, req.URL)
			h.remember(rec)
		}
		if !rec.HasContent() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "article has no content to summarize", "article": rec.View()})
			return
		}
		res = h.svc.Summarize(ctx, rec, req.MaxLength)
		if res.Outcome == summarize.OutcomeDone {
			h.mu.Lock()
			h.summaries[req.URL] = res
			h.mu.Unlock()
		}
	case strings.TrimSpace(req.Content) != "":
		res = h.svc.SummarizeText(ctx, req.Content, req.Title, req.MaxLength)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "url or content is required"})
		return
	}

	c.JSON(statusFor(res.Outcome), summaryResponse{
		URL:     req.URL,
		Summary: res.Text,
		Outcome: res.Outcome.String(),
		Windows: res.Windows,
		Stats:   res.Stats,
	})
}

func statusFor(o summarize.Outcome) int {
	switch o {
	case summarize.OutcomeModelUnavailable:
		return http.StatusServiceUnavailable
	case summarize.OutcomeFailed:
		return http.StatusBadGateway
	}
	return http.StatusOK
}

type exportRequest struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

// Export renders a session article, with its summary when one was made.
func (h *Handler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	format := export.FormatText
	if req.Format != "" {
		fs, err := export.ParseFormats(req.Format)
		if err != nil || len(fs) != 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of txt, pdf, json"})
			return
		}
		format = fs[0]
	}
	rec, sum, ok := h.lookup(req.URL)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not in session; fetch it first"})
		return
	}
	b := export.Bundle{Article: rec, Summary: sum}
	data, err := export.Render(b, format)
	if err != nil {
		log.Error().Err(err).Str("url", req.URL).Msg("export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(b, format)))
	c.Data(http.StatusOK, export.ContentType(format), data)
}

func (h *Handler) SubmitFeedback(c *gin.Context) {
	var e feedback.Entry
	if err := c.ShouldBindJSON(&e); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if e.Type == "" {
		e.Type = feedback.TypeOverall
	}
	e.CreatedAt = time.Time{}
	if err := h.svc.SubmitFeedback(c.Request.Context(), e); err != nil {
		if errors.Is(err, feedback.ErrEmptyInput) || errors.Is(err, feedback.ErrInputTooShort) || errors.Is(err, feedback.ErrUnknownType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("feedback store failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store feedback"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "recorded"})
}

func validURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
