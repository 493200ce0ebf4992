package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/newsdigest/internal/cache"
)

var (
	// ErrModelUnavailable is returned by every call on a handle whose
	// initialization failed. The handle never recovers.
	ErrModelUnavailable = errors.New("summarization model unavailable")
	// ErrEmptySummary means the model answered without usable text.
	ErrEmptySummary = errors.New("model returned an empty summary")
)

const (
	defaultPreflightTimeout = 5 * time.Second
	// Output budget in tokens per requested word.
	tokensPerWord = 2
	// Low but non-zero: go-openai omits a zero temperature, which would leave
	// the server default in effect.
	temperature = 0.1
)

const systemPrompt = "You summarize passages of news articles. Reply with the summary text only, in plain prose, without a preamble."

// Options configure Open.
type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	// Client overrides the OpenAI provider built from BaseURL and APIKey.
	Client Client
	Cache  *cache.SummaryCache
	// PreflightTimeout bounds the model listing done by Open.
	PreflightTimeout time.Duration
}

// Handle is the process-wide summarization model. It is created once and
// either usable for the rest of the process or permanently unavailable.
type Handle struct {
	client Client
	model  string
	cache  *cache.SummaryCache
	err    error
}

// Open initializes the model. It never fails: a handle that could not be
// initialized reports Available() == false and the cause through Err.
func Open(ctx context.Context, opts Options) *Handle {
	h := &Handle{model: strings.TrimSpace(opts.Model), cache: opts.Cache}
	if h.model == "" {
		return h.fail(errors.New("no model configured"))
	}
	h.client = opts.Client
	if h.client == nil {
		h.client = NewOpenAIProvider(opts.BaseURL, opts.APIKey, opts.HTTPClient)
	}

	lister, ok := h.client.(ModelLister)
	if !ok {
		log.Info().Str("model", h.model).Msg("summarization model ready")
		return h
	}
	timeout := opts.PreflightTimeout
	if timeout <= 0 {
		timeout = defaultPreflightTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	models, err := lister.ListModels(pctx)
	if err != nil {
		return h.fail(fmt.Errorf("list models: %w", err))
	}
	if len(models.Models) > 0 && !hasModel(models, h.model) {
		log.Warn().Str("model", h.model).Int("count", len(models.Models)).Msg("configured model not listed by endpoint; continuing")
	} else {
		log.Info().Str("model", h.model).Int("count", len(models.Models)).Msg("summarization model ready")
	}
	return h
}

func (h *Handle) fail(err error) *Handle {
	h.err = fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	log.Error().Err(err).Str("model", h.model).Msg("failed to initialize summarization model")
	return h
}

func hasModel(list openai.ModelsList, id string) bool {
	for _, m := range list.Models {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Available reports whether the model initialized.
func (h *Handle) Available() bool {
	return h != nil && h.err == nil && h.client != nil
}

// Err returns the initialization error, if any.
func (h *Handle) Err() error {
	if h == nil {
		return ErrModelUnavailable
	}
	return h.err
}

// Model returns the configured model name.
func (h *Handle) Model() string {
	if h == nil {
		return ""
	}
	return h.model
}

// SummarizeWindow asks the model for a summary of text between minLength and
// maxLength words. Replies are cached by model, bounds and text; with low
// temperature sampling a cache hit returns the first reply seen.
func (h *Handle) SummarizeWindow(ctx context.Context, text string, minLength, maxLength int) (string, error) {
	if !h.Available() {
		return "", ErrModelUnavailable
	}
	key := cache.SummaryKey(h.model, minLength, maxLength, text)
	if out, ok := h.cache.Get(ctx, key); ok {
		log.Debug().Str("key", key[:12]).Msg("summary cache hit")
		return out, nil
	}

	req := openai.ChatCompletionRequest{
		Model: h.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(text, minLength, maxLength)},
		},
		Temperature: temperature,
		MaxTokens:   maxLength * tokensPerWord,
		N:           1,
	}
	resp, err := h.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptySummary
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptySummary
	}
	if h.cache != nil {
		if err := h.cache.Put(ctx, key, h.model, out); err != nil {
			log.Warn().Err(err).Msg("summary cache write failed")
		}
	}
	return out, nil
}

func userPrompt(text string, minLength, maxLength int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Summarize the following text in %d to %d words.", minLength, maxLength)
	sb.WriteString(" The text may begin or end mid-sentence.\n\n")
	sb.WriteString(text)
	return sb.String()
}
