package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/article"
	"github.com/hyperifyio/newsdigest/internal/cache"
	"github.com/hyperifyio/newsdigest/internal/export"
	"github.com/hyperifyio/newsdigest/internal/extract"
	"github.com/hyperifyio/newsdigest/internal/feedback"
	"github.com/hyperifyio/newsdigest/internal/fetch"
	"github.com/hyperifyio/newsdigest/internal/llm"
	"github.com/hyperifyio/newsdigest/internal/scrape"
	"github.com/hyperifyio/newsdigest/internal/summarize"
)

// App wires the scraper, the summarizer and the feedback store. It is built
// once per process and passed to every command or request handler.
type App struct {
	cfg          Config
	scraper      *scrape.Scraper
	summarizer   *summarize.Summarizer
	model        *llm.Handle
	feedback     feedback.Store
	httpCache    *cache.HTTPCache
	summaryCache *cache.SummaryCache
}

// New validates cfg, applies cache invalidation and initializes the model.
// A model that cannot be initialized does not fail New; summaries then
// report the model unavailable.
func New(ctx context.Context, cfg Config) (*App, error) {
	return newApp(ctx, cfg, extract.NewRegistry())
}

func newApp(ctx context.Context, cfg Config, reg *extract.Registry) (*App, error) {
	cfg = withDefaults(cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	a := &App{cfg: cfg}
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
			if err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Dur("max_age", cfg.CacheMaxAge).Msg("purged stale cache entries")
			}
		}
		a.httpCache = &cache.HTTPCache{Dir: filepath.Join(cfg.CacheDir, "http"), StrictPerms: cfg.CacheStrictPerms}
		a.summaryCache = &cache.SummaryCache{Dir: filepath.Join(cfg.CacheDir, "summaries"), StrictPerms: cfg.CacheStrictPerms}
	}

	httpClient := newHTTPClient()
	a.scraper = &scrape.Scraper{
		Fetcher: &fetch.Client{
			HTTPClient:        httpClient,
			UserAgent:         cfg.UserAgent,
			AcceptLanguage:    cfg.AcceptLanguage,
			PerRequestTimeout: cfg.FetchTimeout,
			Cache:             a.httpCache,
			BypassCache:       cfg.HTTPCacheBypass,
		},
		Registry:   reg,
		Location:   loc,
		ListingURL: cfg.ListingURL,
	}

	a.model = llm.Open(ctx, llm.Options{
		BaseURL:    cfg.LLMBaseURL,
		APIKey:     cfg.LLMAPIKey,
		Model:      cfg.LLMModel,
		HTTPClient: httpClient,
		Cache:      a.summaryCache,
	})
	a.summarizer = &summarize.Summarizer{
		Model:        a.model,
		WindowWords:  cfg.WindowWords,
		OverlapWords: cfg.OverlapWords,
		MinWords:     cfg.MinWords,
	}

	store, err := feedback.Open(cfg.FeedbackPath)
	if err != nil {
		return nil, fmt.Errorf("open feedback store: %w", err)
	}
	a.feedback = store

	log.Debug().
		Str("listing", cfg.ListingURL).
		Str("timezone", cfg.Timezone).
		Bool("model", a.model.Available()).
		Bool("cache", a.httpCache != nil).
		Msg("app initialized")
	return a, nil
}

// withDefaults fills zero fields with DefaultConfig values. Cache and LLM
// settings stay as given: an empty cache dir disables caching.
func withDefaults(cfg Config) Config {
	d := DefaultConfig()
	if strings.TrimSpace(cfg.ListingURL) == "" {
		cfg.ListingURL = d.ListingURL
	}
	if cfg.Limit == 0 {
		cfg.Limit = d.Limit
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = d.UserAgent
	}
	if cfg.AcceptLanguage == "" {
		cfg.AcceptLanguage = d.AcceptLanguage
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = d.FetchTimeout
	}
	if cfg.Timezone == "" {
		cfg.Timezone = d.Timezone
	}
	if cfg.WindowWords == 0 {
		cfg.WindowWords = d.WindowWords
	}
	if cfg.OverlapWords == 0 && cfg.WindowWords > d.OverlapWords {
		cfg.OverlapWords = d.OverlapWords
	}
	if cfg.MinWords == 0 {
		cfg.MinWords = d.MinWords
	}
	if cfg.MinLength == 0 {
		cfg.MinLength = d.MinLength
	}
	if cfg.MaxLength == 0 {
		cfg.MaxLength = d.MaxLength
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = d.OutputDir
	}
	if cfg.FeedbackPath == "" {
		cfg.FeedbackPath = d.FeedbackPath
	}
	if cfg.ServeAddr == "" {
		cfg.ServeAddr = d.ServeAddr
	}
	return cfg
}

func (a *App) Close() {
	if a.feedback != nil {
		if err := a.feedback.Close(); err != nil {
			log.Warn().Err(err).Msg("close feedback store")
		}
	}
}

// Config returns the effective configuration.
func (a *App) Config() Config { return a.cfg }

// ModelAvailable reports whether summaries can be produced.
func (a *App) ModelAvailable() bool { return a.model.Available() }

// Latest fetches up to limit articles from the listing page. A non-positive
// limit uses the configured default.
func (a *App) Latest(ctx context.Context, limit int) []article.Record {
	if limit <= 0 {
		limit = a.cfg.Limit
	}
	return a.scraper.Latest(ctx, limit)
}

// Fetch extracts a single article. Failures yield the failed-fetch record.
func (a *App) Fetch(ctx context.Context, url string) article.Record {
	return a.scraper.FetchArticle(ctx, url)
}

// Summarize summarizes the rendered article body, so a failed or empty record
// comes back as its sentinel text. maxLength is clamped to the interactive
// bounds; zero uses the configured default.
func (a *App) Summarize(ctx context.Context, rec article.Record, maxLength int) summarize.Result {
	v := rec.View()
	return a.SummarizeText(ctx, v.Content, v.Title, maxLength)
}

// SummarizeText summarizes arbitrary text. label identifies it in logs.
func (a *App) SummarizeText(ctx context.Context, text, label string, maxLength int) summarize.Result {
	max := a.cfg.MaxLength
	if maxLength != 0 {
		max = ClampSummaryLength(maxLength)
	}
	return a.summarizer.Summarize(ctx, text, summarize.Options{
		MinLength: a.cfg.MinLength,
		MaxLength: max,
		Label:     label,
	})
}

// Export writes b in the given formats under the output directory.
func (a *App) Export(b export.Bundle, formats ...export.Format) ([]string, error) {
	paths, err := export.WriteFiles(a.cfg.OutputDir, b, formats...)
	if err != nil {
		return paths, fmt.Errorf("export %q: %w", b.Article.URL, err)
	}
	log.Info().Str("url", b.Article.URL).Strs("files", paths).Msg("article exported")
	return paths, nil
}

// ExportAll exports every bundle and writes a manifest next to the files.
// It stops at the first export error.
func (a *App) ExportAll(bundles []export.Bundle, formats ...export.Format) ([]string, error) {
	var all []string
	entries := make([]manifestEntry, 0, len(bundles))
	for i, b := range bundles {
		paths, err := a.Export(b, formats...)
		all = append(all, paths...)
		if err != nil {
			return all, err
		}
		entries = append(entries, newManifestEntry(i+1, b, paths))
	}
	meta := manifestMeta{
		Model:        a.model.Model(),
		LLMBaseURL:   a.cfg.LLMBaseURL,
		ArticleCount: len(bundles),
		HTTPCache:    a.httpCache != nil,
		SummaryCache: a.summaryCache != nil,
		Version:      BuildVersion,
		GeneratedAt:  time.Now().UTC(),
	}
	p, err := writeManifest(a.cfg.OutputDir, meta, entries)
	if err != nil {
		return all, err
	}
	return append(all, p), nil
}

// SubmitFeedback validates and stores e.
func (a *App) SubmitFeedback(ctx context.Context, e feedback.Entry) error {
	if err := a.feedback.Append(ctx, e); err != nil {
		return err
	}
	log.Info().Str("type", string(e.Type)).Msg("feedback recorded")
	return nil
}

// Feedback lists stored entries.
func (a *App) Feedback(ctx context.Context) ([]feedback.Entry, error) {
	return a.feedback.List(ctx)
}
