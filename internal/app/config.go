package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperifyio/newsdigest/internal/scrape"
	"github.com/hyperifyio/newsdigest/internal/summarize"
)

// Defaults shared by flags, file config and DefaultConfig.
const (
	defaultLimit          = 5
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36"
	defaultAcceptLanguage = "en-US,en;q=0.5"
	defaultFetchTimeout   = 10 * time.Second
	defaultOutputDir      = "data"
	defaultFeedbackPath   = "feedback/user_feedback.csv"
	defaultCacheDir       = ".newsdigest-cache"
	defaultServeAddr      = ":8080"

	// Bounds for interactively requested summary lengths.
	MinSummaryLength = 50
	MaxSummaryLength = 300
)

// Config holds runtime configuration for the application.
type Config struct {
	// Source
	ListingURL     string
	Limit          int
	UserAgent      string
	AcceptLanguage string
	FetchTimeout   time.Duration
	Timezone       string

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Summarization
	WindowWords  int
	OverlapWords int
	MinWords     int
	MinLength    int
	MaxLength    int

	// Output
	OutputDir    string
	FeedbackPath string
	ServeAddr    string

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	HTTPCacheBypass  bool

	Verbose bool
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		ListingURL:     scrape.DefaultListingURL,
		Limit:          defaultLimit,
		UserAgent:      defaultUserAgent,
		AcceptLanguage: defaultAcceptLanguage,
		FetchTimeout:   defaultFetchTimeout,
		Timezone:       scrape.DefaultLocation,
		WindowWords:    summarize.DefaultWindowWords,
		OverlapWords:   summarize.DefaultOverlapWords,
		MinWords:       summarize.DefaultMinWords,
		MinLength:      summarize.DefaultMinLength,
		MaxLength:      summarize.DefaultMaxLength,
		OutputDir:      defaultOutputDir,
		FeedbackPath:   defaultFeedbackPath,
		CacheDir:       defaultCacheDir,
		ServeAddr:      defaultServeAddr,
	}
}

// ValidateConfig rejects settings the pipeline cannot run with. A missing
// model is not an error: summarization then reports the model unavailable.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.ListingURL) == "" {
		return errors.New("config: listing url is required")
	}
	if cfg.Limit < 0 || cfg.FetchTimeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.WindowWords < 0 || cfg.OverlapWords < 0 || cfg.MinWords < 0 || cfg.MinLength < 0 || cfg.MaxLength < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.WindowWords > 0 && cfg.OverlapWords >= cfg.WindowWords {
		return fmt.Errorf("config: overlap (%d) must be smaller than window (%d)", cfg.OverlapWords, cfg.WindowWords)
	}
	if cfg.MinLength > 0 && cfg.MaxLength > 0 && cfg.MinLength > cfg.MaxLength {
		return fmt.Errorf("config: min length (%d) exceeds max length (%d)", cfg.MinLength, cfg.MaxLength)
	}
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("config: timezone: %w", err)
		}
	}
	return nil
}

// ClampSummaryLength keeps a requested max length within the interactive bounds.
func ClampSummaryLength(n int) int {
	if n < MinSummaryLength {
		return MinSummaryLength
	}
	if n > MaxSummaryLength {
		return MaxSummaryLength
	}
	return n
}
