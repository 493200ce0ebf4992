package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperifyio/newsdigest/internal/app"
)

// bindConfigFlags registers the flags shared by every command. Defaults are
// the current values of cfg.
func bindConfigFlags(fs *flag.FlagSet, cfg *app.Config, configPath, envFiles *string) {
	fs.StringVar(configPath, "config", "", "Path to a YAML or JSON config file")
	fs.StringVar(envFiles, "env", ".env", "Comma-separated dotenv files to load")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")

	fs.StringVar(&cfg.ListingURL, "listing", cfg.ListingURL, "Listing page with the latest articles")
	fs.StringVar(&cfg.UserAgent, "ua", cfg.UserAgent, "User-Agent for page requests")
	fs.DurationVar(&cfg.FetchTimeout, "timeout", cfg.FetchTimeout, "Timeout per page request")
	fs.StringVar(&cfg.Timezone, "tz", cfg.Timezone, "IANA timezone for publication times")

	fs.StringVar(&cfg.LLMBaseURL, "llm.base", cfg.LLMBaseURL, "OpenAI-compatible base URL")
	fs.StringVar(&cfg.LLMModel, "llm.model", cfg.LLMModel, "Model name")
	fs.StringVar(&cfg.LLMAPIKey, "llm.key", cfg.LLMAPIKey, "API key for the model server")

	fs.IntVar(&cfg.WindowWords, "window", cfg.WindowWords, "Words per summarization window")
	fs.IntVar(&cfg.OverlapWords, "overlap", cfg.OverlapWords, "Words shared by consecutive windows")
	fs.IntVar(&cfg.MinWords, "minWords", cfg.MinWords, "Texts with fewer words are not summarized")
	fs.IntVar(&cfg.MinLength, "min", cfg.MinLength, "Minimum summary length in words per window")

	fs.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "Directory for exported files")
	fs.StringVar(&cfg.FeedbackPath, "feedback", cfg.FeedbackPath, "Feedback store (.csv, or .db for SQLite)")
	fs.StringVar(&cfg.ServeAddr, "listen", cfg.ServeAddr, "Address for the serve command")

	fs.StringVar(&cfg.CacheDir, "cache.dir", cfg.CacheDir, "Cache directory path (empty disables caching)")
	fs.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", cfg.CacheMaxAge, "Purge cache entries older than this at startup; 0 disables")
	fs.BoolVar(&cfg.CacheClear, "cache.clear", cfg.CacheClear, "Clear the cache directory at startup")
	fs.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", cfg.CacheStrictPerms, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&cfg.HTTPCacheBypass, "cache.bypass", cfg.HTTPCacheBypass, "Skip conditional requests but still refresh the page cache")
}

// parseConfig resolves configuration for a command: defaults, then the
// config file, then environment, then flags given on the command line.
// extra registers command specific flags.
func parseConfig(name string, args []string, extra func(fs *flag.FlagSet)) (app.Config, *flag.FlagSet, error) {
	var configPath, envFiles string
	build := func(cfg *app.Config, out io.Writer) *flag.FlagSet {
		fs := flag.NewFlagSet(name, flag.ContinueOnError)
		fs.SetOutput(out)
		bindConfigFlags(fs, cfg, &configPath, &envFiles)
		if extra != nil {
			extra(fs)
		}
		return fs
	}

	probe := app.DefaultConfig()
	if err := build(&probe, os.Stderr).Parse(args); err != nil {
		if err == flag.ErrHelp {
			return app.Config{}, nil, err
		}
		return app.Config{}, nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := app.LoadEnvFiles(splitList(envFiles)...); err != nil {
		return app.Config{}, nil, fmt.Errorf("load env: %w", err)
	}

	cfg := app.DefaultConfig()
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, nil, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	fs := build(&cfg, io.Discard)
	if err := fs.Parse(args); err != nil {
		return app.Config{}, nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	setupLogging(cfg.Verbose)
	return cfg, fs, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
