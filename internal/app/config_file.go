package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema. Sections map onto
// flag prefixes.
type FileConfig struct {
	Source struct {
		ListingURL     string        `yaml:"listingURL" json:"listingURL"`
		Limit          int           `yaml:"limit" json:"limit"`
		UserAgent      string        `yaml:"userAgent" json:"userAgent"`
		AcceptLanguage string        `yaml:"acceptLanguage" json:"acceptLanguage"`
		Timeout        time.Duration `yaml:"timeout" json:"timeout"`
		Timezone       string        `yaml:"timezone" json:"timezone"`
	} `yaml:"source" json:"source"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Summary struct {
		WindowWords  int `yaml:"windowWords" json:"windowWords"`
		OverlapWords int `yaml:"overlapWords" json:"overlapWords"`
		MinWords     int `yaml:"minWords" json:"minWords"`
		MinLength    int `yaml:"minLength" json:"minLength"`
		MaxLength    int `yaml:"maxLength" json:"maxLength"`
	} `yaml:"summary" json:"summary"`

	Output   string `yaml:"output" json:"output"`
	Feedback string `yaml:"feedback" json:"feedback"`
	Listen   string `yaml:"listen" json:"listen"`
	Verbose  bool   `yaml:"verbose" json:"verbose"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc onto fields of cfg that are unset
// or still at their default, so explicit flags win over the file.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	d := DefaultConfig()
	str := func(dst *string, def, v string) {
		if (*dst == "" || *dst == def) && v != "" {
			*dst = v
		}
	}
	num := func(dst *int, def, v int) {
		if (*dst == 0 || *dst == def) && v > 0 {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, def, v time.Duration) {
		if (*dst == 0 || *dst == def) && v > 0 {
			*dst = v
		}
	}
	flag := func(dst *bool, v bool) {
		if !*dst && v {
			*dst = true
		}
	}

	str(&cfg.ListingURL, d.ListingURL, fc.Source.ListingURL)
	num(&cfg.Limit, d.Limit, fc.Source.Limit)
	str(&cfg.UserAgent, d.UserAgent, fc.Source.UserAgent)
	str(&cfg.AcceptLanguage, d.AcceptLanguage, fc.Source.AcceptLanguage)
	dur(&cfg.FetchTimeout, d.FetchTimeout, fc.Source.Timeout)
	str(&cfg.Timezone, d.Timezone, fc.Source.Timezone)

	str(&cfg.LLMBaseURL, "", fc.LLM.BaseURL)
	str(&cfg.LLMModel, "", fc.LLM.Model)
	str(&cfg.LLMAPIKey, "", fc.LLM.APIKey)

	num(&cfg.WindowWords, d.WindowWords, fc.Summary.WindowWords)
	num(&cfg.OverlapWords, d.OverlapWords, fc.Summary.OverlapWords)
	num(&cfg.MinWords, d.MinWords, fc.Summary.MinWords)
	num(&cfg.MinLength, d.MinLength, fc.Summary.MinLength)
	num(&cfg.MaxLength, d.MaxLength, fc.Summary.MaxLength)

	str(&cfg.OutputDir, d.OutputDir, fc.Output)
	str(&cfg.FeedbackPath, d.FeedbackPath, fc.Feedback)
	str(&cfg.ServeAddr, d.ServeAddr, fc.Listen)
	flag(&cfg.Verbose, fc.Verbose)

	str(&cfg.CacheDir, d.CacheDir, fc.Cache.Dir)
	dur(&cfg.CacheMaxAge, 0, fc.Cache.MaxAge)
	flag(&cfg.CacheClear, fc.Cache.Clear)
	flag(&cfg.CacheStrictPerms, fc.Cache.StrictPerms)
}
