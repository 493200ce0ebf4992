package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envBinding ties environment keys to one Config field. set reports whether
// a value was applied.
type envBinding struct {
	keys  []string
	isSet func(*Config) bool
	set   func(*Config, string) bool
}

func strEnv(field func(*Config) *string, keys ...string) envBinding {
	return envBinding{
		keys:  keys,
		isSet: func(c *Config) bool { return *field(c) != "" },
		set: func(c *Config, v string) bool {
			*field(c) = v
			return true
		},
	}
}

func intEnv(field func(*Config) *int, keys ...string) envBinding {
	return envBinding{
		keys:  keys,
		isSet: func(c *Config) bool { return *field(c) != 0 },
		set: func(c *Config, v string) bool {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return false
			}
			*field(c) = n
			return true
		},
	}
}

func durEnv(field func(*Config) *time.Duration, keys ...string) envBinding {
	return envBinding{
		keys:  keys,
		isSet: func(c *Config) bool { return *field(c) != 0 },
		set: func(c *Config, v string) bool {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return false
			}
			*field(c) = d
			return true
		},
	}
}

func boolEnv(field func(*Config) *bool, keys ...string) envBinding {
	return envBinding{
		keys:  keys,
		isSet: func(c *Config) bool { return *field(c) },
		set: func(c *Config, v string) bool {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "on":
				*field(c) = true
			case "0", "false", "no", "off":
				*field(c) = false
			default:
				return false
			}
			return true
		},
	}
}

var envBindings = []envBinding{
	strEnv(func(c *Config) *string { return &c.LLMBaseURL }, "LLM_BASE_URL"),
	strEnv(func(c *Config) *string { return &c.LLMModel }, "LLM_MODEL"),
	strEnv(func(c *Config) *string { return &c.LLMAPIKey }, "LLM_API_KEY", "OPENAI_API_KEY"),

	strEnv(func(c *Config) *string { return &c.ListingURL }, "NEWSDIGEST_LISTING_URL"),
	intEnv(func(c *Config) *int { return &c.Limit }, "NEWSDIGEST_LIMIT"),
	strEnv(func(c *Config) *string { return &c.UserAgent }, "NEWSDIGEST_USER_AGENT"),
	durEnv(func(c *Config) *time.Duration { return &c.FetchTimeout }, "NEWSDIGEST_FETCH_TIMEOUT"),
	strEnv(func(c *Config) *string { return &c.Timezone }, "NEWSDIGEST_TIMEZONE"),
	intEnv(func(c *Config) *int { return &c.WindowWords }, "NEWSDIGEST_WINDOW_WORDS"),
	intEnv(func(c *Config) *int { return &c.OverlapWords }, "NEWSDIGEST_OVERLAP_WORDS"),
	strEnv(func(c *Config) *string { return &c.OutputDir }, "NEWSDIGEST_OUTPUT_DIR"),
	strEnv(func(c *Config) *string { return &c.FeedbackPath }, "NEWSDIGEST_FEEDBACK_PATH"),
	strEnv(func(c *Config) *string { return &c.ServeAddr }, "NEWSDIGEST_LISTEN"),

	strEnv(func(c *Config) *string { return &c.CacheDir }, "CACHE_DIR"),
	durEnv(func(c *Config) *time.Duration { return &c.CacheMaxAge }, "CACHE_MAX_AGE"),
	boolEnv(func(c *Config) *bool { return &c.CacheClear }, "CACHE_CLEAR"),
	boolEnv(func(c *Config) *bool { return &c.CacheStrictPerms }, "CACHE_STRICT_PERMS"),
	boolEnv(func(c *Config) *bool { return &c.Verbose }, "VERBOSE"),
}

func applyEnv(cfg *Config, force bool) {
	if cfg == nil {
		return
	}
	for _, b := range envBindings {
		if !force && b.isSet(cfg) {
			continue
		}
		for _, k := range b.keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" && b.set(cfg, v) {
				break
			}
		}
	}
}

// ApplyEnvToConfig fills unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) { applyEnv(cfg, false) }

// ApplyEnvOverrides lets set environment variables replace values that came
// from defaults or a config file. Flags are applied after this by the caller.
func ApplyEnvOverrides(cfg *Config) { applyEnv(cfg, true) }
