package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	t.Setenv("FOO", "")
	t.Setenv("BAR", "")
	t.Setenv("BAZ", "")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "\n# sample dotenv file\nFOO=alpha\nexport BAR=\"beta gamma\"\nBAZ=delta # trailing\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	if err := LoadEnvFiles(envPath, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	for k, want := range map[string]string{"FOO": "alpha", "BAR": "beta gamma", "BAZ": "delta"} {
		if got := os.Getenv(k); got != want {
			t.Fatalf("%s=%q, want %q", k, got, want)
		}
	}
}

// Later files override earlier ones, but not variables set before loading.
func TestLoadEnvFiles_Precedence(t *testing.T) {
	t.Setenv("K", "")
	t.Setenv("PRESET", "from-shell")
	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	if err := os.WriteFile(a, []byte("K=first\nPRESET=file-a\n"), 0o600); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("K=second\n"), 0o600); err != nil {
		t.Fatalf("write b: %v", err)
	}
	if err := LoadEnvFiles(a, b); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("K"); got != "second" {
		t.Fatalf("override order failed: got %q, want second", got)
	}
	if got := os.Getenv("PRESET"); got != "from-shell" {
		t.Fatalf("shell value overwritten: %q", got)
	}
}

func TestApplyEnvToConfig_FillsUnset(t *testing.T) {
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")
	t.Setenv("NEWSDIGEST_LIMIT", "7")
	t.Setenv("NEWSDIGEST_FETCH_TIMEOUT", "3s")
	t.Setenv("CACHE_CLEAR", "yes")
	t.Setenv("NEWSDIGEST_OUTPUT_DIR", "/tmp/env-out")

	cfg := Config{OutputDir: "explicit"}
	ApplyEnvToConfig(&cfg)
	if cfg.LLMModel != "env-model" || cfg.LLMAPIKey != "sk-fallback" {
		t.Fatalf("llm settings: %+v", cfg)
	}
	if cfg.Limit != 7 || cfg.FetchTimeout != 3*time.Second || !cfg.CacheClear {
		t.Fatalf("parsed values: %+v", cfg)
	}
	if cfg.OutputDir != "explicit" {
		t.Fatalf("explicit value replaced: %q", cfg.OutputDir)
	}
}

func TestApplyEnvOverrides_ReplacesDefaults(t *testing.T) {
	t.Setenv("NEWSDIGEST_LIMIT", "9")
	t.Setenv("CACHE_CLEAR", "false")
	t.Setenv("NEWSDIGEST_WINDOW_WORDS", "not-a-number")

	cfg := DefaultConfig()
	cfg.CacheClear = true
	ApplyEnvOverrides(&cfg)
	if cfg.Limit != 9 {
		t.Fatalf("Limit=%d, want 9", cfg.Limit)
	}
	if cfg.CacheClear {
		t.Fatalf("CACHE_CLEAR=false should disable")
	}
	if cfg.WindowWords != 500 {
		t.Fatalf("invalid number must be ignored, got %d", cfg.WindowWords)
	}
}
