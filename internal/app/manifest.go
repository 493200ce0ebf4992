package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hyperifyio/newsdigest/internal/export"
)

const manifestName = "manifest.json"

// manifestEntry records one exported article.
type manifestEntry struct {
	Index          int      `json:"index"`
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	SHA256         string   `json:"sha256"`
	Chars          int      `json:"chars"`
	SummaryOutcome string   `json:"summary_outcome,omitempty"`
	Files          []string `json:"files"`
}

// manifestMeta captures run details that aid reproducibility.
type manifestMeta struct {
	Model        string    `json:"model"`
	LLMBaseURL   string    `json:"llm_base_url"`
	ArticleCount int       `json:"article_count"`
	HTTPCache    bool      `json:"http_cache"`
	SummaryCache bool      `json:"summary_cache"`
	Version      string    `json:"version"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of text.
func computeSHA256Hex(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

func newManifestEntry(index int, b export.Bundle, paths []string) manifestEntry {
	v := b.Article.View()
	content := strings.TrimSpace(b.Article.Content)
	e := manifestEntry{
		Index:  index,
		URL:    strings.TrimSpace(v.URL),
		Title:  v.Title,
		SHA256: computeSHA256Hex(content),
		Chars:  utf8.RuneCountInString(content),
		Files:  make([]string, 0, len(paths)),
	}
	if b.Summary != nil {
		e.SummaryOutcome = b.Summary.Outcome.String()
	}
	for _, p := range paths {
		e.Files = append(e.Files, filepath.Base(p))
	}
	return e
}

func marshalManifestJSON(meta manifestMeta, entries []manifestEntry) ([]byte, error) {
	payload := struct {
		Meta     manifestMeta    `json:"meta"`
		Articles []manifestEntry `json:"articles"`
	}{Meta: meta, Articles: entries}
	return json.MarshalIndent(payload, "", "  ")
}

// writeManifest writes manifest.json under dir and returns its path.
func writeManifest(dir string, meta manifestMeta, entries []manifestEntry) (string, error) {
	b, err := marshalManifestJSON(meta, entries)
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	p := filepath.Join(dir, manifestName)
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return p, nil
}
