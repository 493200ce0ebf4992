package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// SummaryCache stores model output for individual windows so re-summarizing
// the same article with the same bounds does not call the model again.
type SummaryCache struct {
	Dir         string
	StrictPerms bool
}

type summaryEntry struct {
	Model   string    `json:"model"`
	Summary string    `json:"summary"`
	SavedAt time.Time `json:"saved_at"`
}

// SummaryKey digests everything that influences a window summary.
func SummaryKey(model string, minLength, maxLength int, window string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(minLength) + ":" + strconv.Itoa(maxLength)))
	h.Write([]byte{0})
	h.Write([]byte(window))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *SummaryCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns the cached summary for key.
func (c *SummaryCache) Get(_ context.Context, key string) (string, bool) {
	if c == nil || c.Dir == "" {
		return "", false
	}
	b, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return "", false
	}
	var e summaryEntry
	if err := json.Unmarshal(b, &e); err != nil || e.Summary == "" {
		return "", false
	}
	return e.Summary, true
}

// Put stores a window summary under key.
func (c *SummaryCache) Put(_ context.Context, key, model, summary string) error {
	if c == nil {
		return errors.New("cache dir not configured")
	}
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return err
	}
	b, err := json.Marshal(summaryEntry{Model: model, Summary: summary, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return os.WriteFile(c.pathFor(key), b, fileMode(c.StrictPerms))
}
