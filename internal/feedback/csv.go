package feedback

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

var csvHeader = []string{"Type", "Message", "Input", "Summary"}

// CSVStore appends entries to a CSV file. The header row is written when
// the file is created.
type CSVStore struct {
	Path string
	mu   sync.Mutex
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{Path: path}
}

// Append validates e and writes one row.
func (s *CSVStore) Append(_ context.Context, e Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create feedback dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open feedback file: %w", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat feedback file: %w", err)
	}

	w := csv.NewWriter(f)
	if fi.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
	}
	cols := e.columns()
	if err := w.Write(cols[:]); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write feedback: %w", err)
	}
	return nil
}

// List reads all rows after the header. A missing file has no entries.
func (s *CSVStore) List(_ context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open feedback file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)
	var out []Entry
	for first := true; ; first = false {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, fmt.Errorf("read feedback: %w", err)
		}
		if first {
			continue
		}
		out = append(out, Entry{Type: Type(rec[0]), Message: rec[1], Input: rec[2], Summary: rec[3]})
	}
	return out, nil
}

func (s *CSVStore) Close() error { return nil }
