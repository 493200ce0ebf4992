// Package feedback validates and persists reviewer feedback.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// Type classifies an entry.
type Type string

const (
	TypeOverall Type = "overall_feedback"
	TypeSummary Type = "summary_feedback"
)

// NotApplicable fills the input and summary columns when they are absent.
const NotApplicable = "N/A"

var (
	ErrEmptyInput    = errors.New("input cannot be empty")
	ErrInputTooShort = errors.New("input is too short")
	ErrUnknownType   = errors.New("unknown feedback type")
)

// Entry is one piece of feedback. Input and Summary refer to the text that
// was summarized and the summary the reviewer saw.
type Entry struct {
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	Input     string    `json:"input,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Validate checks free text entered by a reviewer.
func Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	if utf8.RuneCountInString(text) < 2 {
		return ErrInputTooShort
	}
	return nil
}

// Validate checks the type and message of e.
func (e Entry) Validate() error {
	switch e.Type {
	case TypeOverall, TypeSummary:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, string(e.Type))
	}
	return Validate(e.Message)
}

// columns returns the stored values with N/A defaults applied.
func (e Entry) columns() [4]string {
	input, summary := e.Input, e.Summary
	if strings.TrimSpace(input) == "" {
		input = NotApplicable
	}
	if strings.TrimSpace(summary) == "" {
		summary = NotApplicable
	}
	return [4]string{string(e.Type), e.Message, input, summary}
}

// Store is an append-only feedback log.
type Store interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

// Open picks the store by file extension: .db and .sqlite use SQLite,
// anything else is a CSV file.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	}
	return NewCSVStore(path), nil
}
