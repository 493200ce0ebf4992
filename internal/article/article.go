package article

import (
	"strings"
	"time"
)

// Presentation sentinels. They are only produced by View; a Record keeps
// absent fields as zero values.
const (
	NoTitle             = "No Title"
	Unknown             = "Unknown"
	UnknownDate         = "Unknown Date"
	ContentNotAvailable = "Content not available"
	FetchFailedContent  = "Failed to fetch content"
)

// TimestampState distinguishes a missing timestamp from one that failed to parse.
type TimestampState int

const (
	TimestampMissing TimestampState = iota
	TimestampInvalid
	TimestampPresent
)

// displayLayout renders e.g. "March 05, 2025 at 08:00 PM (EET)".
const displayLayout = "January 02, 2006 at 03:04 PM (MST)"

// Timestamp is a publication time already converted to the display location.
type Timestamp struct {
	State TimestampState
	Time  time.Time
	// Raw is the attribute value as found in the document, kept for diagnostics.
	Raw string
}

// Format returns the display string or the matching sentinel.
func (t Timestamp) Format() string {
	switch t.State {
	case TimestampPresent:
		return t.Time.Format(displayLayout)
	case TimestampInvalid:
		return UnknownDate
	default:
		return Unknown
	}
}

// Record is one extracted article. It is built once by the scraper and not
// modified afterwards.
type Record struct {
	URL       string
	Title     string
	Authors   []string
	Published Timestamp
	Content   string
	// FetchFailed marks a record produced for a URL that could not be retrieved.
	FetchFailed bool
}

// Failed returns the record used when the document could not be fetched.
func Failed(url string) Record {
	return Record{URL: url, FetchFailed: true}
}

// HasContent reports whether the record carries body text worth summarizing.
func (r Record) HasContent() bool {
	return !r.FetchFailed && strings.TrimSpace(r.Content) != ""
}

// View is the rendered form of a Record, with sentinels substituted.
type View struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Authors   string `json:"authors"`
	Published string `json:"published_time"`
	Content   string `json:"content"`
}

// View renders the record for display and export. Title and author names are
// collapsed to a single line.
func (r Record) View() View {
	if r.FetchFailed {
		return View{
			URL:       r.URL,
			Title:     Unknown,
			Authors:   Unknown,
			Published: Unknown,
			Content:   FetchFailedContent,
		}
	}
	v := View{
		URL:       r.URL,
		Title:     singleLine(r.Title),
		Authors:   joinAuthors(r.Authors),
		Published: r.Published.Format(),
		Content:   r.Content,
	}
	if strings.TrimSpace(v.Title) == "" {
		v.Title = NoTitle
	}
	if strings.TrimSpace(v.Authors) == "" {
		v.Authors = Unknown
	}
	if strings.TrimSpace(v.Content) == "" {
		v.Content = ContentNotAvailable
	}
	return v
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func joinAuthors(authors []string) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		if a = singleLine(a); a != "" {
			names = append(names, a)
		}
	}
	return strings.Join(names, ", ")
}
