// Package export renders an article and its summary as plain text, PDF or
// JSON. All renderings derive from the same article view, so sentinels are
// identical across formats.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperifyio/newsdigest/internal/article"
	"github.com/hyperifyio/newsdigest/internal/summarize"
)

// Format names an export rendering and doubles as the file extension.
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Bundle pairs an article with an optional summary result.
type Bundle struct {
	Article article.Record
	Summary *summarize.Result
}

// summaryText returns the summary to render, or "" when the bundle has none.
func (b Bundle) summaryText() string {
	if b.Summary == nil {
		return ""
	}
	return strings.TrimSpace(b.Summary.Text)
}

func (b Bundle) stats() *summarize.Stats {
	if b.Summary == nil {
		return nil
	}
	return b.Summary.Stats
}

// ParseFormats parses a comma separated list such as "txt,pdf".
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		f := Format(part)
		switch f {
		case FormatText, FormatPDF, FormatJSON:
			out = append(out, f)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, part)
		}
	}
	return out, nil
}

// Render produces the bytes of one format.
func Render(b Bundle, f Format) ([]byte, error) {
	switch f {
	case FormatText:
		return []byte(Text(b)), nil
	case FormatPDF:
		var buf bytes.Buffer
		if err := PDF(b, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return JSON(b)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}

// ContentType returns the MIME type served for f.
func ContentType(f Format) string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// FileName derives a file name from the article title. Path separators in
// the title are replaced with dashes.
func FileName(b Bundle, f Format) string {
	title := strings.TrimSpace(b.Article.View().Title)
	title = strings.ReplaceAll(title, "/", "-")
	title = strings.ReplaceAll(title, string(filepath.Separator), "-")
	title = strings.Join(strings.Fields(title), " ")
	if title == "" || title == "." || title == ".." {
		title = article.NoTitle
	}
	return title + "." + string(f)
}

// WriteFiles renders b in each format under dir and returns the written paths.
func WriteFiles(dir string, b Bundle, formats ...Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, err := Render(b, f)
		if err != nil {
			return paths, err
		}
		p := filepath.Join(dir, FileName(b, f))
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", f, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
