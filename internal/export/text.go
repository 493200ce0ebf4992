package export

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

const (
	titlePrefix     = "Title: "
	authorsPrefix   = "Author(s): "
	publishedPrefix = "Published: "
	summaryHeading  = "Summary:"
)

// ErrMalformedHeader is returned by ParseTextHeader for input that does not
// start with the three header lines.
var ErrMalformedHeader = errors.New("malformed text export header")

// Header holds the rendered header values of a text export.
type Header struct {
	Title     string
	Authors   string
	Published string
}

// Text renders the plain-text export: three header lines, a blank line, then
// the summary under a "Summary:" heading or, without a summary, the article
// content.
func Text(b Bundle) string {
	v := b.Article.View()
	var sb strings.Builder
	sb.WriteString(titlePrefix + oneLine(v.Title) + "\n")
	sb.WriteString(authorsPrefix + oneLine(v.Authors) + "\n")
	sb.WriteString(publishedPrefix + oneLine(v.Published) + "\n\n")
	if s := b.summaryText(); s != "" {
		sb.WriteString(summaryHeading + "\n")
		sb.WriteString(s)
	} else {
		sb.WriteString(v.Content)
	}
	return sb.String()
}

// ParseTextHeader reads back the header of a text export.
func ParseTextHeader(s string) (Header, error) {
	sc := bufio.NewScanner(strings.NewReader(s))
	var lines []string
	for len(lines) < 3 && sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if len(lines) < 3 {
		return Header{}, fmt.Errorf("%w: expected 3 lines, got %d", ErrMalformedHeader, len(lines))
	}
	var h Header
	for i, want := range []struct {
		prefix string
		dst    *string
	}{
		{titlePrefix, &h.Title},
		{authorsPrefix, &h.Authors},
		{publishedPrefix, &h.Published},
	} {
		if !strings.HasPrefix(lines[i], want.prefix) {
			return Header{}, fmt.Errorf("%w: line %d does not start with %q", ErrMalformedHeader, i+1, want.prefix)
		}
		*want.dst = strings.TrimPrefix(lines[i], want.prefix)
	}
	return h, nil
}

// oneLine keeps header values on a single line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
