package extract

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/newsdigest/internal/article"
)

// Layouts carrying their own offset. Fractional seconds are accepted by
// time.Parse after the seconds field even when the layout omits them.
var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05Z07:00",
}

// Offset-less layouts are interpreted as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePublished parses an ISO 8601 datetime attribute and converts it to
// loc. A value that is present but unparsable yields TimestampInvalid.
func ParsePublished(raw string, loc *time.Location) article.Timestamp {
	if loc == nil {
		loc = time.UTC
	}
	s := strings.TrimSpace(raw)
	ts := article.Timestamp{State: article.TimestampInvalid, Raw: raw}
	if s == "" {
		return ts
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.State = article.TimestampPresent
			ts.Time = t.In(loc)
			return ts
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			ts.State = article.TimestampPresent
			ts.Time = t.In(loc)
			return ts
		}
	}
	return ts
}

// timeTagPublished reads the datetime attribute of the first <time> element.
func timeTagPublished(doc *goquery.Document, loc *time.Location) article.Timestamp {
	raw, ok := doc.Find("time").First().Attr("datetime")
	if !ok {
		return article.Timestamp{State: article.TimestampMissing}
	}
	return ParsePublished(raw, loc)
}
