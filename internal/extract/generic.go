package extract

import (
	"bytes"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/article"
)

// Generic handles sites without a dedicated strategy. Body text comes from
// readability; when that fails the heuristic tree walk is used instead.
type Generic struct{}

func (Generic) Name() string { return "generic" }

func (Generic) Article(p Page, loc *time.Location) Fields {
	var f Fields
	parsed, err := readability.FromReader(bytes.NewReader(p.Body), p.URL)
	if err != nil {
		log.Debug().Err(err).Str("url", urlString(p)).Msg("readability failed; using heuristic extraction")
	} else {
		f.Title = cleanLine(parsed.Title)
		f.Content = normalizeLines(parsed.TextContent)
	}

	if f.Title == "" {
		f.Title = cleanLine(p.Doc.Find("title").First().Text())
	}
	if f.Content == "" {
		f.Content = heuristicText(p.Body)
	}

	if content, ok := p.Doc.Find(`meta[name="author"]`).First().Attr("content"); ok {
		f.Authors = appendUnique(f.Authors, content)
	}
	if len(f.Authors) == 0 && err == nil {
		f.Authors = appendUnique(f.Authors, parsed.Byline)
	}

	f.Published = timeTagPublished(p.Doc, loc)
	if f.Published.State == article.TimestampMissing {
		if raw, ok := p.Doc.Find(`meta[property="article:published_time"]`).First().Attr("content"); ok {
			f.Published = ParsePublished(raw, loc)
		}
	}
	return f
}

// Links collects headline links, preferring those inside <article> elements.
func (Generic) Links(p Page, limit int) []string {
	sel := p.Doc.Find("article h2 a[href], article h3 a[href]")
	if sel.Length() == 0 {
		sel = p.Doc.Find("h2 a[href], h3 a[href]")
	}
	var links []string
	seen := map[string]bool{}
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if limit > 0 && len(links) >= limit {
			return false
		}
		href, _ := s.Attr("href")
		abs, ok := p.resolve(strings.TrimSpace(href))
		if !ok || seen[abs] {
			return true
		}
		seen[abs] = true
		links = append(links, abs)
		return true
	})
	return links
}

func urlString(p Page) string {
	if p.URL == nil {
		return ""
	}
	return p.URL.String()
}
