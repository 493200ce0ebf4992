package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const techCrunchTitleSuffix = " | TechCrunch"

// copyrightRe matches syndication boilerplate such as "© 2025 Yahoo." up to
// the end of its line.
var copyrightRe = regexp.MustCompile(`© \d{4} Yahoo.*`)

// TechCrunch reads the WordPress block markup used on techcrunch.com.
type TechCrunch struct{}

func (TechCrunch) Name() string { return "techcrunch" }

func (TechCrunch) Article(p Page, loc *time.Location) Fields {
	return Fields{
		Title:     techCrunchTitle(p.Doc),
		Authors:   techCrunchAuthors(p.Doc),
		Published: timeTagPublished(p.Doc, loc),
		Content:   techCrunchContent(p.Doc),
	}
}

// Links scans at most limit cards; a card without a title link is skipped but
// still counts toward the limit.
func (TechCrunch) Links(p Page, limit int) []string {
	var links []string
	p.Doc.Find("div.wp-block-techcrunch-card").EachWithBreak(func(i int, card *goquery.Selection) bool {
		if limit > 0 && i >= limit {
			return false
		}
		href, ok := card.Find("h3.loop-card__title a").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}
		if abs, ok := p.resolve(strings.TrimSpace(href)); ok {
			links = append(links, abs)
		}
		return true
	})
	return links
}

func techCrunchTitle(doc *goquery.Document) string {
	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(cleanLine(sel.Text()), techCrunchTitleSuffix, ""))
}

// techCrunchAuthors prefers <meta name="author">, then the byline list.
func techCrunchAuthors(doc *goquery.Document) []string {
	if content, ok := doc.Find(`meta[name="author"]`).First().Attr("content"); ok {
		if c := cleanLine(content); c != "" {
			return []string{c}
		}
	}
	var authors []string
	doc.Find("ul.post-authors-list__author-list a.post-authors-list__author").Each(func(_ int, s *goquery.Selection) {
		authors = appendUnique(authors, s.Text())
	})
	return authors
}

func techCrunchContent(doc *goquery.Document) string {
	excerpt := ""
	if sel := doc.Find("p.wp-block-techcrunch-storyline-hero__excerpt").First(); sel.Length() > 0 {
		excerpt = strings.ReplaceAll(cleanText(sel.Text()), "\n\n", " ")
	}

	var paragraphs []string
	doc.Find("p.wp-block-paragraph").Each(func(_ int, s *goquery.Selection) {
		text := cleanText(s.Text())
		if text == "" || strings.HasPrefix(text, "Topics") {
			return
		}
		paragraphs = append(paragraphs, text)
	})
	body := strings.TrimSpace(copyrightRe.ReplaceAllString(strings.Join(paragraphs, "\n"), ""))

	if excerpt != "" {
		return strings.TrimSpace(excerpt + "\n" + body)
	}
	return body
}
