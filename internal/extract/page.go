package extract

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// Page is a fetched document ready for field extraction.
type Page struct {
	URL  *url.URL
	Body []byte
	Doc  *goquery.Document
}

// NewPage parses body as HTML. The parser is lenient, so an error here means
// the input could not be read at all.
func NewPage(pageURL string, body []byte) (Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("parse url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}
	doc.Url = u
	return Page{URL: u, Body: body, Doc: doc}, nil
}

// resolve turns href into an absolute URL relative to the page.
func (p Page) resolve(href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if p.URL == nil {
		return ref.String(), ref.IsAbs()
	}
	abs := p.URL.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	return abs.String(), true
}
