// Package scrape turns article and listing URLs into article records.
package scrape

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/article"
	"github.com/hyperifyio/newsdigest/internal/extract"
)

// DefaultListingURL is the page Latest reads article links from.
const DefaultListingURL = "https://techcrunch.com/latest/"

// DefaultLocation is used when Scraper.Location is nil.
const DefaultLocation = "Africa/Cairo"

// Fetcher retrieves a document body. *fetch.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Scraper combines a Fetcher with per-site extraction strategies. Requests
// are issued one at a time.
type Scraper struct {
	Fetcher  Fetcher
	Registry *extract.Registry
	// Location is the display zone for publication times.
	Location   *time.Location
	ListingURL string
}

func (s *Scraper) registry() *extract.Registry {
	if s.Registry == nil {
		s.Registry = extract.NewRegistry()
	}
	return s.Registry
}

func (s *Scraper) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	if loc, err := time.LoadLocation(DefaultLocation); err == nil {
		s.Location = loc
		return loc
	}
	return time.UTC
}

func (s *Scraper) page(ctx context.Context, url string) (extract.Page, error) {
	body, _, err := s.Fetcher.Get(ctx, url)
	if err != nil {
		return extract.Page{}, err
	}
	return extract.NewPage(url, body)
}

// FetchArticle extracts a single article. It never fails: when the document
// cannot be retrieved the failed-fetch record is returned and the error is
// logged. Missing fields are left empty.
func (s *Scraper) FetchArticle(ctx context.Context, url string) article.Record {
	p, err := s.page(ctx, url)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("error fetching article")
		return article.Failed(url)
	}
	strat := s.registry().For(p.URL)
	f := strat.Article(p, s.location())
	rec := article.Record{
		URL:       url,
		Title:     f.Title,
		Authors:   f.Authors,
		Published: f.Published,
		Content:   f.Content,
	}
	log.Debug().
		Str("url", url).
		Str("strategy", strat.Name()).
		Bool("has_content", rec.HasContent()).
		Msg("article extracted")
	return rec
}

// ArticleLinks returns up to limit article URLs from a listing page. A
// listing that cannot be fetched or has no cards yields an empty slice.
func (s *Scraper) ArticleLinks(ctx context.Context, listingURL string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	p, err := s.page(ctx, listingURL)
	if err != nil {
		log.Error().Err(err).Str("url", listingURL).Msg("error fetching listing page")
		return nil
	}
	links := s.registry().For(p.URL).Links(p, limit)
	if len(links) == 0 {
		log.Warn().Str("url", listingURL).Msg("no articles found on listing page")
	}
	return links
}

// Latest fetches the newest articles from the listing page. Articles that
// fail to fetch are included as failed records, so the result has one entry
// per link.
func (s *Scraper) Latest(ctx context.Context, limit int) []article.Record {
	listing := s.ListingURL
	if listing == "" {
		listing = DefaultListingURL
	}
	links := s.ArticleLinks(ctx, listing, limit)
	out := make([]article.Record, 0, len(links))
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}
		out = append(out, s.FetchArticle(ctx, link))
	}
	log.Info().Int("requested", limit).Int("fetched", len(out)).Msg("latest articles")
	return out
}
