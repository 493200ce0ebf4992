package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/hyperifyio/newsdigest/internal/article"
	"github.com/hyperifyio/newsdigest/internal/extract"
	"github.com/hyperifyio/newsdigest/internal/fetch"
)

type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Get(_ context.Context, url string) ([]byte, string, error) {
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return nil, "", errors.New("404")
	}
	return []byte(body), "text/html", nil
}

const listing = `<html><body>
<div class="wp-block-techcrunch-card"><h3 class="loop-card__title"><a href="https://techcrunch.com/a1">One</a></h3></div>
<div class="wp-block-techcrunch-card"><h3 class="loop-card__title"><a href="/a2">Two</a></h3></div>
<div class="wp-block-techcrunch-card"><p>sponsored</p></div>
<div class="wp-block-techcrunch-card"><h3 class="loop-card__title"><a href="https://techcrunch.com/a4">Four</a></h3></div>
</body></html>`

const articleOne = `<html><head><title>First story | TechCrunch</title><meta name="author" content="Ann Lee"></head>
<body><time datetime="2025-03-05T18:00:00Z">x</time>
<p class="wp-block-paragraph">Body text.</p></body></html>`

func newScraper(f Fetcher) *Scraper {
	return &Scraper{Fetcher: f, Location: time.FixedZone("EET", 2*60*60)}
}

func TestArticleLinks_LimitCountsCards(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{DefaultListingURL: listing}}
	got := newScraper(f).ArticleLinks(context.Background(), DefaultListingURL, 3)
	want := []string{"https://techcrunch.com/a1", "https://techcrunch.com/a2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestArticleLinks_FetchFailureIsEmpty(t *testing.T) {
	f := &fakeFetcher{}
	if got := newScraper(f).ArticleLinks(context.Background(), DefaultListingURL, 5); len(got) != 0 {
		t.Fatalf("expected no links, got %v", got)
	}
}

func TestArticleLinks_NoCards(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{DefaultListingURL: "<html><body><p>maintenance</p></body></html>"}}
	if got := newScraper(f).ArticleLinks(context.Background(), DefaultListingURL, 5); len(got) != 0 {
		t.Fatalf("expected no links, got %v", got)
	}
}

func TestFetchArticle(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://techcrunch.com/a1": articleOne}}
	rec := newScraper(f).FetchArticle(context.Background(), "https://techcrunch.com/a1")
	v := rec.View()
	if v.Title != "First story" || v.Authors != "Ann Lee" || v.Content != "Body text." {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.Published != "March 05, 2025 at 08:00 PM (EET)" {
		t.Fatalf("published: %q", v.Published)
	}
}

func TestFetchArticle_FailureRecord(t *testing.T) {
	rec := newScraper(&fakeFetcher{}).FetchArticle(context.Background(), "https://techcrunch.com/gone")
	if !rec.FetchFailed || rec.URL != "https://techcrunch.com/gone" {
		t.Fatalf("expected failed record, got %+v", rec)
	}
	if rec.View().Content != article.FetchFailedContent {
		t.Fatalf("content: %q", rec.View().Content)
	}
}

func TestLatest_FailedArticlesKeepTheirSlot(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		DefaultListingURL:          listing,
		"https://techcrunch.com/a1": articleOne,
	}}
	recs := newScraper(f).Latest(context.Background(), 4)
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[0].Title != "First story" || recs[0].FetchFailed {
		t.Fatalf("first record: %+v", recs[0])
	}
	if !recs[1].FetchFailed || !recs[2].FetchFailed {
		t.Fatalf("expected failed records for missing pages: %+v", recs[1:])
	}
	wantCalls := []string{DefaultListingURL, "https://techcrunch.com/a1", "https://techcrunch.com/a2", "https://techcrunch.com/a4"}
	if !reflect.DeepEqual(f.calls, wantCalls) {
		t.Fatalf("calls: %v", f.calls)
	}
}

func TestLatest_OverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/latest/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<div class="wp-block-techcrunch-card"><h3 class="loop-card__title"><a href="/story">S</a></h3></div>`))
	})
	mux.HandleFunc("/story", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleOne))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	reg := extract.NewRegistry()
	reg.Register("127.0.0.1", extract.TechCrunch{})
	s := &Scraper{
		Fetcher:    &fetch.Client{UserAgent: "newsdigest-test"},
		Registry:   reg,
		Location:   time.UTC,
		ListingURL: srv.URL + "/latest/",
	}
	recs := s.Latest(context.Background(), 5)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].URL != srv.URL+"/story" || recs[0].Title != "First story" {
		t.Fatalf("record: %+v", recs[0])
	}
}
