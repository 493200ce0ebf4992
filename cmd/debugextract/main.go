// Command debugextract shows what the extractor finds on one page: the
// strategy chosen for the host, the article fields and the listing links.
// Pass -file to read saved HTML instead of fetching.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/extract"
	"github.com/hyperifyio/newsdigest/internal/fetch"
	"github.com/hyperifyio/newsdigest/internal/scrape"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var file, tz string
	var links int
	flag.StringVar(&file, "file", "", "Read HTML from this file; the URL argument is still used to pick a strategy")
	flag.StringVar(&tz, "tz", scrape.DefaultLocation, "Timezone for publication times")
	flag.IntVar(&links, "links", 10, "Listing links to print")
	flag.Parse()

	pageURL := scrape.DefaultListingURL
	if flag.NArg() > 0 {
		pageURL = flag.Arg(0)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()
	if err := run(ctx, os.Stdout, pageURL, file, tz, links); err != nil {
		log.Fatal().Err(err).Msg("debugextract")
	}
}

func run(ctx context.Context, w io.Writer, pageURL, file, tz string, links int) error {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return err
	}
	var body []byte
	if file != "" {
		body, err = os.ReadFile(file)
	} else {
		c := &fetch.Client{HTTPClient: &http.Client{Timeout: 20 * time.Second}, UserAgent: "debugextract/1.0"}
		body, _, err = c.Get(ctx, pageURL)
	}
	if err != nil {
		return err
	}
	page, err := extract.NewPage(pageURL, body)
	if err != nil {
		return err
	}
	s := extract.NewRegistry().For(page.URL)
	f := s.Article(page, loc)

	fmt.Fprintf(w, "strategy: %s\n", s.Name())
	fmt.Fprintf(w, "title: %q\n", f.Title)
	fmt.Fprintf(w, "authors: %q\n", f.Authors)
	fmt.Fprintf(w, "published: %s (raw %q)\n", f.Published.Format(), f.Published.Raw)
	fmt.Fprintf(w, "content: %d chars\n", len(f.Content))
	for i, l := range s.Links(page, links) {
		fmt.Fprintf(w, "%d. %s\n", i+1, l)
	}
	return nil
}
