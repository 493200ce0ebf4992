package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/api"
	"github.com/hyperifyio/newsdigest/internal/app"
	"github.com/hyperifyio/newsdigest/internal/article"
	"github.com/hyperifyio/newsdigest/internal/export"
	"github.com/hyperifyio/newsdigest/internal/feedback"
	"github.com/hyperifyio/newsdigest/internal/summarize"
)

// digestFlags are shared by latest and fetch.
type digestFlags struct {
	summarize bool
	maxLength int
	formats   string
}

func (d *digestFlags) bind(fs *flag.FlagSet) {
	fs.BoolVar(&d.summarize, "summarize", false, "Summarize each article")
	fs.IntVar(&d.maxLength, "max", 0, "Maximum summary length in words, clamped to 50-300 (0 uses the configured value)")
	fs.StringVar(&d.formats, "export", "", "Comma-separated export formats: txt, pdf, json")
}

func cmdLatest(ctx context.Context, args []string, stdout io.Writer) error {
	var limit int
	var d digestFlags
	cfg, _, err := parseConfig("latest", args, func(fs *flag.FlagSet) {
		fs.IntVar(&limit, "limit", 0, "Number of articles (default from config)")
		d.bind(fs)
	})
	if err != nil {
		return err
	}
	formats, err := parseExportFormats(d.formats)
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	recs := a.Latest(ctx, limit)
	if len(recs) == 0 {
		return errors.New("no articles found on the listing page")
	}
	return digest(ctx, a, recs, d, formats, stdout)
}

func cmdFetch(ctx context.Context, args []string, stdout io.Writer) error {
	var url string
	var d digestFlags
	cfg, _, err := parseConfig("fetch", args, func(fs *flag.FlagSet) {
		fs.StringVar(&url, "url", "", "Article URL")
		d.bind(fs)
	})
	if err != nil {
		return err
	}
	if url == "" {
		return fmt.Errorf("%w: -url is required", errUsage)
	}
	formats, err := parseExportFormats(d.formats)
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	rec := a.Fetch(ctx, url)
	if err := digest(ctx, a, []article.Record{rec}, d, formats, stdout); err != nil {
		return err
	}
	if rec.FetchFailed {
		return fmt.Errorf("fetch %s failed", url)
	}
	return nil
}

// digest prints, optionally summarizes and exports recs. A failed or
// unavailable summary makes the command fail after all output is written.
func digest(ctx context.Context, a *app.App, recs []article.Record, d digestFlags, formats []export.Format, stdout io.Writer) error {
	bundles := make([]export.Bundle, 0, len(recs))
	summaryFailed := false
	for i, rec := range recs {
		b := export.Bundle{Article: rec}
		if d.summarize && rec.HasContent() {
			res := a.Summarize(ctx, rec, d.maxLength)
			b.Summary = &res
			if res.Outcome == summarize.OutcomeFailed || res.Outcome == summarize.OutcomeModelUnavailable {
				summaryFailed = true
			}
		}
		if i > 0 {
			fmt.Fprintln(stdout, strings.Repeat("-", 60))
		}
		printBundle(stdout, b)
		bundles = append(bundles, b)
	}
	if len(formats) > 0 {
		paths, err := a.ExportAll(bundles, formats...)
		for _, p := range paths {
			fmt.Fprintf(stdout, "wrote %s\n", p)
		}
		if err != nil {
			return err
		}
	}
	if summaryFailed {
		return errors.New("one or more summaries could not be produced")
	}
	return nil
}

func printBundle(w io.Writer, b export.Bundle) {
	v := b.Article.View()
	fmt.Fprintf(w, "Title: %s\nAuthor(s): %s\nPublished: %s\nURL: %s\n\n", v.Title, v.Authors, v.Published, v.URL)
	if b.Summary == nil {
		fmt.Fprintf(w, "%s\n", v.Content)
		return
	}
	fmt.Fprintf(w, "Summary:\n%s\n", b.Summary.Text)
	if b.Summary.Stats != nil {
		printStats(w, *b.Summary.Stats)
	}
}

func printStats(w io.Writer, s summarize.Stats) {
	fmt.Fprintf(w, "\nOriginal: %d words, %d characters\n", s.OriginalWords, s.OriginalChars)
	fmt.Fprintf(w, "Summary: %d words, %d characters\n", s.SummaryWords, s.SummaryChars)
	fmt.Fprintf(w, "Compression ratio: %.2f\n", s.CompressionRatio)
	fmt.Fprintf(w, "Readability grade: %.1f\nReading ease: %.1f\n", s.ReadabilityGrade, s.ReadingEase)
}

func parseExportFormats(s string) ([]export.Format, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	formats, err := export.ParseFormats(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return formats, nil
}

func cmdSummarize(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	var file, label string
	var maxLength int
	cfg, _, err := parseConfig("summarize", args, func(fs *flag.FlagSet) {
		fs.StringVar(&file, "file", "", "Read text from this file instead of stdin")
		fs.StringVar(&label, "label", "", "Name for the text in logs")
		fs.IntVar(&maxLength, "max", 0, "Maximum summary length in words, clamped to 50-300 (0 uses the configured value)")
	})
	if err != nil {
		return err
	}
	var text []byte
	if file != "" {
		text, err = os.ReadFile(file)
		if label == "" {
			label = file
		}
	} else {
		text, err = io.ReadAll(stdin)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.SummarizeText(ctx, string(text), label, maxLength)
	fmt.Fprintln(stdout, res.Text)
	if res.Stats != nil {
		printStats(stdout, *res.Stats)
	}
	switch res.Outcome {
	case summarize.OutcomeFailed, summarize.OutcomeModelUnavailable:
		return fmt.Errorf("summarize: %s", res.Outcome)
	}
	return nil
}

func cmdFeedback(ctx context.Context, args []string, stdout io.Writer) error {
	var kind, message, input, summary string
	var list bool
	cfg, _, err := parseConfig("feedback", args, func(fs *flag.FlagSet) {
		fs.StringVar(&kind, "type", string(feedback.TypeOverall), "overall_feedback or summary_feedback")
		fs.StringVar(&message, "message", "", "Feedback text")
		fs.StringVar(&input, "input", "", "Text that was summarized")
		fs.StringVar(&summary, "summary", "", "Summary the feedback refers to")
		fs.BoolVar(&list, "list", false, "List stored feedback instead of recording")
	})
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if list {
		entries, err := a.Feedback(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(stdout, "%s\t%s\t%s\t%s\n", e.Type, e.Message, e.Input, e.Summary)
		}
		return nil
	}
	e := feedback.Entry{Type: feedback.Type(kind), Message: message, Input: input, Summary: summary}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := a.SubmitFeedback(ctx, e); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Feedback recorded.")
	return nil
}

func cmdServe(ctx context.Context, args []string) error {
	var accessKey string
	cfg, _, err := parseConfig("serve", args, func(fs *flag.FlagSet) {
		fs.StringVar(&accessKey, "key", os.Getenv("NEWSDIGEST_API_KEY"), "Access key required by the API (empty disables auth)")
	})
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.ServeAddr,
		Handler:           api.NewServer(api.NewHandler(a, app.BuildVersion), accessKey),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ServeAddr).Bool("auth", accessKey != "").Bool("model", a.ModelAvailable()).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
