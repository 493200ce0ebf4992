package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	// Timezone data for hosts without a zoneinfo database.
	_ "time/tzdata"

	"github.com/hyperifyio/newsdigest/internal/app"
)

// errUsage marks command line mistakes; they exit with status 2.
var errUsage = errors.New("usage")

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return 2
	}
	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "latest":
		err = cmdLatest(ctx, rest, stdout)
	case "fetch":
		err = cmdFetch(ctx, rest, stdout)
	case "summarize":
		err = cmdSummarize(ctx, rest, stdin, stdout)
	case "feedback":
		err = cmdFeedback(ctx, rest, stdout)
	case "serve":
		err = cmdServe(ctx, rest)
	case "version":
		fmt.Fprintf(stdout, "newsdigest %s (commit %s, built %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
	case "help", "-h", "-help", "--help":
		printUsage(stdout)
	default:
		log.Error().Str("command", cmd).Msg("unknown command")
		printUsage(stdout)
		return 2
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		log.Error().Err(err).Msg("invalid arguments")
		return 2
	default:
		log.Error().Err(err).Msg("command failed")
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: newsdigest <command> [flags]

Commands:
  latest     fetch the newest articles from the listing page
  fetch      extract a single article by URL
  summarize  summarize text from a file or stdin
  feedback   record or list reviewer feedback
  serve      run the review HTTP API
  version    print build information

Run "newsdigest <command> -h" for the flags of a command.
`)
}

// setupLogging switches the global level once flags are known.
func setupLogging(verbose bool) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
