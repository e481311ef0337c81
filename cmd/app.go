// Package cmd implements the CLI application to capture and analyze Kite
// holdings.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	stocks "github.com/4p00rv/kite-stock-analysis"
	"github.com/4p00rv/kite-stock-analysis/date"
	"github.com/4p00rv/kite-stock-analysis/sheets"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&scrapeCmd{}, "capture")
	c.Register(&uploadCmd{}, "capture")

	c.Register(&analyzeCmd{}, "analysis")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var outputDir = flag.String("output-dir", "output", "Directory for holdings CSV exports")
var envFile = flag.String("env-file", ".env", "Env file with Kite credentials and Google Sheets settings")
var verbose = flag.Bool("v", false, "Enable debug logging")

// loadEnv loads the env file. Variables already set in the environment win;
// a missing file is fine.
func loadEnv(log zerolog.Logger) {
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("file", *envFile).Msg("cannot load env file")
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// uploadIfConfigured pushes holdings and their summary to Google Sheets when
// the env variables are set. Failures are warnings: the CSV on disk is the
// source of truth and must never be lost to a sheets hiccup.
func uploadIfConfigured(ctx context.Context, log zerolog.Logger, d date.Date, holdings []stocks.Holding) {
	client, configured, err := sheets.FromEnv(ctx, log)
	if !configured {
		fmt.Println("Google Sheets not configured, skipping upload")
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("sheets upload skipped")
		return
	}

	n, err := client.UploadHoldings(ctx, d, holdings)
	if err != nil {
		log.Warn().Err(err).Msg("holdings upload failed")
		return
	}
	if err := client.UploadSummary(ctx, d, stocks.Summarize(holdings)); err != nil {
		log.Warn().Err(err).Msg("summary upload failed")
		return
	}
	fmt.Printf("✅ Uploaded %d holdings rows to Google Sheets for %s\n", n, d)
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when rendering fails.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
