package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	stocks "github.com/4p00rv/kite-stock-analysis"
	"github.com/4p00rv/kite-stock-analysis/date"
	"github.com/4p00rv/kite-stock-analysis/kite"
)

type scrapeCmd struct {
	loginTimeout time.Duration
	skipUpload   bool
}

func (*scrapeCmd) Name() string { return "scrape" }
func (*scrapeCmd) Synopsis() string {
	return "open the Kite dashboard, scrape holdings and save them to CSV and Google Sheets"
}
func (*scrapeCmd) Usage() string {
	return `ksa scrape [-login-timeout <duration>] [-skip-upload]

  Opens the Kite login page in a browser. Complete the login (and 2FA) there;
  the scrape continues automatically once the dashboard loads. Holdings are
  written to a timestamped CSV and, when GOOGLE_SHEET_ID and
  GOOGLE_SHEETS_CREDENTIALS are set, upserted into the spreadsheet under
  today's date. KITE_USER_ID and KITE_PASSWORD pre-fill the login form.
`
}

func (p *scrapeCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&p.loginTimeout, "login-timeout", 5*time.Minute, "How long to wait for the manual login.")
	f.BoolVar(&p.skipUpload, "skip-upload", false, "Write the CSV only, do not touch Google Sheets.")
}

func (p *scrapeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newLogger()
	loadEnv(log)

	browser, err := kite.NewBrowser(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting browser: %v\n", err)
		return subcommands.ExitFailure
	}
	defer browser.Close()

	fetcher := kite.NewFetcher(browser, log)
	fetcher.LoginTimeout = p.loginTimeout

	fmt.Println("Waiting for Kite login, complete it in the browser window...")
	if err := fetcher.Login(ctx, os.Getenv("KITE_USER_ID"), os.Getenv("KITE_PASSWORD")); err != nil {
		if errors.Is(err, kite.ErrLoginTimeout) {
			fmt.Fprintf(os.Stderr, "Error: login not completed within %s\n", p.loginTimeout)
		} else {
			fmt.Fprintf(os.Stderr, "Error during login: %v\n", err)
		}
		return subcommands.ExitFailure
	}

	holdings, skipped, err := fetcher.FetchHoldings(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scraping holdings: %v\n", err)
		return subcommands.ExitFailure
	}
	if skipped > 0 {
		log.Warn().Int("rows", skipped).Msg("some holdings rows could not be parsed")
	}

	path, err := stocks.SaveHoldingsCSV(*outputDir, holdings, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("✅ Saved %d holdings to %s\n", len(holdings), path)

	if !p.skipUpload {
		uploadIfConfigured(ctx, log, date.Today(), holdings)
	}
	return subcommands.ExitSuccess
}
