package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	stocks "github.com/4p00rv/kite-stock-analysis"
	"github.com/4p00rv/kite-stock-analysis/date"
)

type uploadCmd struct{}

func (*uploadCmd) Name() string { return "upload" }
func (*uploadCmd) Synopsis() string {
	return "re-upload an existing holdings CSV to Google Sheets"
}
func (*uploadCmd) Usage() string {
	return `ksa upload <holdings-csv>

  Reads a CSV produced by scrape and upserts it into the spreadsheet. The
  capture date is taken from the filename (holdings_YYYYMMDD_HHMMSS.csv),
  falling back to today. Re-running for the same date replaces its rows.
`
}

func (*uploadCmd) SetFlags(*flag.FlagSet) {}

func (p *uploadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one CSV file argument")
		return subcommands.ExitUsageError
	}
	log := newLogger()
	loadEnv(log)

	path := f.Arg(0)
	holdings, err := stocks.LoadHoldingsCSV(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		return subcommands.ExitFailure
	}

	d, ok := stocks.DateFromFilename(path)
	if !ok {
		d = date.Today()
		log.Warn().Str("file", path).Msg("no date in filename, using today")
	}

	uploadIfConfigured(ctx, log, d, holdings)
	return subcommands.ExitSuccess
}
