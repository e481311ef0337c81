package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	stocks "github.com/4p00rv/kite-stock-analysis"
	"github.com/4p00rv/kite-stock-analysis/marketdata"
	"github.com/4p00rv/kite-stock-analysis/renderer"
	"github.com/4p00rv/kite-stock-analysis/sheets"
)

type analyzeCmd struct {
	riskFree   float64
	skipUpload bool
}

func (*analyzeCmd) Name() string { return "analyze" }
func (*analyzeCmd) Synopsis() string {
	return "compute portfolio metrics from the accumulated holdings history"
}
func (*analyzeCmd) Usage() string {
	return `ksa analyze [-risk-free <rate>] [-skip-upload]

  Reads every dated holdings row from the spreadsheet, reconstructs the
  transaction history and daily value series, prices it against NSE closes,
  and computes XIRR, TWR, Sharpe, Sortino, beta, alpha, drawdown, VaR and
  concentration. Results are printed as a report and written back to the
  analysis tabs of the spreadsheet.
`
}

func (p *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&p.riskFree, "risk-free", 0.07, "Annual risk-free rate for Sharpe/Sortino/alpha.")
	f.BoolVar(&p.skipUpload, "skip-upload", false, "Print the report only, do not write analysis tabs.")
}

func (p *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newLogger()
	loadEnv(log)

	client, configured, err := sheets.FromEnv(ctx, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to Google Sheets: %v\n", err)
		return subcommands.ExitFailure
	}
	if !configured {
		fmt.Fprintln(os.Stderr, "Error: analyze needs the holdings history, set GOOGLE_SHEET_ID and GOOGLE_SHEETS_CREDENTIALS")
		return subcommands.ExitFailure
	}

	rows, err := client.HoldingRows(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading holdings history: %v\n", err)
		return subcommands.ExitFailure
	}
	snapshots, err := stocks.ParseSnapshots(rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing holdings history: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(snapshots) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no holdings history yet, run scrape first")
		return subcommands.ExitFailure
	}

	md := marketdata.NewClient(log)
	from, to := snapshots[0].Date, snapshots[len(snapshots)-1].Date
	var all []stocks.Holding
	for _, s := range snapshots {
		all = append(all, s.Holdings...)
	}
	prices := md.HoldingsCloses(ctx, all, from, to)
	benchmark := md.BenchmarkCloses(ctx, from, to)

	result, series, _, err := stocks.Analyze(snapshots, prices, benchmark, p.riskFree)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing history: %v\n", err)
		return subcommands.ExitFailure
	}

	latest := snapshots[len(snapshots)-1]
	if !p.skipUpload {
		client.UploadAnalysis(ctx, result, series, latest.Holdings, benchmark)
		fmt.Println("✅ Analysis tabs updated")
	}

	printMarkdown(renderer.AnalysisMarkdown(result, stocks.TopAllocations(latest.Holdings, 10)))
	return subcommands.ExitSuccess
}
