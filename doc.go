// Package stocks provides the core types and computations for capturing and
// analyzing a Zerodha Kite equity portfolio. It is designed around daily
// snapshots: each scrape of the Kite dashboard yields one dated set of
// holdings, and every analysis is derived from the accumulated history.
//
// The core functionalities include:
//   - Holdings Model: Parsing scraped dashboard rows into validated holdings
//     and aggregating them into portfolio-level summaries.
//   - Persistence Formats: Writing and reading the timestamped CSV exports
//     and the dated spreadsheet rows that accumulate the history.
//   - Transaction Inference: Reconstructing buys and sells from the
//     differences between consecutive snapshots.
//   - Performance Metrics: XIRR, time-weighted return, Sharpe, Sortino,
//     beta, alpha, drawdown, value-at-risk and concentration measures over
//     the reconstructed daily value series.
//
// This package serves as the foundational logic for the `ksa` command-line
// tool; browser scraping, market data and spreadsheet access live in their
// own subpackages.
package stocks
