package sheets

import (
	"context"
	"fmt"
	"math"

	stocks "github.com/4p00rv/kite-stock-analysis"
	"github.com/4p00rv/kite-stock-analysis/date"
)

var summaryHeader = []string{
	"date", "total_investment", "current_value", "total_pnl",
	"total_pnl_percent", "day_pnl", "day_pnl_percent", "num_holdings",
}

// UploadHoldings upserts the holdings rows under the given date: existing
// rows for that date are deleted first, so the last run of a day wins.
func (c *Client) UploadHoldings(ctx context.Context, d date.Date, holdings []stocks.Holding) (int, error) {
	header := append([]string{"date"}, stocks.CSVHeader()...)
	id, err := c.ensureTab(ctx, HoldingsTab, header)
	if err != nil {
		return 0, err
	}
	if err := c.deleteRowsForDate(ctx, HoldingsTab, id, d.String()); err != nil {
		return 0, err
	}

	rows := make([][]any, 0, len(holdings))
	for _, h := range holdings {
		rows = append(rows, []any{
			d.String(), h.Instrument, h.Quantity,
			h.AvgCost.InexactFloat64(), h.LTP.InexactFloat64(), h.CurrentValue.InexactFloat64(),
			h.PnL.InexactFloat64(), h.PnLPercent.InexactFloat64(),
			h.DayChange.InexactFloat64(), h.DayChangePercent.InexactFloat64(), h.Exchange,
		})
	}
	if len(rows) > 0 {
		if err := c.svc.Append(ctx, rng(HoldingsTab, "A1"), rows); err != nil {
			return 0, fmt.Errorf("appending holdings: %w", err)
		}
	}
	if err := c.decorateDateTab(ctx, HoldingsTab, id, len(header)); err != nil {
		c.log.Warn().Err(err).Msg("holdings formatting failed")
	}
	return len(rows), nil
}

// UploadSummary upserts the one summary row for the date.
func (c *Client) UploadSummary(ctx context.Context, d date.Date, s stocks.PortfolioSummary) error {
	id, err := c.ensureTab(ctx, SummaryTab, summaryHeader)
	if err != nil {
		return err
	}
	if err := c.deleteRowsForDate(ctx, SummaryTab, id, d.String()); err != nil {
		return err
	}
	row := []any{
		d.String(),
		s.TotalInvestment.InexactFloat64(), s.CurrentValue.InexactFloat64(),
		s.TotalPnL.InexactFloat64(), s.TotalPnLPercent.InexactFloat64(),
		s.DayPnL.InexactFloat64(), s.DayPnLPercent.InexactFloat64(),
		s.NumHoldings,
	}
	if err := c.svc.Append(ctx, rng(SummaryTab, "A1"), [][]any{row}); err != nil {
		return fmt.Errorf("appending summary: %w", err)
	}
	if err := c.decorateDateTab(ctx, SummaryTab, id, len(summaryHeader)); err != nil {
		c.log.Warn().Err(err).Msg("summary formatting failed")
	}
	return nil
}

// HoldingRows reads back every dated holdings row for analysis.
func (c *Client) HoldingRows(ctx context.Context) ([][]string, error) {
	rows, err := c.svc.Values(ctx, rng(HoldingsTab, "A2:K"))
	if err != nil {
		return nil, fmt.Errorf("reading holdings history: %w", err)
	}
	return rows, nil
}

// UploadDailyValues rewrites the daily series tab: portfolio value, the
// benchmark rebased to 100 at the series start, and the running drawdown.
func (c *Client) UploadDailyValues(ctx context.Context, series []stocks.DailyValue, benchmark stocks.PriceSeries) error {
	header := []string{"date", "portfolio_value", "benchmark", "drawdown_pct"}

	var base, lastBench, peak float64
	rows := make([][]any, 0, len(series))
	for _, dv := range series {
		if p, ok := benchmark[dv.Date]; ok && p > 0 {
			if base == 0 {
				base = p
			}
			lastBench = p
		}
		if dv.TotalValue > peak {
			peak = dv.TotalValue
		}
		row := []any{dv.Date.String(), round2(dv.TotalValue)}
		if base > 0 {
			row = append(row, round2(lastBench/base*100))
		} else {
			row = append(row, "")
		}
		if peak > 0 {
			row = append(row, round2((peak-dv.TotalValue)/peak*100))
		} else {
			row = append(row, "")
		}
		rows = append(rows, row)
	}
	_, err := c.replaceTab(ctx, DailyValuesTab, header, rows)
	return err
}

// UploadRollingReturns rewrites the windowed-return tab. Cells stay blank
// while the window extends before the series.
func (c *Client) UploadRollingReturns(ctx context.Context, rolling []stocks.RollingReturn) error {
	header := []string{"date", "return_30d_pct", "return_90d_pct", "return_1y_pct"}
	rows := make([][]any, 0, len(rolling))
	for _, rr := range rolling {
		row := []any{rr.Date.String()}
		for _, w := range stocks.RollingWindows {
			if r, ok := rr.Windows[w]; ok {
				row = append(row, round2(r*100))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	_, err := c.replaceTab(ctx, RollingReturnsTab, header, rows)
	return err
}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// UploadMonthlyReturns rewrites the year-by-month pivot.
func (c *Client) UploadMonthlyReturns(ctx context.Context, monthly []stocks.MonthlyRow) error {
	header := append(append([]string{"year"}, monthNames...), "ytd_pct")
	rows := make([][]any, 0, len(monthly))
	for _, m := range monthly {
		row := []any{m.Year}
		for i := range m.Months {
			if m.Has[i] {
				row = append(row, round2(m.Months[i]*100))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, round2(m.YTD*100))
		rows = append(rows, row)
	}
	_, err := c.replaceTab(ctx, MonthlyReturnsTab, header, rows)
	return err
}

// UploadAllocation rewrites the top-10-plus-Others weight tab.
func (c *Client) UploadAllocation(ctx context.Context, holdings []stocks.Holding) error {
	header := []string{"instrument", "value", "weight_pct"}
	allocs := stocks.TopAllocations(holdings, 10)
	rows := make([][]any, 0, len(allocs))
	for _, a := range allocs {
		rows = append(rows, []any{a.Name, round2(a.Value), round2(a.Weight * 100)})
	}
	_, err := c.replaceTab(ctx, AllocationTab, header, rows)
	return err
}

// UploadMetrics rewrites the single-row metrics tab.
func (c *Client) UploadMetrics(ctx context.Context, res stocks.AnalysisResult) error {
	header := []string{
		"as_of", "current_value", "xirr_pct", "twr_pct", "benchmark_twr_pct",
		"alpha_pct", "beta", "sharpe", "sortino",
		"max_drawdown_pct", "var_95_pct", "herfindahl", "top5_weight_pct",
	}
	row := []any{
		res.End.String(), round2(res.CurrentValue),
		round2(res.XIRR * 100), round2(res.TWR * 100), round2(res.BenchmarkTWR * 100),
		round2(res.Alpha * 100), round4(res.Beta), round4(res.Sharpe), round4(res.Sortino),
		round2(res.MaxDrawdown * 100), round4(res.VaR95Pct),
		round4(res.Herfindahl), round2(res.Top5Weight * 100),
	}
	_, err := c.replaceTab(ctx, MetricsTab, header, [][]any{row})
	return err
}

// UploadAnalysis writes every analysis tab and refreshes charts and the date
// slicer. Individual tab failures are logged and do not stop the rest.
func (c *Client) UploadAnalysis(ctx context.Context, res stocks.AnalysisResult, series []stocks.DailyValue, holdings []stocks.Holding, benchmark stocks.PriceSeries) {
	steps := []struct {
		name string
		run  func() error
	}{
		{DailyValuesTab, func() error { return c.UploadDailyValues(ctx, series, benchmark) }},
		{RollingReturnsTab, func() error { return c.UploadRollingReturns(ctx, stocks.RollingReturns(series)) }},
		{MonthlyReturnsTab, func() error { return c.UploadMonthlyReturns(ctx, stocks.MonthlyReturns(series)) }},
		{AllocationTab, func() error { return c.UploadAllocation(ctx, holdings) }},
		{MetricsTab, func() error { return c.UploadMetrics(ctx, res) }},
		{"charts", func() error { return c.EnsureCharts(ctx) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			c.log.Warn().Err(err).Str("tab", step.name).Msg("analysis upload step failed")
		}
	}
}

func round2(v float64) float64 { return roundTo(v, 100) }
func round4(v float64) float64 { return roundTo(v, 10000) }

func roundTo(v, scale float64) float64 { return math.Round(v*scale) / scale }
