package stocks

import (
	"fmt"
	"slices"

	"github.com/4p00rv/kite-stock-analysis/date"
)

// PriceSeries maps trading days to closing prices for one ticker.
type PriceSeries map[date.Date]float64

// DailyValue is one day of the reconstructed portfolio value series.
type DailyValue struct {
	Date        date.Date
	TotalValue  float64
	Invested    float64
	DailyReturn float64
}

// AnalysisResult carries every metric computed over the snapshot history.
type AnalysisResult struct {
	Start date.Date
	End   date.Date
	Days  int

	CurrentValue float64
	XIRR         float64
	TWR          float64 // annualized
	BenchmarkTWR float64 // annualized
	Alpha        float64
	Beta         float64
	Sharpe       float64
	Sortino      float64

	MaxDrawdown     float64
	MaxDrawdownDate date.Date
	VaR95           float64 // daily loss threshold in money terms, negative
	VaR95Pct        float64

	Herfindahl float64
	Top5Weight float64

	RiskFree float64
	Warnings []string
}

// BuildDailySeries reconstructs the portfolio's value for every calendar day
// between the first and last snapshot. Positions are carried forward from the
// latest snapshot on or before each day; each instrument is priced from
// market data when a close exists, with the last known price (initially the
// snapshot's LTP) carried over gaps.
func BuildDailySeries(snapshots []Snapshot, prices map[string]PriceSeries) []DailyValue {
	if len(snapshots) == 0 {
		return nil
	}
	first, last := snapshots[0].Date, snapshots[len(snapshots)-1].Date

	lastPrice := map[string]float64{}
	series := make([]DailyValue, 0, last.Sub(first)+1)
	idx := 0
	for day := first; !day.After(last); day = day.Add(1) {
		for idx+1 < len(snapshots) && !snapshots[idx+1].Date.After(day) {
			idx++
		}
		snap := snapshots[idx]

		var value, invested float64
		for _, h := range snap.Holdings {
			if p, ok := prices[h.Instrument][day]; ok && p > 0 {
				lastPrice[h.Instrument] = p
			}
			price, ok := lastPrice[h.Instrument]
			if !ok {
				price = h.LTP.InexactFloat64()
			}
			value += price * float64(h.Quantity)
			invested += h.Invested().InexactFloat64()
		}

		dv := DailyValue{Date: day, TotalValue: value, Invested: invested}
		if n := len(series); n > 0 && series[n-1].TotalValue > 0 {
			dv.DailyReturn = value/series[n-1].TotalValue - 1
		}
		series = append(series, dv)
	}
	return series
}

// benchmarkSeries rebuilds the benchmark closes on the same calendar days as
// the portfolio series, carrying the last close over non-trading days.
func benchmarkSeries(series []DailyValue, closes PriceSeries) []float64 {
	if len(closes) == 0 {
		return nil
	}
	values := make([]float64, 0, len(series))
	last := 0.0
	for _, dv := range series {
		if p, ok := closes[dv.Date]; ok && p > 0 {
			last = p
		}
		values = append(values, last)
	}
	return values
}

func dailyReturns(values []float64) []float64 {
	var rets []float64
	for i := 1; i < len(values); i++ {
		if values[i-1] > 0 {
			rets = append(rets, values[i]/values[i-1]-1)
		} else {
			rets = append(rets, 0)
		}
	}
	return rets
}

// Analyze computes the full metric set over the snapshot history. prices maps
// instruments to their daily closes and benchmark holds the index closes;
// either may be empty, degrading the affected metrics to zero with a warning.
func Analyze(snapshots []Snapshot, prices map[string]PriceSeries, benchmark PriceSeries, riskFree float64) (AnalysisResult, []DailyValue, []Transaction, error) {
	if len(snapshots) == 0 {
		return AnalysisResult{}, nil, nil, fmt.Errorf("no snapshots to analyze")
	}

	series := BuildDailySeries(snapshots, prices)
	txns := InferTransactions(snapshots)
	latest := snapshots[len(snapshots)-1]

	res := AnalysisResult{
		Start:        snapshots[0].Date,
		End:          latest.Date,
		CurrentValue: latest.Value(),
		RiskFree:     riskFree,
	}
	res.Days = res.End.Sub(res.Start)

	res.XIRR = XIRR(txns, res.CurrentValue, res.End)
	res.TWR = AnnualizeReturn(TWR(series[1:]), res.Days)

	portRets := make([]float64, 0, len(series))
	for _, dv := range series[1:] {
		portRets = append(portRets, dv.DailyReturn)
	}
	res.Sharpe = SharpeRatio(portRets, riskFree)
	res.Sortino = SortinoRatio(portRets, riskFree)

	if bench := benchmarkSeries(series, benchmark); len(bench) > 1 && bench[0] > 0 {
		benchRets := dailyReturns(bench)
		res.Beta = Beta(portRets, benchRets)
		res.BenchmarkTWR = AnnualizeReturn(bench[len(bench)-1]/bench[0]-1, res.Days)
		res.Alpha = Alpha(res.TWR, res.BenchmarkTWR, res.Beta, riskFree)
	} else {
		res.Warnings = append(res.Warnings, "benchmark prices unavailable: beta and alpha not computed")
	}

	res.MaxDrawdown, res.MaxDrawdownDate = MaxDrawdown(series)
	res.VaR95Pct = DailyVaR95(portRets) * 100
	res.VaR95 = DailyVaR95(portRets) * res.CurrentValue

	res.Herfindahl, res.Top5Weight = Concentration(Weights(latest.Holdings))

	if len(series) < 30 {
		res.Warnings = append(res.Warnings, "fewer than 30 daily observations: risk metrics are noisy")
	}
	return res, series, txns, nil
}

// Weights returns each holding's share of the total market value.
func Weights(holdings []Holding) []float64 {
	var total float64
	values := make([]float64, len(holdings))
	for i, h := range holdings {
		values[i] = h.CurrentValue.InexactFloat64()
		total += values[i]
	}
	if total == 0 {
		return nil
	}
	for i := range values {
		values[i] /= total
	}
	return values
}

// Allocation is one slice of the portfolio by market value.
type Allocation struct {
	Name   string
	Value  float64
	Weight float64
}

// TopAllocations returns the n largest holdings by market value plus an
// "Others" bucket aggregating the rest, each with its portfolio weight.
func TopAllocations(holdings []Holding, n int) []Allocation {
	var total float64
	for _, h := range holdings {
		total += h.CurrentValue.InexactFloat64()
	}
	if total == 0 {
		return nil
	}
	sorted := slices.Clone(holdings)
	slices.SortFunc(sorted, func(a, b Holding) int { return b.CurrentValue.Cmp(a.CurrentValue) })

	var out []Allocation
	var others float64
	for i, h := range sorted {
		v := h.CurrentValue.InexactFloat64()
		if i < n {
			out = append(out, Allocation{Name: h.Instrument, Value: v, Weight: v / total})
		} else {
			others += v
		}
	}
	if others > 0 {
		out = append(out, Allocation{Name: "Others", Value: others, Weight: others / total})
	}
	return out
}
