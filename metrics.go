package stocks

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/4p00rv/kite-stock-analysis/date"
)

// tradingDays is the annualization factor for daily return statistics.
const tradingDays = 252

// XIRR computes the annualized internal rate of return of the inferred cash
// flows plus the terminal portfolio value on end. It tries Newton iteration
// first and falls back to bisection. No transactions yields zero.
func XIRR(txns []Transaction, terminalValue float64, end date.Date) float64 {
	if len(txns) == 0 {
		return 0
	}
	start := txns[0].Date
	for _, tx := range txns {
		if tx.Date.Before(start) {
			start = tx.Date
		}
	}
	type flow struct{ t, amount float64 }
	flows := make([]flow, 0, len(txns)+1)
	for _, tx := range txns {
		flows = append(flows, flow{float64(tx.Date.Sub(start)) / 365.0, tx.Amount.InexactFloat64()})
	}
	flows = append(flows, flow{float64(end.Sub(start)) / 365.0, terminalValue})

	npv := func(r float64) float64 {
		var v float64
		for _, f := range flows {
			v += f.amount / math.Pow(1+r, f.t)
		}
		return v
	}
	dnpv := func(r float64) float64 {
		var v float64
		for _, f := range flows {
			v -= f.t * f.amount / math.Pow(1+r, f.t+1)
		}
		return v
	}

	r := 0.1
	for i := 0; i < 100; i++ {
		f, df := npv(r), dnpv(r)
		if df == 0 {
			break
		}
		next := r - f/df
		if next <= -1 || math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		if math.Abs(next-r) < 1e-9 {
			return next
		}
		r = next
	}

	// bisection on a wide bracket
	lo, hi := -0.9999, 10.0
	flo, fhi := npv(lo), npv(hi)
	if flo*fhi > 0 {
		return 0
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		fm := npv(mid)
		if math.Abs(fm) < 1e-9 || hi-lo < 1e-9 {
			return mid
		}
		if flo*fm < 0 {
			hi = mid
		} else {
			lo, flo = mid, fm
		}
	}
	return (lo + hi) / 2
}

// TWR chains the series' daily returns into the cumulative time-weighted
// return. An empty series yields zero.
func TWR(series []DailyValue) float64 {
	if len(series) == 0 {
		return 0
	}
	growth := 1.0
	for _, dv := range series {
		growth *= 1 + dv.DailyReturn
	}
	return growth - 1
}

// AnnualizeReturn converts a cumulative return over the given number of days
// into its annual equivalent, (1+r)^(365/days) − 1.
func AnnualizeReturn(r float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	if 1+r <= 0 {
		return -1
	}
	return math.Pow(1+r, 365.0/float64(days)) - 1
}

// SharpeRatio annualizes the mean daily excess return over its standard
// deviation. riskFree is the annual risk-free rate. Zero volatility or an
// empty input yields zero.
func SharpeRatio(daily []float64, riskFree float64) float64 {
	if len(daily) < 2 {
		return 0
	}
	rf := riskFree / tradingDays
	sd := stat.StdDev(daily, nil)
	if sd == 0 {
		return 0
	}
	return (stat.Mean(daily, nil) - rf) / sd * math.Sqrt(tradingDays)
}

// SortinoRatio is SharpeRatio with the deviation taken over below-risk-free
// returns only. No downside observations yields zero.
func SortinoRatio(daily []float64, riskFree float64) float64 {
	if len(daily) == 0 {
		return 0
	}
	rf := riskFree / tradingDays
	var sumSq float64
	var n int
	for _, r := range daily {
		if r < rf {
			d := r - rf
			sumSq += d * d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	dd := math.Sqrt(sumSq / float64(n))
	if dd == 0 {
		return 0
	}
	return (stat.Mean(daily, nil) - rf) / dd * math.Sqrt(tradingDays)
}

// Beta regresses portfolio daily returns against benchmark daily returns over
// their common prefix, cov(p,b)/var(b). Too little data or a flat benchmark
// yields zero.
func Beta(portfolio, benchmark []float64) float64 {
	n := min(len(portfolio), len(benchmark))
	if n < 2 {
		return 0
	}
	p, b := portfolio[:n], benchmark[:n]
	v := stat.Variance(b, nil)
	if v == 0 {
		return 0
	}
	return stat.Covariance(p, b, nil) / v
}

// Alpha is the portfolio's annual excess return not explained by benchmark
// exposure: (Rp−Rf) − β(Rb−Rf).
func Alpha(portfolioReturn, benchmarkReturn, beta, riskFree float64) float64 {
	return (portfolioReturn - riskFree) - beta*(benchmarkReturn-riskFree)
}

// MaxDrawdown returns the deepest peak-to-trough fall of the value series as
// a positive fraction of the peak, plus the trough date.
func MaxDrawdown(series []DailyValue) (float64, date.Date) {
	var peak, worst float64
	var trough date.Date
	for _, dv := range series {
		if dv.TotalValue > peak {
			peak = dv.TotalValue
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - dv.TotalValue) / peak; dd > worst {
			worst = dd
			trough = dv.Date
		}
	}
	return worst, trough
}

// DailyVaR95 is the 5th percentile of the daily returns, i.e. the loss
// threshold exceeded on the worst 5% of days. Empty input yields zero.
func DailyVaR95(daily []float64) float64 {
	if len(daily) == 0 {
		return 0
	}
	sorted := slices.Clone(daily)
	slices.Sort(sorted)
	return stat.Quantile(0.05, stat.Empirical, sorted, nil)
}

// Concentration computes the Herfindahl index (sum of squared weights) and
// the combined weight of the five largest positions.
func Concentration(weights []float64) (hhi, top5 float64) {
	sorted := slices.Clone(weights)
	slices.SortFunc(sorted, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		default:
			return 0
		}
	})
	for i, w := range sorted {
		hhi += w * w
		if i < 5 {
			top5 += w
		}
	}
	return hhi, top5
}
