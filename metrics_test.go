package stocks

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/4p00rv/kite-stock-analysis/date"
)

func TestXIRRSingleFlow(t *testing.T) {
	// 100000 invested, worth 110000 one year later: exactly 10%
	start := date.New(2024, 1, 1)
	txns := []Transaction{newTransaction(start, "TCS", Buy, 100, d("1000"))}

	got := XIRR(txns, 110000, start.Add(365))
	assert.InDelta(t, 0.10, got, 1e-4)
}

func TestXIRRMultipleFlows(t *testing.T) {
	start := date.New(2024, 1, 1)
	txns := []Transaction{
		newTransaction(start, "TCS", Buy, 100, d("1000")),
		newTransaction(start.Add(182), "INFY", Buy, 50, d("1000")),
	}
	got := XIRR(txns, 165000, start.Add(365))
	// 150000 in, 165000 out: rate is positive and below 15%
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 0.15)
}

func TestXIRREmpty(t *testing.T) {
	assert.Zero(t, XIRR(nil, 1000, date.New(2025, 1, 1)))
}

func TestTWRAndAnnualize(t *testing.T) {
	series := []DailyValue{
		{TotalValue: 100, DailyReturn: 0},
		{TotalValue: 110, DailyReturn: 0.10},
		{TotalValue: 121, DailyReturn: 0.10},
	}
	assert.InDelta(t, 0.21, TWR(series), 1e-9)

	assert.InDelta(t, 0.21, AnnualizeReturn(0.21, 365), 1e-9)
	// half a year at 10% compounds past 20% annualized
	assert.InDelta(t, math.Pow(1.1, 2)-1, AnnualizeReturn(0.10, 182), 2e-3)
	assert.Zero(t, AnnualizeReturn(0.10, 0))
}

func TestSharpeRatio(t *testing.T) {
	up := []float64{0.01, 0.02, 0.015, 0.005, 0.01}
	assert.Greater(t, SharpeRatio(up, 0.07), 0.0)

	flat := []float64{0.01, 0.01, 0.01}
	assert.Zero(t, SharpeRatio(flat, 0.07), "zero volatility must not divide")
	assert.Zero(t, SharpeRatio(nil, 0.07))
}

func TestSortinoRatio(t *testing.T) {
	mixed := []float64{0.02, -0.01, 0.015, -0.005, 0.01}
	assert.NotZero(t, SortinoRatio(mixed, 0.07))

	allUp := []float64{0.01, 0.02, 0.03}
	assert.Zero(t, SortinoRatio(allUp, 0.0), "no downside observations")
	assert.Zero(t, SortinoRatio(nil, 0.07))
}

func TestBeta(t *testing.T) {
	bench := []float64{0.01, -0.02, 0.015, 0.005, -0.01}

	double := make([]float64, len(bench))
	for i, r := range bench {
		double[i] = 2 * r
	}
	assert.InDelta(t, 2.0, Beta(double, bench), 1e-9)
	assert.InDelta(t, 1.0, Beta(bench, bench), 1e-9)

	assert.Zero(t, Beta(bench, []float64{0.01, 0.01, 0.01, 0.01, 0.01}), "flat benchmark has no variance")
	assert.Zero(t, Beta(nil, bench))
}

func TestAlpha(t *testing.T) {
	// Rp 15%, Rb 10%, beta 0.5, Rf 4%: (0.15-0.04) - 0.5*(0.10-0.04) = 0.08
	assert.InDelta(t, 0.08, Alpha(0.15, 0.10, 0.5, 0.04), 1e-9)
}

func TestMaxDrawdown(t *testing.T) {
	series := []DailyValue{
		{Date: date.New(2025, 1, 1), TotalValue: 100},
		{Date: date.New(2025, 1, 2), TotalValue: 110},
		{Date: date.New(2025, 1, 3), TotalValue: 88},
		{Date: date.New(2025, 1, 4), TotalValue: 95},
	}
	dd, trough := MaxDrawdown(series)
	assert.InDelta(t, 0.2, dd, 1e-9) // 22 off a 110 peak
	assert.Equal(t, date.New(2025, 1, 3), trough)

	dd, _ = MaxDrawdown(nil)
	assert.Zero(t, dd)
}

func TestDailyVaR95(t *testing.T) {
	returns := make([]float64, 20)
	for i := range returns {
		returns[i] = float64(i-10) / 100 // -0.10 .. 0.09
	}
	v := DailyVaR95(returns)
	assert.Less(t, v, 0.0, "5th percentile of a spread including losses is negative")
	assert.Zero(t, DailyVaR95(nil))
}

func TestConcentration(t *testing.T) {
	hhi, top5 := Concentration([]float64{0.5, 0.5})
	assert.InDelta(t, 0.5, hhi, 1e-9)
	assert.InDelta(t, 1.0, top5, 1e-9)

	weights := []float64{0.3, 0.2, 0.15, 0.1, 0.1, 0.05, 0.05, 0.05}
	hhi, top5 = Concentration(weights)
	assert.InDelta(t, 0.85, top5, 1e-9)
	assert.Greater(t, hhi, 1.0/float64(len(weights)), "HHI exceeds the equal-weight floor")
}
