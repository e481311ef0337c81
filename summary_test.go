package stocks

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummarize(t *testing.T) {
	holdings := []Holding{
		{Instrument: "A", Quantity: 10, CurrentValue: d("1100"), PnL: d("100"), DayChange: d("2")},
		{Instrument: "B", Quantity: 5, CurrentValue: d("450"), PnL: d("-50"), DayChange: d("-1")},
	}
	s := Summarize(holdings)

	if s.NumHoldings != 2 {
		t.Errorf("NumHoldings = %d, want 2", s.NumHoldings)
	}
	if !s.CurrentValue.Equal(d("1550")) {
		t.Errorf("CurrentValue = %s, want 1550", s.CurrentValue)
	}
	if !s.TotalPnL.Equal(d("50")) {
		t.Errorf("TotalPnL = %s, want 50", s.TotalPnL)
	}
	// investment base reconstructed from value minus P&L
	if !s.TotalInvestment.Equal(d("1500")) {
		t.Errorf("TotalInvestment = %s, want 1500", s.TotalInvestment)
	}
	if !s.TotalPnLPercent.Round(2).Equal(d("3.33")) {
		t.Errorf("TotalPnLPercent = %s, want 3.33", s.TotalPnLPercent)
	}
	// day P&L sums per-share change times quantity: 2*10 + (-1)*5
	if !s.DayPnL.Equal(d("15")) {
		t.Errorf("DayPnL = %s, want 15", s.DayPnL)
	}
	// 15 over the current value of 1550, not over yesterday's 1535
	if !s.DayPnLPercent.Round(2).Equal(d("0.97")) {
		t.Errorf("DayPnLPercent = %s, want 0.97", s.DayPnLPercent)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.NumHoldings != 0 || !s.CurrentValue.IsZero() || !s.TotalPnLPercent.IsZero() || !s.DayPnLPercent.IsZero() {
		t.Errorf("Summarize(nil) = %+v, want all zeros", s)
	}
}
