package stocks

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// PortfolioSummary aggregates a holdings list into portfolio-level totals.
type PortfolioSummary struct {
	TotalInvestment  decimal.Decimal
	CurrentValue     decimal.Decimal
	TotalPnL         decimal.Decimal
	TotalPnLPercent  decimal.Decimal
	DayPnL           decimal.Decimal
	DayPnLPercent    decimal.Decimal
	NumHoldings      int
}

// Summarize derives the portfolio totals from a holdings list.
// The investment base is reconstructed as current value minus total P&L, and
// both percentages are taken against their base unrounded: total P&L over the
// investment, day P&L over the current value. An empty list yields all zeros.
func Summarize(holdings []Holding) PortfolioSummary {
	s := PortfolioSummary{NumHoldings: len(holdings)}
	for _, h := range holdings {
		s.CurrentValue = s.CurrentValue.Add(h.CurrentValue)
		s.TotalPnL = s.TotalPnL.Add(h.PnL)
		s.DayPnL = s.DayPnL.Add(h.DayChange.Mul(decimal.NewFromInt(h.Quantity)))
	}
	s.TotalInvestment = s.CurrentValue.Sub(s.TotalPnL)
	if !s.TotalInvestment.IsZero() {
		s.TotalPnLPercent = s.TotalPnL.Div(s.TotalInvestment).Mul(hundred)
	}
	if !s.CurrentValue.IsZero() {
		s.DayPnLPercent = s.DayPnL.Div(s.CurrentValue).Mul(hundred)
	}
	return s
}
