package stocks

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultExchange is assumed when the scraped row does not carry one.
const DefaultExchange = "NSE"

// Holding is a single instrument line from the Kite holdings table.
type Holding struct {
	Instrument       string
	Quantity         int64
	AvgCost          decimal.Decimal
	LTP              decimal.Decimal
	CurrentValue     decimal.Decimal
	PnL              decimal.Decimal
	PnLPercent       decimal.Decimal
	DayChange        decimal.Decimal
	DayChangePercent decimal.Decimal
	Exchange         string
}

// Invested returns the cost basis of the position.
func (h Holding) Invested() decimal.Decimal {
	return h.AvgCost.Mul(decimal.NewFromInt(h.Quantity))
}

// INR renders an amount as an Indian rupee string for reports.
func INR(v decimal.Decimal) string {
	return money.New(v.Shift(2).Round(0).IntPart(), money.INR).Display()
}
