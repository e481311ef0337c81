package stocks

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/4p00rv/kite-stock-analysis/date"
)

// TxType distinguishes inferred buys from sells.
type TxType string

const (
	Buy  TxType = "BUY"
	Sell TxType = "SELL"
)

// Transaction is a trade inferred from the difference between two snapshots.
// Amount is the signed cash flow from the investor's side: negative for buys,
// positive for sells.
type Transaction struct {
	Date       date.Date
	Instrument string
	Type       TxType
	Quantity   int64
	Price      decimal.Decimal
	Amount     decimal.Decimal
}

func newTransaction(d date.Date, instrument string, t TxType, qty int64, price decimal.Decimal) Transaction {
	amount := price.Mul(decimal.NewFromInt(qty))
	if t == Buy {
		amount = amount.Neg()
	}
	return Transaction{Date: d, Instrument: instrument, Type: t, Quantity: qty, Price: price, Amount: amount}
}

// InferTransactions reconstructs the trades between consecutive snapshots.
// The first snapshot is treated as buying every position at its average cost.
// Afterwards a new instrument is a buy at its average cost, a quantity
// increase is a buy of the difference at the cost implied by the average-cost
// move, and a quantity decrease or disappearance is a sell at the previous
// snapshot's LTP.
func InferTransactions(snapshots []Snapshot) []Transaction {
	if len(snapshots) == 0 {
		return nil
	}

	var txns []Transaction
	first := snapshots[0]
	for _, h := range sortedHoldings(first) {
		txns = append(txns, newTransaction(first.Date, h.Instrument, Buy, h.Quantity, h.AvgCost))
	}

	for i := 1; i < len(snapshots); i++ {
		prev, cur := snapshots[i-1], snapshots[i]
		prevBy := prev.byInstrument()

		for _, h := range sortedHoldings(cur) {
			p, held := prevBy[h.Instrument]
			switch {
			case !held:
				txns = append(txns, newTransaction(cur.Date, h.Instrument, Buy, h.Quantity, h.AvgCost))
			case h.Quantity > p.Quantity:
				delta := h.Quantity - p.Quantity
				price := impliedBuyPrice(p, h, delta)
				txns = append(txns, newTransaction(cur.Date, h.Instrument, Buy, delta, price))
			case h.Quantity < p.Quantity:
				txns = append(txns, newTransaction(cur.Date, h.Instrument, Sell, p.Quantity-h.Quantity, p.LTP))
			}
			delete(prevBy, h.Instrument)
		}
		// whatever is left in prevBy was fully exited
		for _, name := range slices.Sorted(maps.Keys(prevBy)) {
			p := prevBy[name]
			txns = append(txns, newTransaction(cur.Date, name, Sell, p.Quantity, p.LTP))
		}
	}
	return txns
}

// impliedBuyPrice solves the average-cost update for the price of the added
// shares: (cost·qty − prev_cost·prev_qty) / Δqty. A non-positive result means
// the averages are inconsistent (splits, corporate actions), so fall back to
// the new average cost.
func impliedBuyPrice(prev, cur Holding, delta int64) decimal.Decimal {
	total := cur.Invested().Sub(prev.Invested())
	price := total.Div(decimal.NewFromInt(delta))
	if price.Sign() <= 0 {
		return cur.AvgCost
	}
	return price
}

func sortedHoldings(s Snapshot) []Holding {
	hs := slices.Clone(s.Holdings)
	slices.SortFunc(hs, func(a, b Holding) int {
		switch {
		case a.Instrument < b.Instrument:
			return -1
		case a.Instrument > b.Instrument:
			return 1
		default:
			return 0
		}
	})
	return hs
}
