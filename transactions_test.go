package stocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4p00rv/kite-stock-analysis/date"
)

func snap(d date.Date, holdings ...Holding) Snapshot {
	return Snapshot{Date: d, Holdings: holdings}
}

func pos(name string, qty int64, avgCost, ltp string) Holding {
	return Holding{Instrument: name, Quantity: qty, AvgCost: d(avgCost), LTP: d(ltp)}
}

func TestInferTransactionsFirstSnapshot(t *testing.T) {
	d1 := date.New(2025, 8, 1)
	txns := InferTransactions([]Snapshot{snap(d1, pos("TCS", 5, "3500", "3600"))})

	require.Len(t, txns, 1)
	assert.Equal(t, Buy, txns[0].Type)
	assert.Equal(t, int64(5), txns[0].Quantity)
	assert.True(t, txns[0].Price.Equal(d("3500")))
	assert.True(t, txns[0].Amount.Equal(d("-17500")), "buy amount must be a negative cash flow, got %s", txns[0].Amount)
}

func TestInferTransactionsNewPosition(t *testing.T) {
	d1, d2 := date.New(2025, 8, 1), date.New(2025, 8, 2)
	txns := InferTransactions([]Snapshot{
		snap(d1, pos("TCS", 5, "3500", "3600")),
		snap(d2, pos("TCS", 5, "3500", "3650"), pos("INFY", 10, "1500", "1520")),
	})

	require.Len(t, txns, 2)
	tx := txns[1]
	assert.Equal(t, "INFY", tx.Instrument)
	assert.Equal(t, Buy, tx.Type)
	assert.Equal(t, d2, tx.Date)
	assert.True(t, tx.Price.Equal(d("1500")))
}

func TestInferTransactionsQuantityIncrease(t *testing.T) {
	d1, d2 := date.New(2025, 8, 1), date.New(2025, 8, 2)
	// 10 @ 100 then 15 @ 110: the 5 added shares cost (110*15-100*10)/5 = 130
	txns := InferTransactions([]Snapshot{
		snap(d1, pos("TCS", 10, "100", "120")),
		snap(d2, pos("TCS", 15, "110", "125")),
	})

	require.Len(t, txns, 2)
	tx := txns[1]
	assert.Equal(t, Buy, tx.Type)
	assert.Equal(t, int64(5), tx.Quantity)
	assert.True(t, tx.Price.Equal(d("130")), "implied price = %s, want 130", tx.Price)
}

func TestInferTransactionsImpliedPriceFallback(t *testing.T) {
	d1, d2 := date.New(2025, 8, 1), date.New(2025, 8, 2)
	// average cost dropped while quantity rose: implied price is negative,
	// fall back to the new average cost
	txns := InferTransactions([]Snapshot{
		snap(d1, pos("TCS", 10, "100", "120")),
		snap(d2, pos("TCS", 12, "50", "125")),
	})

	require.Len(t, txns, 2)
	assert.True(t, txns[1].Price.Equal(d("50")), "price = %s, want fallback 50", txns[1].Price)
}

func TestInferTransactionsSellAndExit(t *testing.T) {
	d1, d2 := date.New(2025, 8, 1), date.New(2025, 8, 2)
	txns := InferTransactions([]Snapshot{
		snap(d1, pos("INFY", 10, "1500", "1520"), pos("TCS", 10, "100", "120")),
		snap(d2, pos("TCS", 4, "100", "125")),
	})

	require.Len(t, txns, 4)
	sellTCS := txns[2]
	assert.Equal(t, Sell, sellTCS.Type)
	assert.Equal(t, int64(6), sellTCS.Quantity)
	assert.True(t, sellTCS.Price.Equal(d("120")), "sell priced at previous LTP, got %s", sellTCS.Price)

	exitINFY := txns[3]
	assert.Equal(t, "INFY", exitINFY.Instrument)
	assert.Equal(t, Sell, exitINFY.Type)
	assert.Equal(t, int64(10), exitINFY.Quantity)
	assert.True(t, exitINFY.Amount.Equal(d("15200")))
}
