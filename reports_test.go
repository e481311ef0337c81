package stocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4p00rv/kite-stock-analysis/date"
)

func TestRollingReturns(t *testing.T) {
	start := date.New(2025, 1, 1)
	series := make([]DailyValue, 40)
	for i := range series {
		series[i] = DailyValue{Date: start.Add(i), TotalValue: 100 + float64(i)}
	}

	out := RollingReturns(series, 30)
	require.Len(t, out, 40)

	_, ok := out[10].Windows[30]
	assert.False(t, ok, "window extends before the series start")

	r, ok := out[35].Windows[30]
	require.True(t, ok)
	assert.InDelta(t, 135.0/105.0-1, r, 1e-9)
}

func TestMonthlyReturns(t *testing.T) {
	series := []DailyValue{
		{Date: date.New(2025, 1, 30), DailyReturn: 0},
		{Date: date.New(2025, 1, 31), DailyReturn: 0.10},
		{Date: date.New(2025, 2, 1), DailyReturn: 0.10},
		{Date: date.New(2025, 2, 2), DailyReturn: -0.05},
	}
	rows := MonthlyReturns(series)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, 2025, row.Year)
	assert.True(t, row.Has[0])
	assert.True(t, row.Has[1])
	assert.False(t, row.Has[2])
	assert.InDelta(t, 0.10, row.Months[0], 1e-9)
	assert.InDelta(t, 1.1*0.95-1, row.Months[1], 1e-9)
	assert.InDelta(t, 1.1*1.1*0.95-1, row.YTD, 1e-9)
}
