package stocks

import (
	"slices"
	"time"

	"github.com/4p00rv/kite-stock-analysis/date"
)

// RollingWindows are the look-back spans, in days, of the rolling-return
// report.
var RollingWindows = []int{30, 90, 365}

// RollingReturn holds one date's windowed returns. A window missing from the
// map extends before the start of the series.
type RollingReturn struct {
	Date    date.Date
	Windows map[int]float64
}

// RollingReturns computes look-back returns over the daily value series for
// each of the given windows.
func RollingReturns(series []DailyValue, windows ...int) []RollingReturn {
	if len(windows) == 0 {
		windows = RollingWindows
	}
	out := make([]RollingReturn, 0, len(series))
	for i, dv := range series {
		rr := RollingReturn{Date: dv.Date, Windows: map[int]float64{}}
		for _, w := range windows {
			j := i - w
			if j < 0 || series[j].TotalValue <= 0 {
				continue
			}
			rr.Windows[w] = dv.TotalValue/series[j].TotalValue - 1
		}
		out = append(out, rr)
	}
	return out
}

// MonthlyRow is one calendar year of monthly returns plus the year-to-date
// compound. Has marks the months covered by the series.
type MonthlyRow struct {
	Year   int
	Months [12]float64
	Has    [12]bool
	YTD    float64
}

// MonthlyReturns pivots the daily series into per-month compound returns by
// calendar year, oldest year first.
func MonthlyReturns(series []DailyValue) []MonthlyRow {
	type key struct {
		year  int
		month time.Month
	}
	growth := map[key]float64{}
	for _, dv := range series {
		k := key{dv.Date.Year(), dv.Date.Month()}
		g, ok := growth[k]
		if !ok {
			g = 1
		}
		growth[k] = g * (1 + dv.DailyReturn)
	}

	byYear := map[int]*MonthlyRow{}
	for k, g := range growth {
		row, ok := byYear[k.year]
		if !ok {
			row = &MonthlyRow{Year: k.year, YTD: 1}
			byYear[k.year] = row
		}
		row.Months[k.month-1] = g - 1
		row.Has[k.month-1] = true
		row.YTD *= g
	}

	rows := make([]MonthlyRow, 0, len(byYear))
	for _, row := range byYear {
		row.YTD -= 1
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, func(a, b MonthlyRow) int { return a.Year - b.Year })
	return rows
}
