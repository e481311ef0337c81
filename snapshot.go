package stocks

import (
	"fmt"
	"slices"

	"github.com/4p00rv/kite-stock-analysis/date"
)

// Snapshot is the full set of holdings recorded for one date.
type Snapshot struct {
	Date     date.Date
	Holdings []Holding
}

// Value returns the snapshot's total market value.
func (s Snapshot) Value() float64 {
	var v float64
	for _, h := range s.Holdings {
		v += h.CurrentValue.InexactFloat64()
	}
	return v
}

// byInstrument indexes the snapshot's holdings.
func (s Snapshot) byInstrument() map[string]Holding {
	m := make(map[string]Holding, len(s.Holdings))
	for _, h := range s.Holdings {
		m[h.Instrument] = h
	}
	return m
}

// ParseSnapshots groups Holdings-sheet rows (date first, then the CSV
// columns) into per-date snapshots sorted by date. Blank rows are ignored.
func ParseSnapshots(rows [][]string) ([]Snapshot, error) {
	byDate := map[date.Date]*Snapshot{}
	for i, row := range rows {
		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}
		if len(row) != len(csvHeader)+1 {
			return nil, fmt.Errorf("sheet row %d has %d columns, want %d", i+1, len(row), len(csvHeader)+1)
		}
		d, err := date.Parse(row[0])
		if err != nil {
			return nil, fmt.Errorf("sheet row %d: %w", i+1, err)
		}
		h, err := HoldingFromRecord(row[1:])
		if err != nil {
			return nil, fmt.Errorf("sheet row %d: %w", i+1, err)
		}
		snap, ok := byDate[d]
		if !ok {
			snap = &Snapshot{Date: d}
			byDate[d] = snap
		}
		snap.Holdings = append(snap.Holdings, h)
	}

	snapshots := make([]Snapshot, 0, len(byDate))
	for _, s := range byDate {
		snapshots = append(snapshots, *s)
	}
	slices.SortFunc(snapshots, func(a, b Snapshot) int { return a.Date.Compare(b.Date) })
	return snapshots, nil
}
