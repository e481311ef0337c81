package stocks

import (
	"testing"

	"github.com/4p00rv/kite-stock-analysis/date"
)

func sheetRow(d, instrument, qty, avgCost, ltp, curVal string) []string {
	return []string{d, instrument, qty, avgCost, ltp, curVal, "0", "0", "0", "0", "NSE"}
}

func TestParseSnapshots(t *testing.T) {
	rows := [][]string{
		sheetRow("2025-08-02", "TCS", "5", "3500", "3600", "18000"),
		sheetRow("2025-08-01", "INFY", "10", "1500", "1550", "15500"),
		sheetRow("2025-08-01", "TCS", "5", "3500", "3580", "17900"),
		{},
	}
	snaps, err := ParseSnapshots(rows)
	if err != nil {
		t.Fatalf("ParseSnapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snaps))
	}
	if snaps[0].Date != date.New(2025, 8, 1) || snaps[1].Date != date.New(2025, 8, 2) {
		t.Errorf("snapshots not sorted by date: %s, %s", snaps[0].Date, snaps[1].Date)
	}
	if len(snaps[0].Holdings) != 2 || len(snaps[1].Holdings) != 1 {
		t.Errorf("holdings per snapshot = %d, %d; want 2, 1", len(snaps[0].Holdings), len(snaps[1].Holdings))
	}
	if got := snaps[0].Value(); got != 33400 {
		t.Errorf("Value() = %v, want 33400", got)
	}
}

func TestParseSnapshotsBadRow(t *testing.T) {
	rows := [][]string{sheetRow("2025-08-01", "TCS", "five", "3500", "3600", "18000")}
	if _, err := ParseSnapshots(rows); err == nil {
		t.Error("ParseSnapshots accepted a non-numeric quantity")
	}
	rows = [][]string{{"2025-08-01", "TCS"}}
	if _, err := ParseSnapshots(rows); err == nil {
		t.Error("ParseSnapshots accepted a short row")
	}
}
