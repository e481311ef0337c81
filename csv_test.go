package stocks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/4p00rv/kite-stock-analysis/date"
)

func TestSaveHoldingsCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	holdings := []Holding{
		{Instrument: "TCS", Quantity: 3, AvgCost: d("3500"), LTP: d("3600.25"), CurrentValue: d("10800.75"),
			PnL: d("300.75"), PnLPercent: d("2.86"), DayChange: d("-12.5"), DayChangePercent: d("-0.35"), Exchange: "NSE"},
	}
	now := time.Date(2025, 8, 30, 15, 4, 5, 0, time.UTC)

	path, err := SaveHoldingsCSV(dir, holdings, now)
	if err != nil {
		t.Fatalf("SaveHoldingsCSV: %v", err)
	}
	if got, want := filepath.Base(path), "holdings_20250830_150405.csv"; got != want {
		t.Errorf("filename = %q, want %q", got, want)
	}

	back, err := LoadHoldingsCSV(path)
	if err != nil {
		t.Fatalf("LoadHoldingsCSV: %v", err)
	}
	if len(back) != 1 {
		t.Fatalf("loaded %d holdings, want 1", len(back))
	}
	if back[0].Instrument != "TCS" || back[0].Quantity != 3 || !back[0].LTP.Equal(d("3600.25")) {
		t.Errorf("round trip mismatch: %+v", back[0])
	}
}

func TestSaveHoldingsCSVEmpty(t *testing.T) {
	path, err := SaveHoldingsCSV(t.TempDir(), nil, time.Now())
	if err != nil {
		t.Fatalf("SaveHoldingsCSV: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "instrument,quantity") {
		t.Errorf("empty export = %q, want header row only", content)
	}
}

func TestDateFromFilename(t *testing.T) {
	got, ok := DateFromFilename("output/holdings_20250830_150405.csv")
	if !ok || got != date.New(2025, 8, 30) {
		t.Errorf("DateFromFilename = %s, %v; want 2025-08-30, true", got, ok)
	}
	if _, ok := DateFromFilename("notes.csv"); ok {
		t.Error("DateFromFilename accepted a non-holdings filename")
	}
}
