package stocks

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/4p00rv/kite-stock-analysis/date"
)

// csvHeader is the column order of holdings CSV files. The Holdings sheet
// uses the same columns after its leading date column.
var csvHeader = []string{
	"instrument", "quantity", "avg_cost", "ltp", "current_value",
	"pnl", "pnl_percent", "day_change", "day_change_percent", "exchange",
}

// CSVHeader returns a copy of the holdings column names.
func CSVHeader() []string {
	h := make([]string, len(csvHeader))
	copy(h, csvHeader)
	return h
}

func (h Holding) csvRecord() []string {
	return []string{
		h.Instrument,
		strconv.FormatInt(h.Quantity, 10),
		h.AvgCost.String(),
		h.LTP.String(),
		h.CurrentValue.String(),
		h.PnL.String(),
		h.PnLPercent.String(),
		h.DayChange.String(),
		h.DayChangePercent.String(),
		h.Exchange,
	}
}

// HoldingFromRecord parses a CSV record in csvHeader order.
func HoldingFromRecord(rec []string) (Holding, error) {
	if len(rec) != len(csvHeader) {
		return Holding{}, fmt.Errorf("holdings record has %d fields, want %d", len(rec), len(csvHeader))
	}
	h := Holding{Instrument: rec[0], Exchange: rec[9]}
	qty, err := strconv.ParseInt(rec[1], 10, 64)
	if err != nil {
		return Holding{}, fmt.Errorf("holdings record %q: invalid quantity: %w", rec[0], err)
	}
	h.Quantity = qty
	for _, f := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{rec[2], &h.AvgCost},
		{rec[3], &h.LTP},
		{rec[4], &h.CurrentValue},
		{rec[5], &h.PnL},
		{rec[6], &h.PnLPercent},
		{rec[7], &h.DayChange},
		{rec[8], &h.DayChangePercent},
	} {
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return Holding{}, fmt.Errorf("holdings record %q: invalid number %q: %w", rec[0], f.raw, err)
		}
		*f.dst = v
	}
	return h, nil
}

// SaveHoldingsCSV writes holdings to a new timestamped file under dir,
// creating the directory if needed. An empty list still produces a file with
// the header row. It returns the file path.
func SaveHoldingsCSV(dir string, holdings []Holding, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("holdings_%s.csv", now.Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, h := range holdings {
		if err := w.Write(h.csvRecord()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// LoadHoldingsCSV reads a file produced by SaveHoldingsCSV.
func LoadHoldingsCSV(path string) ([]Holding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}
	holdings := make([]Holding, 0, len(records)-1)
	for _, rec := range records[1:] {
		h, err := HoldingFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

var csvFilenameDate = regexp.MustCompile(`holdings_(\d{8})_\d{6}\.csv$`)

// DateFromFilename extracts the capture date from a holdings CSV filename.
// The second return is false when the name does not follow the convention.
func DateFromFilename(path string) (date.Date, bool) {
	m := csvFilenameDate.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return date.Date{}, false
	}
	t, err := time.Parse("20060102", m[1])
	if err != nil {
		return date.Date{}, false
	}
	return date.FromTime(t), true
}
