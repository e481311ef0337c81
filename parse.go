package stocks

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrSkipRow marks a scraped row that cannot be turned into a Holding. The
// fetcher drops such rows and keeps going.
var ErrSkipRow = errors.New("skip holdings row")

// RawRow is the text content of one scraped holdings row. DayChangeAbs comes
// from the hover tooltip of the day-change cell and may be empty.
type RawRow struct {
	Instrument   string
	Quantity     string
	AvgCost      string
	LTP          string
	CurrentValue string
	PnL          string
	NetChange    string
	DayChange    string
	DayChangeAbs string
	Exchange     string
}

var settlementLabel = regexp.MustCompile(`T\d+:`)

// CleanNumber parses a display number: thousands separators, a percent sign
// and an explicit plus sign are stripped.
func CleanNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.TrimPrefix(s, "+")
	return decimal.NewFromString(s)
}

// ParseQuantity parses a quantity cell. Kite annotates unsettled shares with
// labels like "T1:", so "T1: 3 3" means 3 unsettled plus 3 settled, i.e. 6.
func ParseQuantity(s string) (int64, error) {
	s = settlementLabel.ReplaceAllString(s, " ")
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty quantity")
	}
	var total int64
	for _, f := range fields {
		n, err := strconv.ParseInt(strings.ReplaceAll(f, ",", ""), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid quantity %q: %w", s, err)
		}
		total += n
	}
	return total, nil
}

// TooltipValue extracts the leading number of a day-change tooltip like
// "-22.72 (-0.13%)". A missing or unreadable tooltip yields zero.
func TooltipValue(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	v, err := CleanNumber(s)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// ParseRow validates a scraped row into a Holding. A missing instrument name
// or an unparseable required field returns an error wrapping ErrSkipRow.
func ParseRow(raw RawRow) (Holding, error) {
	h := Holding{
		Instrument: strings.TrimSpace(raw.Instrument),
		Exchange:   strings.TrimSpace(raw.Exchange),
	}
	if h.Instrument == "" {
		return Holding{}, fmt.Errorf("%w: missing instrument name", ErrSkipRow)
	}
	if h.Exchange == "" {
		h.Exchange = DefaultExchange
	}

	qty, err := ParseQuantity(raw.Quantity)
	if err != nil {
		return Holding{}, fmt.Errorf("%w: %s: %v", ErrSkipRow, h.Instrument, err)
	}
	h.Quantity = qty

	for _, f := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"avg cost", raw.AvgCost, &h.AvgCost},
		{"ltp", raw.LTP, &h.LTP},
		{"current value", raw.CurrentValue, &h.CurrentValue},
		{"p&l", raw.PnL, &h.PnL},
		{"net change", raw.NetChange, &h.PnLPercent},
		{"day change", raw.DayChange, &h.DayChangePercent},
	} {
		v, err := CleanNumber(f.raw)
		if err != nil {
			return Holding{}, fmt.Errorf("%w: %s: invalid %s %q", ErrSkipRow, h.Instrument, f.name, f.raw)
		}
		*f.dst = v
	}

	h.DayChange = TooltipValue(raw.DayChangeAbs)
	return h, nil
}
