package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/4p00rv/kite-stock-analysis/date"
)

func TestTicker(t *testing.T) {
	tests := []struct {
		instrument, exchange, want string
	}{
		{"RELIANCE", "NSE", "RELIANCE.NS"},
		{"RELIANCE", "BSE", "RELIANCE.BO"},
		{"TCS", "", "TCS.NS"},
		{"NIFTY 50", "NSE", "^NSEI"},
		{"nifty 50", "NSE", "^NSEI"},
		{"SENSEX", "BSE", "^BSESN"},
	}
	for _, tc := range tests {
		if got := Ticker(tc.instrument, tc.exchange); got != tc.want {
			t.Errorf("Ticker(%q, %q) = %q, want %q", tc.instrument, tc.exchange, got, tc.want)
		}
	}
}

// chartJSON mimics the Yahoo chart payload, with a null close on day two.
func chartJSON(days ...date.Date) string {
	stamps := ""
	closes := ""
	for i, d := range days {
		if i > 0 {
			stamps += ","
			closes += ","
		}
		stamps += fmt.Sprint(d.Time().Unix())
		if i == 1 {
			closes += "null"
		} else {
			closes += fmt.Sprintf("%g", 100.0+float64(i))
		}
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}]}}`, stamps, closes)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(zerolog.Nop())
	c.BaseURL = srv.URL
	// no disk cache in tests, responses change per test
	c.http = &http.Client{Timeout: 5 * time.Second}
	return c
}

func TestDailyCloses(t *testing.T) {
	d1 := date.New(2025, 8, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/TCS.NS" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, chartJSON(d1, d1.Add(1), d1.Add(2)))
	})

	series, err := c.DailyCloses(context.Background(), "TCS.NS", d1, d1.Add(2))
	if err != nil {
		t.Fatalf("DailyCloses: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("got %d closes, want 2 (null skipped)", len(series))
	}
	if series[d1] != 100 || series[d1.Add(2)] != 102 {
		t.Errorf("series = %v", series)
	}
	if _, ok := series[d1.Add(1)]; ok {
		t.Error("null close should be absent")
	}
}

func TestDailyClosesHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})
	if _, err := c.DailyCloses(context.Background(), "TCS.NS", date.Today(), date.Today()); err == nil {
		t.Fatal("expected an error on HTTP 429")
	}
}

func TestDailyClosesMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[]}}`)
	})
	if _, err := c.DailyCloses(context.Background(), "TCS.NS", date.Today(), date.Today()); err == nil {
		t.Fatal("expected an error on an empty result")
	}
}

func TestBenchmarkClosesDegrades(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
	if got := c.BenchmarkCloses(context.Background(), date.Today(), date.Today()); got != nil {
		t.Errorf("BenchmarkCloses on failure = %v, want nil", got)
	}
}
