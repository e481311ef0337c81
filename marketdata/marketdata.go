// Package marketdata fetches daily closing prices from the Yahoo Finance
// chart endpoint, with a disk cache that expires every day.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"

	stocks "github.com/4p00rv/kite-stock-analysis"
	"github.com/4p00rv/kite-stock-analysis/date"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// BenchmarkTicker is the NSE Nifty 50 index.
const BenchmarkTicker = "^NSEI"

// specialTickers maps Kite instrument names that are not plain exchange
// symbols.
var specialTickers = map[string]string{
	"NIFTY 50":   "^NSEI",
	"NIFTY BANK": "^NSEBANK",
	"SENSEX":     "^BSESN",
}

// Ticker converts a Kite instrument name and exchange into a Yahoo ticker.
func Ticker(instrument, exchange string) string {
	if t, ok := specialTickers[strings.ToUpper(strings.TrimSpace(instrument))]; ok {
		return t
	}
	symbol := strings.TrimSpace(instrument)
	if strings.EqualFold(exchange, "BSE") {
		return symbol + ".BO"
	}
	return symbol + ".NS"
}

// Client fetches quotes over HTTP. BaseURL is overridable for tests.
type Client struct {
	BaseURL string

	http *http.Client
	log  zerolog.Logger
}

// NewClient returns a Client with the daily-expiring response cache.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		http: &http.Client{
			Transport: &diskCache{base: http.DefaultTransport, log: log},
			Timeout:   30 * time.Second,
		},
		log: log,
	}
}

// jget performs an HTTP GET and decodes the JSON response.
func (c *Client) jget(ctx context.Context, addr string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	// Yahoo rejects the default Go user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding %v: %w", req.URL.Path, err)
	}
	return doc, nil
}

// DailyCloses fetches the ticker's daily closing prices over [from, to].
func (c *Client) DailyCloses(ctx context.Context, ticker string, from, to date.Date) (stocks.PriceSeries, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		c.BaseURL, url.PathEscape(ticker),
		from.Time().Unix(), to.Add(1).Time().Unix())

	doc, err := c.jget(ctx, addr)
	if err != nil {
		return nil, err
	}

	ts, err := jsonpath.Get("$.chart.result[0].timestamp", doc)
	if err != nil {
		return nil, fmt.Errorf("chart response for %s has no timestamps: %w", ticker, err)
	}
	closes, err := jsonpath.Get("$.chart.result[0].indicators.quote[0].close", doc)
	if err != nil {
		return nil, fmt.Errorf("chart response for %s has no closes: %w", ticker, err)
	}
	stamps, ok1 := ts.([]any)
	prices, ok2 := closes.([]any)
	if !ok1 || !ok2 || len(stamps) != len(prices) {
		return nil, fmt.Errorf("chart response for %s is malformed", ticker)
	}

	series := make(stocks.PriceSeries, len(stamps))
	for i, raw := range stamps {
		sec, ok := raw.(float64)
		if !ok {
			continue
		}
		price, ok := prices[i].(float64) // null closes on holidays stay absent
		if !ok {
			continue
		}
		series[date.FromTime(time.Unix(int64(sec), 0).UTC())] = price
	}
	return series, nil
}

// HoldingsCloses fetches daily closes for every holding, keyed by instrument
// name. A failed instrument is logged and left out rather than failing the
// whole analysis.
func (c *Client) HoldingsCloses(ctx context.Context, holdings []stocks.Holding, from, to date.Date) map[string]stocks.PriceSeries {
	out := make(map[string]stocks.PriceSeries, len(holdings))
	for _, h := range holdings {
		if _, done := out[h.Instrument]; done {
			continue
		}
		series, err := c.DailyCloses(ctx, Ticker(h.Instrument, h.Exchange), from, to)
		if err != nil {
			c.log.Warn().Err(err).Str("instrument", h.Instrument).Msg("price fetch failed, using snapshot prices")
			continue
		}
		out[h.Instrument] = series
	}
	return out
}

// BenchmarkCloses fetches the Nifty 50 closes, degrading to nil with a
// warning on failure.
func (c *Client) BenchmarkCloses(ctx context.Context, from, to date.Date) stocks.PriceSeries {
	series, err := c.DailyCloses(ctx, BenchmarkTicker, from, to)
	if err != nil {
		c.log.Warn().Err(err).Msg("benchmark fetch failed")
		return nil
	}
	return series
}
