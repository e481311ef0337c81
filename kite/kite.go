// Package kite scrapes the holdings table from the Zerodha Kite web
// dashboard. Login stays manual: the fetcher opens the login page in a headed
// browser and waits for the user to get through 2FA.
package kite

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	stocks "github.com/4p00rv/kite-stock-analysis"
)

const (
	// LoginURL is the Kite web login page.
	LoginURL = "https://kite.zerodha.com/"
	// HoldingsURL is the holdings view of the dashboard.
	HoldingsURL = "https://kite.zerodha.com/holdings"

	userSelector     = "#userid"
	passwordSelector = "#password"
	submitSelector   = "button[type=submit]"

	tableSelector  = ".holdings"
	loaderSelector = ".holdings .su-loader"
	rowSelector    = ".holdings-table tbody tr"

	tableTimeout  = 30 * time.Second
	loaderTimeout = 60 * time.Second
)

// postLoginURL matches any authenticated dashboard location.
var postLoginURL = regexp.MustCompile(`kite\.zerodha\.com/(dashboard|holdings|positions)`)

// ErrLoginTimeout is returned when the login is not completed before the
// deadline.
var ErrLoginTimeout = errors.New("kite: login not completed before deadline")

// Cell is the text of one holdings-table cell plus its hover tooltip, if any.
type Cell struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
}

// Page is the minimal browser surface the fetcher drives. The production
// implementation is Browser; tests substitute a scripted fake.
type Page interface {
	Navigate(ctx context.Context, url string) error
	URL(ctx context.Context) (string, error)
	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	WaitVisible(ctx context.Context, selector string) error
	WaitGone(ctx context.Context, selector string) error
	TableCells(ctx context.Context, rowSelector string) ([]map[string]Cell, error)
}

// dataLabels maps the table's data-label attributes to holding fields.
var dataLabels = map[string]func(*stocks.RawRow, Cell){
	"Instrument": func(r *stocks.RawRow, c Cell) { r.Instrument = c.Text },
	"Qty.":       func(r *stocks.RawRow, c Cell) { r.Quantity = c.Text },
	"Avg. cost":  func(r *stocks.RawRow, c Cell) { r.AvgCost = c.Text },
	"LTP":        func(r *stocks.RawRow, c Cell) { r.LTP = c.Text },
	"Cur. val":   func(r *stocks.RawRow, c Cell) { r.CurrentValue = c.Text },
	"P&L":        func(r *stocks.RawRow, c Cell) { r.PnL = c.Text },
	"Net chg.":   func(r *stocks.RawRow, c Cell) { r.NetChange = c.Text },
	"Day chg.": func(r *stocks.RawRow, c Cell) {
		r.DayChange = c.Text
		r.DayChangeAbs = c.Tooltip
	},
}

// Fetcher runs the scrape pipeline against a Page.
type Fetcher struct {
	page Page
	log  zerolog.Logger

	// LoginTimeout bounds the manual login wait.
	LoginTimeout time.Duration
	// PollInterval is the URL polling cadence during the login wait.
	PollInterval time.Duration
}

// NewFetcher returns a Fetcher with the default five-minute login window.
func NewFetcher(page Page, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		page:         page,
		log:          log,
		LoginTimeout: 5 * time.Minute,
		PollInterval: 500 * time.Millisecond,
	}
}

// Login opens the login page and blocks until the session reaches the
// dashboard. When credentials are given they are filled in and submitted,
// leaving only the 2FA step to the user; empty credentials leave the whole
// form manual. Returns ErrLoginTimeout when the window elapses.
func (f *Fetcher) Login(ctx context.Context, userID, password string) error {
	if err := f.page.Navigate(ctx, LoginURL); err != nil {
		return fmt.Errorf("opening login page: %w", err)
	}

	if u, err := f.page.URL(ctx); err == nil && postLoginURL.MatchString(u) {
		f.log.Debug().Str("url", u).Msg("session already authenticated")
		return nil
	}

	if userID != "" && password != "" {
		if err := f.autofill(ctx, userID, password); err != nil {
			f.log.Warn().Err(err).Msg("credential autofill failed, continue manually")
		}
	}
	return f.waitForLogin(ctx)
}

func (f *Fetcher) autofill(ctx context.Context, userID, password string) error {
	if err := f.page.WaitVisible(ctx, userSelector); err != nil {
		return err
	}
	if err := f.page.Fill(ctx, userSelector, userID); err != nil {
		return err
	}
	if err := f.page.Fill(ctx, passwordSelector, password); err != nil {
		return err
	}
	return f.page.Click(ctx, submitSelector)
}

func (f *Fetcher) waitForLogin(ctx context.Context) error {
	deadline := time.Now().Add(f.LoginTimeout)
	ticker := time.NewTicker(f.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			u, err := f.page.URL(ctx)
			if err != nil {
				return fmt.Errorf("reading browser location: %w", err)
			}
			if postLoginURL.MatchString(u) {
				f.log.Info().Msg("login detected")
				return nil
			}
			if time.Now().After(deadline) {
				return ErrLoginTimeout
			}
		}
	}
}

// FetchHoldings navigates to the holdings view, waits for the table to
// settle and parses every row. Malformed rows are skipped; the second return
// is the skip count.
func (f *Fetcher) FetchHoldings(ctx context.Context) ([]stocks.Holding, int, error) {
	if err := f.page.Navigate(ctx, HoldingsURL); err != nil {
		return nil, 0, fmt.Errorf("opening holdings view: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, tableTimeout)
	err := f.page.WaitVisible(waitCtx, tableSelector)
	cancel()
	if err != nil {
		return nil, 0, fmt.Errorf("holdings table did not render: %w", err)
	}

	waitCtx, cancel = context.WithTimeout(ctx, loaderTimeout)
	err = f.page.WaitGone(waitCtx, loaderSelector)
	cancel()
	if err != nil {
		return nil, 0, fmt.Errorf("holdings still loading: %w", err)
	}

	rows, err := f.page.TableCells(ctx, rowSelector)
	if err != nil {
		return nil, 0, fmt.Errorf("scraping holdings rows: %w", err)
	}

	holdings := make([]stocks.Holding, 0, len(rows))
	skipped := 0
	for i, cells := range rows {
		var raw stocks.RawRow
		for label, set := range dataLabels {
			if c, ok := cells[label]; ok {
				set(&raw, c)
			}
		}
		h, err := stocks.ParseRow(raw)
		if err != nil {
			skipped++
			f.log.Warn().Err(err).Int("row", i+1).Msg("skipping holdings row")
			continue
		}
		holdings = append(holdings, h)
	}
	return holdings, skipped, nil
}
