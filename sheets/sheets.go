// Package sheets maintains the Google Sheets spreadsheet that accumulates
// dated holdings snapshots and the derived analysis tabs.
package sheets

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Tab names. Holdings and Summary are upserted per capture date; the
// analysis tabs are rewritten wholesale.
const (
	HoldingsTab       = "Holdings"
	SummaryTab        = "Summary"
	DailyValuesTab    = "Daily Values"
	RollingReturnsTab = "Rolling Returns"
	MonthlyReturnsTab = "Monthly Returns"
	AllocationTab     = "Allocation"
	MetricsTab        = "Metrics"
)

// Environment variables enabling the upload.
const (
	EnvSheetID     = "GOOGLE_SHEET_ID"
	EnvCredentials = "GOOGLE_SHEETS_CREDENTIALS"
)

// service is the slice of the Sheets API the client drives. Tests substitute
// an in-memory fake.
type service interface {
	Spreadsheet(ctx context.Context) (*sheetsapi.Spreadsheet, error)
	Values(ctx context.Context, rng string) ([][]string, error)
	Update(ctx context.Context, rng string, rows [][]any) error
	Append(ctx context.Context, rng string, rows [][]any) error
	Clear(ctx context.Context, rng string) error
	BatchUpdate(ctx context.Context, reqs ...*sheetsapi.Request) error
}

// googleService implements service against the real API.
type googleService struct {
	svc *sheetsapi.Service
	id  string
}

func (g *googleService) Spreadsheet(ctx context.Context) (*sheetsapi.Spreadsheet, error) {
	return g.svc.Spreadsheets.Get(g.id).Context(ctx).Do()
}

func (g *googleService) Values(ctx context.Context, rng string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.id, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = fmt.Sprint(cell)
		}
	}
	return rows, nil
}

func (g *googleService) Update(ctx context.Context, rng string, rows [][]any) error {
	_, err := g.svc.Spreadsheets.Values.Update(g.id, rng, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}

func (g *googleService) Append(ctx context.Context, rng string, rows [][]any) error {
	_, err := g.svc.Spreadsheets.Values.Append(g.id, rng, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

func (g *googleService) Clear(ctx context.Context, rng string) error {
	_, err := g.svc.Spreadsheets.Values.Clear(g.id, rng, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (g *googleService) BatchUpdate(ctx context.Context, reqs ...*sheetsapi.Request) error {
	if len(reqs) == 0 {
		return nil
	}
	_, err := g.svc.Spreadsheets.BatchUpdate(g.id, &sheetsapi.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).Do()
	return err
}

// Client uploads holdings and analysis tabs to one spreadsheet.
type Client struct {
	svc service
	log zerolog.Logger
}

// FromEnv builds a Client from GOOGLE_SHEET_ID and GOOGLE_SHEETS_CREDENTIALS
// (a service-account key file). When either variable is unset the second
// return is false and the upload is meant to be skipped.
func FromEnv(ctx context.Context, log zerolog.Logger) (*Client, bool, error) {
	id := os.Getenv(EnvSheetID)
	creds := os.Getenv(EnvCredentials)
	if id == "" || creds == "" {
		return nil, false, nil
	}
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(creds),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, true, fmt.Errorf("creating sheets service: %w", err)
	}
	return &Client{svc: &googleService{svc: svc, id: id}, log: log}, true, nil
}

// sheetID returns the numeric id of the tab, creating the tab when missing.
func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	ss, err := c.svc.Spreadsheet(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties.Title == title {
			return s.Properties.SheetId, nil
		}
	}

	err = c.svc.BatchUpdate(ctx, &sheetsapi.Request{
		AddSheet: &sheetsapi.AddSheetRequest{
			Properties: &sheetsapi.SheetProperties{Title: title},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("creating tab %q: %w", title, err)
	}
	ss, err = c.svc.Spreadsheet(ctx)
	if err != nil {
		return 0, err
	}
	for _, s := range ss.Sheets {
		if s.Properties.Title == title {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("tab %q not found after creation", title)
}

// ensureTab makes sure the tab exists with the wanted header row and returns
// its numeric id.
func (c *Client) ensureTab(ctx context.Context, title string, header []string) (int64, error) {
	id, err := c.sheetID(ctx, title)
	if err != nil {
		return 0, err
	}
	rows, err := c.svc.Values(ctx, rng(title, "1:1"))
	if err != nil {
		return 0, fmt.Errorf("reading %s header: %w", title, err)
	}
	if len(rows) > 0 && slices.Equal(rows[0], header) {
		return id, nil
	}
	if err := c.svc.Update(ctx, rng(title, "A1"), [][]any{toAny(header)}); err != nil {
		return 0, fmt.Errorf("writing %s header: %w", title, err)
	}
	return id, nil
}

// deleteRowsForDate removes every data row of the tab whose first column
// equals the date, making re-uploads for a day idempotent.
func (c *Client) deleteRowsForDate(ctx context.Context, title string, sheetID int64, dateStr string) error {
	col, err := c.svc.Values(ctx, rng(title, "A:A"))
	if err != nil {
		return fmt.Errorf("reading %s dates: %w", title, err)
	}
	var reqs []*sheetsapi.Request
	// delete bottom-up so earlier deletions do not shift later indices
	for i := len(col) - 1; i >= 1; i-- {
		if len(col[i]) == 0 || col[i][0] != dateStr {
			continue
		}
		reqs = append(reqs, &sheetsapi.Request{
			DeleteDimension: &sheetsapi.DeleteDimensionRequest{
				Range: &sheetsapi.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(i),
					EndIndex:   int64(i + 1),
				},
			},
		})
	}
	if err := c.svc.BatchUpdate(ctx, reqs...); err != nil {
		return fmt.Errorf("deleting %s rows for %s: %w", title, dateStr, err)
	}
	return nil
}

// replaceTab rewrites a whole analysis tab: header plus rows, leftovers
// cleared.
func (c *Client) replaceTab(ctx context.Context, title string, header []string, rows [][]any) (int64, error) {
	id, err := c.sheetID(ctx, title)
	if err != nil {
		return 0, err
	}
	if err := c.svc.Clear(ctx, rng(title, "")); err != nil {
		return 0, fmt.Errorf("clearing %s: %w", title, err)
	}
	all := append([][]any{toAny(header)}, rows...)
	if err := c.svc.Update(ctx, rng(title, "A1"), all); err != nil {
		return 0, fmt.Errorf("writing %s: %w", title, err)
	}
	if err := c.formatHeader(ctx, id, len(header)); err != nil {
		c.log.Warn().Err(err).Str("tab", title).Msg("header formatting failed")
	}
	return id, nil
}

// rng builds an A1 reference, quoting the tab name since some carry spaces.
func rng(title, ref string) string {
	if ref == "" {
		return "'" + title + "'"
	}
	return fmt.Sprintf("'%s'!%s", title, ref)
}

func toAny(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
