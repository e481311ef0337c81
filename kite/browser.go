package kite

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// extractRowsJS pulls every cell's text and tooltip out of the holdings
// table, keyed by the td's data-label attribute.
const extractRowsJS = `
Array.from(document.querySelectorAll(%q)).map(function (row) {
	var cells = {};
	row.querySelectorAll('td').forEach(function (td) {
		var label = td.getAttribute('data-label');
		if (!label) { return; }
		var tip = td.querySelector('[data-tooltip-content]');
		cells[label] = {
			text: td.innerText.trim(),
			tooltip: tip ? tip.getAttribute('data-tooltip-content') : '',
		};
	});
	return cells;
})`

// Browser is a chromedp-backed Page running a headed Chrome, so the user can
// complete login and 2FA by hand.
type Browser struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

// NewBrowser starts a visible Chrome instance.
func NewBrowser(ctx context.Context) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 900),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// start the browser eagerly so a missing Chrome fails here
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}
	return &Browser{ctx: browserCtx, cancels: []context.CancelFunc{cancelBrowser, cancelAlloc}}, nil
}

// Close shuts the browser down.
func (b *Browser) Close() {
	for _, cancel := range b.cancels {
		cancel()
	}
}

// run executes actions on the browser context, honoring the caller's
// deadline.
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx := b.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(b.ctx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx, chromedp.Navigate(url))
}

func (b *Browser) URL(ctx context.Context) (string, error) {
	var u string
	err := b.run(ctx, chromedp.Location(&u))
	return u, err
}

func (b *Browser) Fill(ctx context.Context, selector, value string) error {
	return b.run(ctx, chromedp.SendKeys(selector, value, chromedp.ByQuery))
}

func (b *Browser) Click(ctx context.Context, selector string) error {
	return b.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (b *Browser) WaitVisible(ctx context.Context, selector string) error {
	return b.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (b *Browser) WaitGone(ctx context.Context, selector string) error {
	return b.run(ctx, chromedp.WaitNotPresent(selector, chromedp.ByQuery))
}

func (b *Browser) TableCells(ctx context.Context, rowSelector string) ([]map[string]Cell, error) {
	var rows []map[string]Cell
	err := b.run(ctx, chromedp.Evaluate(fmt.Sprintf(extractRowsJS, rowSelector), &rows))
	return rows, err
}

var _ Page = (*Browser)(nil)
