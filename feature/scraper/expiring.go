package scraper

import (
	"context"
	"fmt"
	"time"

	"horror-tracker/core/retry"
	"horror-tracker/feature/source"

	"go.uber.org/zap"
)

// ExpiringRow is one raw row of the catalog's expiring table.
type ExpiringRow struct {
	Title       string `json:"title"`
	ExpiredDate string `json:"expired_date"`
}

// ExpiringAdapter reads the streaming catalog's "expiring soon" table.
type ExpiringAdapter struct {
	browser Browser
	cfg     UnogsConfig
	policy  retry.Policy
	log     *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
	delay   time.Duration
}

// NewExpiringAdapter creates the catalog adapter.
func NewExpiringAdapter(browser Browser, cfg UnogsConfig, bcfg BrowserConfig, policy retry.Policy, log *zap.Logger) *ExpiringAdapter {
	return &ExpiringAdapter{
		browser: browser,
		cfg:     cfg,
		policy:  policy,
		log:     log.With(zap.String("source", "expiring")),
		sleep:   sleepContext,
		delay:   bcfg.LoadDelay,
	}
}

// Fetch returns every row with at least a title and a date cell.
func (a *ExpiringAdapter) Fetch(ctx context.Context) ([]ExpiringRow, error) {
	rows, err := source.Fetch(ctx, a.policy, "expiring", a.fetchOnce)
	if err != nil {
		return nil, err
	}
	a.log.Info("Fetched expiring rows", zap.Int("rows", len(rows)))
	return rows, nil
}

func (a *ExpiringAdapter) fetchOnce(ctx context.Context) ([]ExpiringRow, error) {
	page, err := a.browser.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, a.cfg.URL); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", a.cfg.URL, err)
	}
	if err := a.sleep(ctx, a.delay); err != nil {
		return nil, err
	}
	if err := page.WaitVisible(ctx, a.cfg.ButtonGroupSelector, a.cfg.WaitTime); err != nil {
		return nil, fmt.Errorf("wait for %s: %w", a.cfg.ButtonGroupSelector, err)
	}
	if err := page.ClickNth(ctx, a.cfg.ButtonSelector, a.cfg.ExpiringButtonIndex); err != nil {
		return nil, fmt.Errorf("click expiring tab: %w", err)
	}
	if err := page.WaitVisible(ctx, a.cfg.TableSelector, a.cfg.WaitTime); err != nil {
		return nil, fmt.Errorf("wait for %s: %w", a.cfg.TableSelector, err)
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture content: %w", err)
	}
	cells, err := ExtractRows(html, a.cfg.RowSelector)
	if err != nil {
		return nil, err
	}

	var rows []ExpiringRow
	for _, c := range cells {
		if len(c) < 2 {
			continue
		}
		rows = append(rows, ExpiringRow{Title: c[0], ExpiredDate: c[1]})
	}
	return rows, nil
}
