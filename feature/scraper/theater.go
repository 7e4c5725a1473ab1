package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"horror-tracker/core/retry"
	"horror-tracker/feature/source"

	"go.uber.org/zap"
)

// TheaterAdapter reads the current title set of one theater chain.
type TheaterAdapter struct {
	browser Browser
	chain   ChainConfig
	cfg     BrowserConfig
	policy  retry.Policy
	log     *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewTheaterAdapter creates an adapter for one chain.
func NewTheaterAdapter(browser Browser, chain ChainConfig, cfg BrowserConfig, policy retry.Policy, log *zap.Logger) *TheaterAdapter {
	return &TheaterAdapter{
		browser: browser,
		chain:   chain,
		cfg:     cfg,
		policy:  policy,
		log:     log.With(zap.String("theater", chain.Name)),
		sleep:   sleepContext,
	}
}

// Name returns the chain's name in the theaters table.
func (a *TheaterAdapter) Name() string { return a.chain.Name }

// ChainListing holds the raw titles read from each listing page of a chain.
type ChainListing struct {
	Theater    string   `json:"theater"`
	NowShowing []string `json:"now_showing"`
	Upcoming   []string `json:"upcoming"`
}

// Fetch reads both listing pages. If either page fails after retries the
// chain fails as a whole, since a partial set would end listings that are
// still running.
func (a *TheaterAdapter) Fetch(ctx context.Context) (ChainListing, error) {
	listing := ChainListing{Theater: a.chain.Name}

	for _, pc := range []struct {
		label string
		page  PageConfig
		into  *[]string
	}{
		{"now_showing", a.chain.NowShowing, &listing.NowShowing},
		{"upcoming", a.chain.Upcoming, &listing.Upcoming},
	} {
		if pc.page.URL == "" {
			continue
		}
		name := a.chain.Name + "/" + pc.label
		got, err := source.Fetch(ctx, a.policy, name, func(ctx context.Context) ([]string, error) {
			return a.fetchPage(ctx, pc.page)
		})
		if err != nil {
			return ChainListing{Theater: a.chain.Name}, err
		}
		a.log.Info("Fetched listing page",
			zap.String("page", pc.label),
			zap.Int("titles", len(got)),
		)
		*pc.into = got
	}

	return listing, nil
}

// fetchPage is one attempt at one listing page: navigate, optional filter
// click, optional reveal-more loop, then title extraction.
func (a *TheaterAdapter) fetchPage(ctx context.Context, pc PageConfig) ([]string, error) {
	page, err := a.browser.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, pc.URL); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", pc.URL, err)
	}
	if err := a.sleep(ctx, a.cfg.LoadDelay); err != nil {
		return nil, err
	}

	if pc.FilterSelector != "" {
		if err := page.WaitClickable(ctx, pc.FilterSelector, a.cfg.ClickTimeout); err != nil {
			return nil, fmt.Errorf("wait for filter %s: %w", pc.FilterSelector, err)
		}
		if err := page.Click(ctx, pc.FilterSelector); err != nil {
			return nil, fmt.Errorf("click filter %s: %w", pc.FilterSelector, err)
		}
	}

	if pc.RevealSelector != "" {
		if pc.Scroll {
			page = &scrollingPage{Page: page}
		}
		res, err := RevealAll(ctx, page, pc.RevealSelector, a.cfg.RevealOptions())
		if err != nil {
			return nil, err
		}
		a.log.Debug("Reveal finished",
			zap.String("url", pc.URL),
			zap.Int("clicks", res.Clicks),
			zap.String("stop", string(res.Stop)),
		)
	}

	if err := page.WaitVisible(ctx, pc.TitleSelector, a.cfg.PageTimeout); err != nil {
		return nil, fmt.Errorf("wait for titles %s: %w", pc.TitleSelector, err)
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture content: %w", err)
	}
	titles, err := ExtractTexts(html, pc.TitleSelector)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, errors.New("no titles matched " + pc.TitleSelector)
	}
	return titles, nil
}

// scrollingPage scrolls to the bottom before every clickable wait, for pages
// whose reveal control is rendered only when in view.
type scrollingPage struct {
	Page
}

func (p *scrollingPage) WaitClickable(ctx context.Context, selector string, timeout time.Duration) error {
	if err := p.Page.ScrollToBottom(ctx); err != nil {
		return err
	}
	return p.Page.WaitClickable(ctx, selector, timeout)
}
