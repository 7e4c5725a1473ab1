package scraper

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotClickable means a selector did not become clickable before its timeout.
	ErrNotClickable = errors.New("element not clickable")
	// ErrStaleElement means the element was detached between lookup and click.
	ErrStaleElement = errors.New("stale element")
	// ErrNoSuchElement means a selector matched fewer elements than required.
	ErrNoSuchElement = errors.New("no such element")
)

// Browser opens isolated pages. Pages never share cookies, storage or tabs.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
}

// Page is a single rendered document driven by a headless browser.
// Operations on one page are strictly sequential.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	WaitClickable(ctx context.Context, selector string, timeout time.Duration) error
	Click(ctx context.Context, selector string) error
	ClickNth(ctx context.Context, selector string, index int) error
	ScrollToBottom(ctx context.Context) error
	HTML(ctx context.Context) (string, error)
	Close() error
}
