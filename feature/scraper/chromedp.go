package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// ChromeBrowser drives headless chrome through the DevTools protocol. Every
// page runs in its own browser process.
type ChromeBrowser struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	cfg      BrowserConfig
}

// NewChromeBrowser prepares an allocator; chrome starts lazily on NewPage.
// Call Close to stop every browser it started.
func NewChromeBrowser(ctx context.Context, cfg BrowserConfig) *ChromeBrowser {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.WindowSize(1920, 1080),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	return &ChromeBrowser{allocCtx: allocCtx, cancel: cancel, cfg: cfg}
}

// NewPage starts a browser and opens a blank tab in it.
func (b *ChromeBrowser) NewPage(ctx context.Context) (Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.allocCtx)
	// The first Run allocates the browser; it must use the tab context itself
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	if err := ctx.Err(); err != nil {
		cancel()
		return nil, err
	}
	return &chromePage{ctx: tabCtx, cancel: cancel, timeout: b.cfg.PageTimeout}, nil
}

// Close stops every browser started by this allocator.
func (b *ChromeBrowser) Close() {
	b.cancel()
}

type chromePage struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// run executes actions on the tab, bounded by timeout and by the caller's context.
func (p *chromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(p.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(p.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, p.timeout, chromedp.Navigate(url))
}

func (p *chromePage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return p.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (p *chromePage) WaitClickable(ctx context.Context, selector string, timeout time.Duration) error {
	err := p.run(ctx, timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.WaitEnabled(selector, chromedp.ByQuery),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrNotClickable, selector)
	}
	return err
}

func (p *chromePage) Click(ctx context.Context, selector string) error {
	err := p.run(ctx, p.timeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
	if isStale(err) {
		return fmt.Errorf("%w: %s: %v", ErrStaleElement, selector, err)
	}
	return err
}

func (p *chromePage) ClickNth(ctx context.Context, selector string, index int) error {
	var nodes []*cdp.Node
	if err := p.run(ctx, p.timeout, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll)); err != nil {
		return err
	}
	if index < 0 || index >= len(nodes) {
		return fmt.Errorf("%w: %s[%d] of %d", ErrNoSuchElement, selector, index, len(nodes))
	}
	err := p.run(ctx, p.timeout, chromedp.MouseClickNode(nodes[index]))
	if isStale(err) {
		return fmt.Errorf("%w: %s[%d]: %v", ErrStaleElement, selector, index, err)
	}
	return err
}

func (p *chromePage) ScrollToBottom(ctx context.Context) error {
	return p.run(ctx, p.timeout, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil))
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, p.timeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (p *chromePage) Close() error {
	p.cancel()
	return nil
}

// isStale recognizes DevTools errors for nodes removed from the document.
func isStale(err error) bool {
	if err == nil {
		return false
	}
	var cerr *cdproto.Error
	if errors.As(err, &cerr) {
		msg := strings.ToLower(cerr.Message)
		return strings.Contains(msg, "could not find node") || strings.Contains(msg, "detached")
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not find node") || strings.Contains(msg, "node is detached")
}
