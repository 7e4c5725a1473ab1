package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"horror-tracker/core/retry"
)

// fakePage simulates a rendered listing. Its content and clickability are
// functions of how many reveal clicks have landed so far.
type fakePage struct {
	mu sync.Mutex

	html      func(clicks int) string
	clickable func(clicks int) bool
	staleAt   map[int]int

	clicks        int
	clickAttempts int
	clicked       []string
	nth           []int
	scrolls       int
	navigated     []string
	closed        bool
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *fakePage) WaitVisible(context.Context, string, time.Duration) error { return nil }

func (p *fakePage) WaitClickable(_ context.Context, selector string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clickable != nil && !p.clickable(p.clicks) {
		return fmt.Errorf("%w: %s", ErrNotClickable, selector)
	}
	return nil
}

func (p *fakePage) Click(_ context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clickAttempts++
	if p.staleAt[p.clicks] > 0 {
		p.staleAt[p.clicks]--
		return ErrStaleElement
	}
	p.clicked = append(p.clicked, selector)
	if !strings.HasPrefix(selector, "#filter") {
		p.clicks++
	}
	return nil
}

func (p *fakePage) ClickNth(_ context.Context, _ string, index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nth = append(p.nth, index)
	return nil
}

func (p *fakePage) ScrollToBottom(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrolls++
	return nil
}

func (p *fakePage) HTML(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.html(p.clicks), nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

// fakeBrowser hands out pages built by newPage, failing the first failOpens calls.
type fakeBrowser struct {
	mu        sync.Mutex
	newPage   func(n int) *fakePage
	failOpens int
	opens     int
	pages     []*fakePage
}

func (b *fakeBrowser) NewPage(context.Context) (Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opens++
	if b.opens <= b.failOpens {
		return nil, errors.New("chrome failed to start")
	}
	p := b.newPage(b.opens)
	b.pages = append(b.pages, p)
	return p, nil
}

// listHTML renders titles the way the chains' listing pages do.
func listHTML(selectorClass string, titles ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><body><ul>")
	for _, t := range titles {
		fmt.Fprintf(&sb, `<li><strong class="%s">%s</strong></li>`, selectorClass, t)
	}
	sb.WriteString("</ul></body></html>")
	return sb.String()
}

// growingHTML shows one more title per click, up to limit clicks.
func growingHTML(limit int) func(int) string {
	return func(clicks int) string {
		n := min(clicks, limit)
		titles := make([]string, 0, n+1)
		for i := 0; i <= n; i++ {
			titles = append(titles, fmt.Sprintf("Movie %d", i))
		}
		return listHTML("title", titles...)
	}
}

func noSleep(context.Context, time.Duration) error { return nil }

func instantPolicy() retry.Policy {
	p := retry.Default()
	p.Base, p.Max = 0, 0
	return p
}
