package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// StopReason tells why a reveal-more loop ended.
type StopReason string

const (
	// StopNotClickable means the reveal control did not become clickable in time.
	StopNotClickable StopReason = "not_clickable"
	// StopStable means two consecutive captures were identical.
	StopStable StopReason = "stable"
	// StopDeadline means the loop hit its total duration cap.
	StopDeadline StopReason = "deadline"
	// StopMaxClicks means the loop hit its click cap.
	StopMaxClicks StopReason = "max_clicks"
)

// maxStaleRetries bounds consecutive stale-element retries of one click.
const maxStaleRetries = 3

// RevealOptions bounds a reveal-more loop.
type RevealOptions struct {
	ClickTimeout time.Duration
	Settle       time.Duration
	MaxDuration  time.Duration
	MaxClicks    int
	// Sleep waits for the settle interval. Nil means a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// RevealResult is the outcome of a reveal-more loop.
type RevealResult struct {
	// Captures holds the initial content followed by every distinct capture.
	Captures []string
	// Clicks counts successful clicks.
	Clicks int
	Stop   StopReason
}

// Final returns the last captured content.
func (r RevealResult) Final() string {
	if len(r.Captures) == 0 {
		return ""
	}
	return r.Captures[len(r.Captures)-1]
}

// RevealAll clicks selector until the page stops disclosing rows. It stops
// when the control is not clickable within ClickTimeout, when a capture is
// byte-identical to the previous one, or when MaxDuration/MaxClicks is hit.
// A stale element retries the same click.
func RevealAll(ctx context.Context, page Page, selector string, opts RevealOptions) (RevealResult, error) {
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	maxClicks := opts.MaxClicks
	if maxClicks <= 0 {
		maxClicks = 100
	}
	start := time.Now()

	initial, err := page.HTML(ctx)
	if err != nil {
		return RevealResult{}, fmt.Errorf("capture initial content: %w", err)
	}
	res := RevealResult{Captures: []string{initial}}

	stale := 0
	for {
		if opts.MaxDuration > 0 && time.Since(start) >= opts.MaxDuration {
			res.Stop = StopDeadline
			return res, nil
		}
		if res.Clicks >= maxClicks {
			res.Stop = StopMaxClicks
			return res, nil
		}

		if err := page.WaitClickable(ctx, selector, opts.ClickTimeout); err != nil {
			if errors.Is(err, ErrNotClickable) {
				res.Stop = StopNotClickable
				return res, nil
			}
			return res, fmt.Errorf("wait for %s: %w", selector, err)
		}

		if err := page.Click(ctx, selector); err != nil {
			if errors.Is(err, ErrStaleElement) && stale < maxStaleRetries {
				stale++
				continue
			}
			return res, fmt.Errorf("click %s: %w", selector, err)
		}
		stale = 0
		res.Clicks++

		if err := sleep(ctx, opts.Settle); err != nil {
			return res, err
		}

		current, err := page.HTML(ctx)
		if err != nil {
			return res, fmt.Errorf("capture content: %w", err)
		}
		if current == res.Final() {
			res.Stop = StopStable
			return res, nil
		}
		res.Captures = append(res.Captures, current)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
