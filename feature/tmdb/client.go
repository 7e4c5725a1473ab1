package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"time"

	"horror-tracker/core/retry"
	"horror-tracker/feature/source"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Client reads paginated movie listings from the metadata provider.
type Client struct {
	HTTPClient *http.Client

	cfg    Config
	policy retry.Policy
	log    *zap.Logger
}

// NewClient creates a client. Every page request runs under policy.
func NewClient(cfg Config, policy retry.Policy, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if cfg.MaxConcurrentRequests <= 0 {
		cfg.MaxConcurrentRequests = 5
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
		policy:     policy,
		log:        log,
	}
}

// Theatrical fetches every page of the theatrical release feed. The feed is
// only upserted, so pages lost after retries are skipped.
func (c *Client) Theatrical(ctx context.Context) ([]Result, error) {
	results, err := c.FetchAll(ctx, "theatrical", c.cfg.TheatricalURL, nil)
	var pe *PartialError
	if errors.As(err, &pe) {
		return results, nil
	}
	return results, err
}

// ByProvider fetches every horror title streamable on one provider. Its
// results replace the provider's pairs, so a lost page fails the whole fetch
// with a PartialError and no results.
func (c *Client) ByProvider(ctx context.Context, providerID int) ([]Result, error) {
	params := url.Values{}
	params.Set("include_adult", "false")
	params.Set("include_video", "false")
	params.Set("language", c.cfg.Language)
	params.Set("sort_by", "popularity.desc")
	params.Set("watch_region", c.cfg.WatchRegion)
	params.Set("with_genres", strconv.Itoa(c.cfg.HorrorGenreID))
	params.Set("with_watch_providers", strconv.Itoa(providerID))

	results, err := c.FetchAll(ctx, "provider:"+strconv.Itoa(providerID), c.cfg.DiscoverURL, params)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FetchAll reads page 1 to learn total_pages, then pages 2..total_pages
// concurrently. Page 1 failing fails the whole fetch with a FetchError. A
// later page that still fails after retries is logged and skipped, and the
// results read are returned with a PartialError naming the lost pages.
func (c *Client) FetchAll(ctx context.Context, name, endpoint string, params url.Values) ([]Result, error) {
	first, err := source.Fetch(ctx, c.policy, name, func(ctx context.Context) (*Page, error) {
		return c.FetchPage(ctx, endpoint, params, 1)
	})
	if err != nil {
		return nil, err
	}

	total := first.TotalPages
	pages := make([][]Result, max(total, 1))
	pages[0] = first.Results

	var (
		mu     sync.Mutex
		failed []int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxConcurrentRequests)
	for p := 2; p <= total; p++ {
		page := p
		g.Go(func() error {
			res, err := source.Fetch(gctx, c.policy, name, func(ctx context.Context) (*Page, error) {
				return c.FetchPage(ctx, endpoint, params, page)
			})
			if err != nil {
				c.log.Warn("Skipping page",
					zap.String("source", name),
					zap.Int("page", page),
					zap.Error(err),
				)
				mu.Lock()
				failed = append(failed, page)
				mu.Unlock()
				return nil
			}
			pages[page-1] = res.Results
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Result
	for _, rs := range pages {
		out = append(out, rs...)
	}

	c.log.Debug("Fetched listing",
		zap.String("source", name),
		zap.Int("total_pages", total),
		zap.Int("failed_pages", len(failed)),
		zap.Int("results", len(out)),
	)
	if len(failed) > 0 {
		slices.Sort(failed)
		return out, &PartialError{Source: name, Total: total, Failed: failed}
	}
	return out, nil
}

// FetchPage performs a single request for one page. Client errors other than
// 429 are marked permanent so the retry policy does not repeat them.
func (c *Client) FetchPage(ctx context.Context, endpoint string, params url.Values, page int) (*Page, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("tmdb: bad endpoint %q: %w", endpoint, err))
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		verr := &ValidationError{Endpoint: u.Path, Status: resp.StatusCode, Payload: truncate(b)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, verr
		}
		return nil, retry.Permanent(verr)
	}

	var out Page
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, retry.Permanent(&ValidationError{Endpoint: u.Path, Status: resp.StatusCode, Payload: truncate(b), Err: err})
	}
	if out.Page == 0 && out.TotalPages == 0 && out.Results == nil {
		return nil, retry.Permanent(&ValidationError{Endpoint: u.Path, Status: resp.StatusCode, Payload: truncate(b), Err: errors.New("missing page fields")})
	}
	return &out, nil
}
