package reconcile

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes lookups for the lifetime of one run. It is created when the
// run starts and dropped when it ends, so nothing leaks across runs. Failed
// loads are never stored.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]any
	sf      singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]any),
	}
}

// Load returns the value cached under key, calling load at most once per key
// even when several goroutines ask for it concurrently.
func Load[V any](ctx context.Context, c *Cache, key string, load func(ctx context.Context) (V, error)) (V, error) {
	if c == nil {
		return load(ctx)
	}

	// Fast path
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached.(V), nil
	}

	// Slow path: singleflight prevents stampedes
	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		cached, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		v, err := load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = v
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

// Invalidate removes one key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
