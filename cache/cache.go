// Package cache provides the in-memory page cache shared by all fetch
// tasks of a run.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/coinscrape"
	"golang.org/x/sync/singleflight"
)

// DefaultStaleness is how long an entry satisfies a reload request.
const DefaultStaleness = 60 * time.Second

// Ensure Cache implements the cache interfaces at compile time.
var (
	_ coinscrape.PageCache   = (*Cache)(nil)
	_ coinscrape.CacheReader = (*Cache)(nil)
)

// Cache maps URLs to fetched page content.
//
// The mutex guards map access only; fetches run without holding it.
// Concurrent misses for the same URL share one fetch unless single-flight
// is disabled. Failed fetches are never stored.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*coinscrape.CacheEntry

	staleness    time.Duration
	singleFlight bool
	now          func() time.Time
	group        singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleness sets the age after which an entry no longer satisfies a
// reload request.
func WithStaleness(d time.Duration) Option {
	return func(c *Cache) {
		c.staleness = d
	}
}

// WithSingleFlight enables or disables collapsing concurrent fetches of
// the same URL. Enabled by default.
func WithSingleFlight(enabled bool) Option {
	return func(c *Cache) {
		c.singleFlight = enabled
	}
}

// WithClock sets the time source used to stamp and age entries.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:      make(map[string]*coinscrape.CacheEntry),
		staleness:    DefaultStaleness,
		singleFlight: true,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrFetch returns the cached content for url or calls fetch to obtain
// and store it. Without reload any cached entry is returned regardless of
// its age. With reload an entry is returned only while it is younger than
// the staleness window.
func (c *Cache) GetOrFetch(ctx context.Context, url string, fetch coinscrape.FetchFunc, reload bool) (string, error) {
	if e, ok := c.lookup(url, reload); ok {
		return e.Content, nil
	}

	if !c.singleFlight {
		return c.fetchAndStore(ctx, url, fetch)
	}

	for {
		// led is set when this caller's fetch function runs the flight.
		var led bool
		ch := c.group.DoChan(url, func() (any, error) {
			led = true
			// Another flight may have stored the page while this one waited.
			if e, ok := c.lookup(url, reload); ok {
				return e.Content, nil
			}
			return c.fetchAndStore(ctx, url, fetch)
		})

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res := <-ch:
			if res.Err == nil {
				return res.Val.(string), nil
			}
			// A flight led by a caller whose context ended says nothing
			// about this caller; start or join a new one.
			if !led && ctx.Err() == nil && isContextError(res.Err) {
				continue
			}
			return "", res.Err
		}
	}
}

// Get returns a copy of the entry for url, if present.
func (c *Cache) Get(url string) (coinscrape.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[url]
	if !ok {
		return coinscrape.CacheEntry{}, false
	}
	return *e, true
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Invalidate removes the entry for url.
func (c *Cache) Invalidate(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, url)
}

func (c *Cache) lookup(url string, reload bool) (*coinscrape.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[url]
	if !ok {
		return nil, false
	}
	if reload && c.now().Sub(e.FetchedAt) >= c.staleness {
		return nil, false
	}
	return e, true
}

func (c *Cache) fetchAndStore(ctx context.Context, url string, fetch coinscrape.FetchFunc) (string, error) {
	content, err := fetch(ctx, url)
	if err != nil {
		return "", err
	}

	e := &coinscrape.CacheEntry{
		URL:       url,
		Content:   content,
		Hash:      ComputeHash(content),
		FetchedAt: c.now(),
	}

	c.mu.Lock()
	c.entries[url] = e
	c.mu.Unlock()

	return content, nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ComputeHash returns the hex xxhash of content.
func ComputeHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}
