package slog

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/coinscrape"
)

// Ensure LoggingCache implements coinscrape.PageCache.
var _ coinscrape.PageCache = (*LoggingCache)(nil)

// LoggingCache wraps a PageCache with debug logging of lookups.
type LoggingCache struct {
	next   coinscrape.PageCache
	logger *slog.Logger
}

// NewLoggingCache creates a new LoggingCache.
func NewLoggingCache(next coinscrape.PageCache, logger *slog.Logger) *LoggingCache {
	return &LoggingCache{next: next, logger: logger}
}

// GetOrFetch delegates to the wrapped cache and logs whether the fetch
// function had to run. When the wrapped cache exposes its entries, a
// refetch of a page that was already stored also logs whether the content
// changed.
func (c *LoggingCache) GetOrFetch(ctx context.Context, url string, fetch coinscrape.FetchFunc, reload bool) (content string, err error) {
	// The fetch may run on another goroutine when lookups are collapsed.
	var missed atomic.Bool
	wrapped := func(ctx context.Context, url string) (string, error) {
		missed.Store(true)
		return fetch(ctx, url)
	}

	reader, _ := c.next.(coinscrape.CacheReader)
	var prev coinscrape.CacheEntry
	var stored bool
	if reader != nil {
		prev, stored = reader.Get(url)
	}

	defer func(begin time.Time) {
		attrs := []any{
			"url", url,
			"reload", reload,
			"hit", !missed.Load(),
			"duration", time.Since(begin),
			"err", err,
		}
		if stored && missed.Load() && err == nil {
			if cur, ok := reader.Get(url); ok {
				attrs = append(attrs, "changed", cur.Hash != prev.Hash)
			}
		}
		c.logger.Debug("cache", attrs...)
	}(time.Now())
	return c.next.GetOrFetch(ctx, url, wrapped, reload)
}
