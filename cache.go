package coinscrape

import (
	"context"
	"time"
)

// CacheEntry is a fetched page held by the page cache. Hash identifies the
// content so that a refetch can tell whether the page changed.
type CacheEntry struct {
	URL       string
	Content   string
	Hash      string
	FetchedAt time.Time
}

// PageCache maps URLs to fetched content.
type PageCache interface {
	// GetOrFetch returns cached content for url or calls fetch to obtain it.
	// Without reload a cached entry is returned regardless of age; with
	// reload it is returned only while younger than the staleness window.
	GetOrFetch(ctx context.Context, url string, fetch FetchFunc, reload bool) (string, error)
}

// CacheReader exposes stored entries of a page cache.
type CacheReader interface {
	// Get returns a copy of the entry for url, if present.
	Get(url string) (CacheEntry, bool)
}
