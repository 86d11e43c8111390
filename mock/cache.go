package mock

import (
	"context"

	"github.com/fwojciec/coinscrape"
)

var _ coinscrape.PageCache = (*PageCache)(nil)

// PageCache is a mock implementation of coinscrape.PageCache.
type PageCache struct {
	GetOrFetchFn func(ctx context.Context, url string, fetch coinscrape.FetchFunc, reload bool) (string, error)
}

func (c *PageCache) GetOrFetch(ctx context.Context, url string, fetch coinscrape.FetchFunc, reload bool) (string, error) {
	return c.GetOrFetchFn(ctx, url, fetch, reload)
}
