package scrape

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/coinscrape"
	"golang.org/x/time/rate"
)

var _ coinscrape.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces static requests with one token bucket per host.
// Hosts are matched case-insensitively and never wait on each other.
type DomainLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewDomainLimiter creates a DomainLimiter from the fetch settings. A zero
// RequestsPerSecond lets every request through.
func NewDomainLimiter(cfg coinscrape.FetchConfig) *DomainLimiter {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &DomainLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   limit,
		burst:   max(cfg.Burst, 1),
	}
}

// Wait blocks until a request to host may start. A wait that would outlast
// the deadline of ctx fails with ETIMEOUT without waiting. When ctx ends
// first the context error is returned as is.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	host = strings.ToLower(host)
	if err := d.bucket(host).Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return coinscrape.WrapError(coinscrape.ETIMEOUT, err, "rate limit wait for %s exceeds deadline", host)
	}
	return nil
}

func (d *DomainLimiter) bucket(host string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.buckets[host]
	if !ok {
		b = rate.NewLimiter(d.limit, d.burst)
		d.buckets[host] = b
	}
	return b
}
