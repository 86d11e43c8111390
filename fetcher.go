package coinscrape

import "context"

// Fetcher retrieves page source from URLs.
// Static implementations are safe for concurrent use; rendered
// implementations serialise navigations internally.
type Fetcher interface {
	// Fetch returns the page source for the URL.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// FetchFunc is the signature for a single page retrieval.
type FetchFunc func(ctx context.Context, url string) (string, error)

// FetchMode selects which retrieval path a query uses.
type FetchMode string

// Fetch modes.
const (
	// FetchStatic is a plain HTTP GET. Fully parallel.
	FetchStatic FetchMode = "static"
	// FetchRendered navigates the shared renderer session. Serialised.
	FetchRendered FetchMode = "rendered"
)

// Validate returns an error if the mode is unknown.
func (m FetchMode) Validate() error {
	switch m {
	case FetchStatic, FetchRendered:
		return nil
	}
	return Errorf(ECONFIG, "unknown fetch mode %q", string(m))
}

// DomainLimiter rate limits requests per domain.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns ETIMEOUT when the wait would outlast the deadline of ctx and
	// the context error when ctx ends first.
	Wait(ctx context.Context, domain string) error
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	Convert(html string) (string, error)
}
