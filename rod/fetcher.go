package rod

import (
	"context"
	"time"

	"github.com/fwojciec/coinscrape"
)

// DefaultFetchTimeout is the default timeout for a single rendered fetch.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements coinscrape.Fetcher at compile time.
var _ coinscrape.Fetcher = (*Fetcher)(nil)

// Fetcher adapts a Session to coinscrape.Fetcher. Fetches are serialised
// by the session.
type Fetcher struct {
	session *Session
	timeout time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchTimeout sets the deadline applied to each fetch.
// Defaults to DefaultFetchTimeout if not specified.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher wraps session. The Fetcher takes ownership of the session and
// closes it on Close.
func NewFetcher(session *Session, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		session: session,
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch navigates the session to url and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	return f.session.Navigate(ctx, url)
}

// Close releases the session.
func (f *Fetcher) Close() error {
	return f.session.Close()
}

// LauncherPID returns the process ID of the browser launcher, or 0 when
// connected to a remote renderer.
func (f *Fetcher) LauncherPID() int {
	return f.session.LauncherPID()
}
