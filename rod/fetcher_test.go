//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/coinscrape"
	"github.com/fwojciec/coinscrape/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFetcher(t *testing.T, sessionOpts []rod.SessionOption, opts ...rod.FetcherOption) *rod.Fetcher {
	t.Helper()
	session, err := rod.NewSession(sessionOpts...)
	require.NoError(t, err)
	return rod.NewFetcher(session, opts...)
}

func TestFetcher_Fetch_ReturnsRenderedHTML(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Markets</title></head>
<body>
<table class="cmc-table"><tbody id="rows">Loading...</tbody></table>
<script>
document.getElementById('rows').innerHTML = '<tr><td>1</td><td>Binance</td><td>BTC/USDT</td></tr>';
</script>
</body>
</html>`))
	}))
	defer srv.Close()

	fetcher := newFetcher(t, []rod.SessionOption{rod.WithStealth(true)})
	defer fetcher.Close()

	html, err := fetcher.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, html, "<td>Binance</td>")
	assert.NotContains(t, html, "Loading...")
}

func TestFetcher_Fetch_ContextCancellation(t *testing.T) {
	t.Parallel()

	fetcher := newFetcher(t, nil)
	defer fetcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.Fetch(ctx, "http://example.com")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, coinscrape.EFETCH, coinscrape.ErrorCode(err))
}

func TestFetcher_Fetch_TimeoutTriggersOnSlowPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>delayed</body></html>`))
	}))
	defer srv.Close()

	fetcher := newFetcher(t, nil, rod.WithFetchTimeout(100*time.Millisecond))
	defer fetcher.Close()

	_, err := fetcher.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, coinscrape.ETIMEOUT, coinscrape.ErrorCode(err))
}

func TestFetcher_Fetch_RecoversAfterTimeout(t *testing.T) {
	t.Parallel()

	var slow atomic.Bool
	slow.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slow.Load() {
			time.Sleep(500 * time.Millisecond)
		}
		_, _ = w.Write([]byte(`<html><body>ready</body></html>`))
	}))
	defer srv.Close()

	fetcher := newFetcher(t, nil, rod.WithFetchTimeout(200*time.Millisecond))
	defer fetcher.Close()

	_, err := fetcher.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	slow.Store(false)
	html, err := fetcher.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "ready")
}

func TestSession_RecyclesPageAfterMaxNavigations(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>page</body></html>`))
	}))
	defer srv.Close()

	session, err := rod.NewSession(rod.WithMaxNavigations(2))
	require.NoError(t, err)
	defer session.Close()

	for range 5 {
		html, err := session.Navigate(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Contains(t, html, "page")
	}
}

func TestFetcher_Close_Idempotent(t *testing.T) {
	t.Parallel()

	fetcher := newFetcher(t, nil)

	require.NoError(t, fetcher.Close())
	require.NoError(t, fetcher.Close())
}

func TestFetcher_Fetch_AfterClose_ReturnsError(t *testing.T) {
	t.Parallel()

	fetcher := newFetcher(t, nil)
	require.NoError(t, fetcher.Close())

	_, err := fetcher.Fetch(context.Background(), "http://example.com")

	require.Error(t, err)
	assert.Equal(t, coinscrape.EINVALID, coinscrape.ErrorCode(err))
	assert.Contains(t, coinscrape.ErrorMessage(err), "closed")
}
