package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/fwojciec/coinscrape"
	"github.com/fwojciec/coinscrape/cache"
	"github.com/fwojciec/coinscrape/mock"
	coinslog "github.com/fwojciec/coinscrape/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingCache_GetOrFetch(t *testing.T) {
	t.Parallel()

	debug := &slog.HandlerOptions{Level: slog.LevelDebug}

	t.Run("logs a hit when the fetch function does not run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.PageCache{
			GetOrFetchFn: func(ctx context.Context, url string, fetch coinscrape.FetchFunc, reload bool) (string, error) {
				return "cached", nil
			},
		}

		c := coinslog.NewLoggingCache(inner, slog.New(slog.NewTextHandler(&buf, debug)))
		got, err := c.GetOrFetch(context.Background(), "https://coinmarketcap.com/currencies/bitcoin/", nil, true)

		require.NoError(t, err)
		assert.Equal(t, "cached", got)
		assert.Contains(t, buf.String(), "msg=cache")
		assert.Contains(t, buf.String(), "hit=true")
		assert.Contains(t, buf.String(), "reload=true")
	})

	t.Run("logs a miss when the fetch function runs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.PageCache{
			GetOrFetchFn: func(ctx context.Context, url string, fetch coinscrape.FetchFunc, reload bool) (string, error) {
				return fetch(ctx, url)
			},
		}
		fetch := func(ctx context.Context, url string) (string, error) {
			return "fresh", nil
		}

		c := coinslog.NewLoggingCache(inner, slog.New(slog.NewTextHandler(&buf, debug)))
		got, err := c.GetOrFetch(context.Background(), "https://coinmarketcap.com/currencies/bitcoin/", fetch, false)

		require.NoError(t, err)
		assert.Equal(t, "fresh", got)
		assert.Contains(t, buf.String(), "hit=false")
	})
}

func TestLoggingCache_Changed(t *testing.T) {
	t.Parallel()

	const url = "https://coinmarketcap.com/currencies/bitcoin/"
	debug := &slog.HandlerOptions{Level: slog.LevelDebug}

	// refetch stores first, then reloads it past the staleness window.
	refetch := func(t *testing.T, first, second string) string {
		t.Helper()

		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		inner := cache.New(cache.WithStaleness(time.Minute), cache.WithClock(func() time.Time { return now }))
		var buf bytes.Buffer
		c := coinslog.NewLoggingCache(inner, slog.New(slog.NewTextHandler(&buf, debug)))

		_, err := c.GetOrFetch(context.Background(), url, func(ctx context.Context, url string) (string, error) {
			return first, nil
		}, false)
		require.NoError(t, err)
		assert.NotContains(t, buf.String(), "changed=")

		now = now.Add(time.Hour)
		buf.Reset()
		_, err = c.GetOrFetch(context.Background(), url, func(ctx context.Context, url string) (string, error) {
			return second, nil
		}, true)
		require.NoError(t, err)
		return buf.String()
	}

	t.Run("reports unchanged content on a refetch", func(t *testing.T) {
		t.Parallel()

		out := refetch(t, "<html>$61,234.50</html>", "<html>$61,234.50</html>")

		assert.Contains(t, out, "hit=false")
		assert.Contains(t, out, "changed=false")
	})

	t.Run("reports changed content on a refetch", func(t *testing.T) {
		t.Parallel()

		out := refetch(t, "<html>$61,234.50</html>", "<html>$61,301.00</html>")

		assert.Contains(t, out, "changed=true")
	})

	t.Run("omits changed on a hit", func(t *testing.T) {
		t.Parallel()

		inner := cache.New()
		var buf bytes.Buffer
		c := coinslog.NewLoggingCache(inner, slog.New(slog.NewTextHandler(&buf, debug)))
		fetch := func(ctx context.Context, url string) (string, error) { return "page", nil }

		_, err := c.GetOrFetch(context.Background(), url, fetch, false)
		require.NoError(t, err)
		_, err = c.GetOrFetch(context.Background(), url, fetch, false)
		require.NoError(t, err)

		assert.Contains(t, buf.String(), "hit=true")
		assert.NotContains(t, buf.String(), "changed=")
	})
}
