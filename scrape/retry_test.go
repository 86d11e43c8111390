package scrape_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/coinscrape"
	"github.com/fwojciec/coinscrape/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetryDelays(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{time.Millisecond, time.Millisecond}

	t.Run("returns the first success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		html, err := scrape.FetchWithRetryDelays(context.Background(), "https://coinmarketcap.com/", func(ctx context.Context, url string) (string, error) {
			calls++
			return "ok", nil
		}, nil, delays)

		require.NoError(t, err)
		assert.Equal(t, "ok", html)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after every delay is used", func(t *testing.T) {
		t.Parallel()

		calls := 0
		var retries []any
		_, err := scrape.FetchWithRetryDelays(context.Background(), "https://coinmarketcap.com/", func(ctx context.Context, url string) (string, error) {
			calls++
			return "", coinscrape.Errorf(coinscrape.EFETCH, "HTTP 502")
		}, func(msg string, args ...any) {
			retries = append(retries, args...)
		}, delays)

		assert.Equal(t, coinscrape.EFETCH, coinscrape.ErrorCode(err))
		assert.Equal(t, 3, calls)
		assert.NotEmpty(t, retries)
	})

	t.Run("does not retry non-retryable errors", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := scrape.FetchWithRetryDelays(context.Background(), "https://coinmarketcap.com/", func(ctx context.Context, url string) (string, error) {
			calls++
			return "", coinscrape.Errorf(coinscrape.ENOTFOUND, "HTTP 404")
		}, nil, delays)

		assert.Equal(t, coinscrape.ENOTFOUND, coinscrape.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops waiting when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		_, err := scrape.FetchWithRetryDelays(ctx, "https://coinmarketcap.com/", func(ctx context.Context, url string) (string, error) {
			cancel()
			return "", errors.New("connection reset")
		}, nil, []time.Duration{time.Hour})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, scrape.Retryable(coinscrape.Errorf(coinscrape.EFETCH, "x")))
	assert.True(t, scrape.Retryable(coinscrape.Errorf(coinscrape.ETIMEOUT, "x")))
	assert.True(t, scrape.Retryable(errors.New("x")))
	assert.False(t, scrape.Retryable(coinscrape.Errorf(coinscrape.ENOTFOUND, "x")))
	assert.False(t, scrape.Retryable(coinscrape.Errorf(coinscrape.ERENDERER, "x")))
}
