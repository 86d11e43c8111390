package scrape

import (
	"context"
	"time"

	"github.com/fwojciec/coinscrape"
)

// LogFunc is the signature for a logging function.
type LogFunc func(msg string, args ...any)

// DefaultRetryDelays returns the backoff delays for static fetch retries.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second}
}

// Retryable reports whether a failed fetch is worth repeating. Missing
// pages, invalid input and a dead renderer are not.
func Retryable(err error) bool {
	switch coinscrape.ErrorCode(err) {
	case coinscrape.ENOTFOUND, coinscrape.EINVALID, coinscrape.ERENDERER:
		return false
	}
	return true
}

// FetchWithRetryDelays calls fetch until it succeeds, returns a
// non-retryable error, or every delay has been used. The logger, if
// provided, is called for each retry attempt.
func FetchWithRetryDelays(ctx context.Context, url string, fetch coinscrape.FetchFunc, logger LogFunc, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 || !Retryable(err) {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if logger != nil {
			logger("retry", "url", url, "attempt", attempt+2, "err", err)
		}

		t := time.NewTimer(delays[attempt])
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}

	return "", lastErr
}
