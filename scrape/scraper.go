package scrape

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/fwojciec/coinscrape"
)

// Scraper implements the site queries: prices, descriptions and market
// tables. Each query is available for one symbol, a list of symbols and
// the configured symbol list.
type Scraper struct {
	Config       *coinscrape.CompiledConfig
	Orchestrator *Orchestrator
	Extractor    coinscrape.Extractor
	Cleaner      coinscrape.Cleaner

	// Converter renders descriptions as Markdown. Optional.
	Converter coinscrape.Converter
}

// PriceURL returns the page that carries the price of symbol.
func (s *Scraper) PriceURL(symbol string) string {
	return s.baseURL() + "/currencies/" + url.PathEscape(coinscrape.NormalizeSymbol(symbol)) + "/"
}

// MarketsURL returns the page that carries the markets table of symbol.
func (s *Scraper) MarketsURL(symbol string) string {
	return s.PriceURL(symbol) + "markets/"
}

func (s *Scraper) baseURL() string {
	return strings.TrimRight(s.Config.BaseURL, "/")
}

// single runs a one-symbol batch and unwraps its outcome.
func single[T any](ctx context.Context, o *Orchestrator, symbol string, q Query[T]) (T, error) {
	var zero T
	res, err := Run(ctx, o, []string{symbol}, q)
	if err != nil && (res == nil || res.Outcomes[0].Err == nil) {
		return zero, err
	}
	outcome := res.Outcomes[0]
	if outcome.Err != nil {
		return zero, outcome.Err
	}
	return outcome.Value, nil
}

// parseNumber parses text such as "$61,234.50" or "12.5%".
func parseNumber(what, text string) (float64, error) {
	t := strings.NewReplacer("$", "", ",", "", "%", "").Replace(strings.TrimSpace(text))
	v, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
	if err != nil {
		return 0, coinscrape.Errorf(coinscrape.ECONFIG, "cannot parse %s %q as a number", what, text)
	}
	return v, nil
}
