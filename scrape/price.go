package scrape

import (
	"context"
	"strconv"
	"strings"

	"github.com/fwojciec/coinscrape"
)

// Relation paths from the price anchor.
var (
	pricePath  = coinscrape.RelationPath{coinscrape.Child(0)}
	changePath = coinscrape.RelationPath{coinscrape.Child(0), coinscrape.Sibling(0)}
)

// Price returns the current price of symbol. With reload the cached page
// is used only while it is within the staleness window.
func (s *Scraper) Price(ctx context.Context, symbol string, reload bool) (*coinscrape.PriceResult, error) {
	return single(ctx, s.Orchestrator, symbol, s.priceQuery(reload))
}

// Prices returns the price of every symbol.
func (s *Scraper) Prices(ctx context.Context, symbols []string, reload bool) (*coinscrape.BatchResult[*coinscrape.PriceResult], error) {
	return Run(ctx, s.Orchestrator, symbols, s.priceQuery(reload))
}

// AllPrices returns the price of every configured symbol.
func (s *Scraper) AllPrices(ctx context.Context, reload bool) (*coinscrape.BatchResult[*coinscrape.PriceResult], error) {
	return s.Prices(ctx, s.Config.Symbols, reload)
}

func (s *Scraper) priceQuery(reload bool) Query[*coinscrape.PriceResult] {
	return Query[*coinscrape.PriceResult]{
		Mode:    s.Config.Fetch.PriceMode,
		URL:     s.PriceURL,
		Reload:  reload,
		Extract: s.extractPrice,
	}
}

func (s *Scraper) extractPrice(symbol, content string) (*coinscrape.PriceResult, error) {
	values, err := s.Extractor.Extract(&coinscrape.ExtractionRequest{
		Pattern: s.Config.Price,
		Paths:   []coinscrape.RelationPath{pricePath, changePath},
		Mode:    coinscrape.ContentHTML,
	}, content)
	if err != nil {
		return nil, err
	}

	price, err := parseNumber("price", values[0])
	if err != nil {
		return nil, err
	}
	change, err := s.parseChange(values[1])
	if err != nil {
		return nil, err
	}

	return &coinscrape.PriceResult{
		Symbol: coinscrape.NormalizeSymbol(symbol),
		Price:  price,
		Change: change,
	}, nil
}

// parseChange reads the signed percentage from the markup of the change
// block. The direction comes from the class of the caret icon.
func (s *Scraper) parseChange(block string) (float64, error) {
	m := s.Config.Change.FindStringSubmatch(block)
	if m == nil {
		return 0, coinscrape.Errorf(coinscrape.ECONFIG, "percentage block %q does not match the change pattern", block)
	}
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, coinscrape.Errorf(coinscrape.ECONFIG, "cannot parse percentage %q as a number", m[2])
	}
	if !strings.Contains(m[1], s.Config.Patterns.UpMarker) {
		v = -v
	}
	return v, nil
}
