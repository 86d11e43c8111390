package scrape

import (
	"context"

	"github.com/fwojciec/coinscrape"
)

var detailsPath = coinscrape.RelationPath{coinscrape.Parent()}

// Details returns the description of symbol.
func (s *Scraper) Details(ctx context.Context, symbol string) (*coinscrape.Details, error) {
	return single(ctx, s.Orchestrator, symbol, s.detailsQuery())
}

// DetailsBatch returns the description of every symbol.
func (s *Scraper) DetailsBatch(ctx context.Context, symbols []string) (*coinscrape.BatchResult[*coinscrape.Details], error) {
	return Run(ctx, s.Orchestrator, symbols, s.detailsQuery())
}

// AllDetails returns the description of every configured symbol.
func (s *Scraper) AllDetails(ctx context.Context) (*coinscrape.BatchResult[*coinscrape.Details], error) {
	return s.DetailsBatch(ctx, s.Config.Symbols)
}

func (s *Scraper) detailsQuery() Query[*coinscrape.Details] {
	return Query[*coinscrape.Details]{
		Mode:    s.Config.Fetch.DetailsMode,
		URL:     s.PriceURL,
		Extract: s.extractDetails,
	}
}

// extractDetails reads the block around the "What is" heading, falling
// back to the "About" heading used by smaller coins.
func (s *Scraper) extractDetails(symbol, content string) (*coinscrape.Details, error) {
	html, err := s.descriptionHTML(content, s.Config.WhatIs)
	switch coinscrape.ErrorCode(err) {
	case coinscrape.EPATTERN, coinscrape.EELEMENT:
		html, err = s.descriptionHTML(content, s.Config.About)
	}
	if err != nil {
		return nil, err
	}

	d := &coinscrape.Details{
		Symbol: coinscrape.NormalizeSymbol(symbol),
		Text:   s.Cleaner.Clean(html),
	}
	if s.Converter != nil {
		if d.Markdown, err = s.Converter.Convert(html); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (s *Scraper) descriptionHTML(content string, pattern *coinscrape.LocatorPattern) (string, error) {
	values, err := s.Extractor.Extract(&coinscrape.ExtractionRequest{
		Pattern: pattern,
		Paths:   []coinscrape.RelationPath{detailsPath},
		Mode:    coinscrape.ContentHTML,
	}, content)
	if err != nil {
		return "", err
	}
	return values[0], nil
}
