package scrape

import (
	"context"
	"strconv"
	"strings"

	"github.com/fwojciec/coinscrape"
)

// Markets returns up to n rows of the markets table of symbol. A table
// with fewer rows yields fewer results; a table without rows is an error.
// A non-positive n uses the configured row count.
func (s *Scraper) Markets(ctx context.Context, symbol string, n int) ([]*coinscrape.MarketRow, error) {
	return single(ctx, s.Orchestrator, symbol, s.marketsQuery(n))
}

// MarketsBatch returns up to n market rows for every symbol.
func (s *Scraper) MarketsBatch(ctx context.Context, symbols []string, n int) (*coinscrape.BatchResult[[]*coinscrape.MarketRow], error) {
	return Run(ctx, s.Orchestrator, symbols, s.marketsQuery(n))
}

// AllMarkets returns up to n market rows for every configured symbol.
func (s *Scraper) AllMarkets(ctx context.Context, n int) (*coinscrape.BatchResult[[]*coinscrape.MarketRow], error) {
	return s.MarketsBatch(ctx, s.Config.Symbols, n)
}

func (s *Scraper) marketsQuery(n int) Query[[]*coinscrape.MarketRow] {
	if n <= 0 {
		n = s.Config.Config.Markets.Rows
	}
	return Query[[]*coinscrape.MarketRow]{
		Mode: s.Config.Fetch.MarketsMode,
		URL:  s.MarketsURL,
		Extract: func(symbol, content string) ([]*coinscrape.MarketRow, error) {
			return s.extractMarkets(symbol, content, n)
		},
	}
}

// marketColumn pairs a configured cell position with the field it fills.
type marketColumn struct {
	index int
	set   func(row *coinscrape.MarketRow, text string) error
}

func (s *Scraper) marketColumns() []marketColumn {
	c := s.Config.Config.Markets.Columns
	all := []marketColumn{
		{c.Rank, func(r *coinscrape.MarketRow, text string) error {
			rank, err := strconv.Atoi(strings.TrimSpace(text))
			if err != nil {
				return coinscrape.Errorf(coinscrape.ECONFIG, "cannot parse rank %q as a number", text)
			}
			r.Rank = rank
			return nil
		}},
		{c.Source, func(r *coinscrape.MarketRow, text string) error {
			r.Source = text
			return nil
		}},
		{c.Pair, func(r *coinscrape.MarketRow, text string) error {
			r.Pair = text
			return nil
		}},
		{c.Price, func(r *coinscrape.MarketRow, text string) (err error) {
			r.Price, err = parseNumber("market price", text)
			return err
		}},
		{c.Volume, func(r *coinscrape.MarketRow, text string) (err error) {
			r.Volume, err = parseNumber("volume", text)
			return err
		}},
		{c.VolumePercent, func(r *coinscrape.MarketRow, text string) (err error) {
			r.VolumePercent, err = parseNumber("volume percentage", text)
			return err
		}},
	}

	cols := make([]marketColumn, 0, len(all))
	for _, col := range all {
		if col.index >= 0 {
			cols = append(cols, col)
		}
	}
	return cols
}

func (s *Scraper) extractMarkets(symbol, content string, n int) ([]*coinscrape.MarketRow, error) {
	doc, err := s.Extractor.Parse(content)
	if err != nil {
		return nil, err
	}

	cols := s.marketColumns()
	body := s.Config.Config.Markets.Body

	var rows []*coinscrape.MarketRow
	for i := 0; i < n; i++ {
		rowPath := body.Append(coinscrape.Child(i))

		// Probe the row first so a short table truncates instead of failing.
		if _, err := doc.Extract(&coinscrape.ExtractionRequest{
			Pattern: s.Config.Markets,
			Paths:   []coinscrape.RelationPath{rowPath},
			Mode:    coinscrape.ContentText,
		}); err != nil {
			if i > 0 && coinscrape.ErrorCode(err) == coinscrape.ETRAVERSAL {
				break
			}
			return nil, err
		}

		paths := make([]coinscrape.RelationPath, len(cols))
		for j, col := range cols {
			paths[j] = rowPath.Append(coinscrape.Child(col.index))
		}
		cells, err := doc.Extract(&coinscrape.ExtractionRequest{
			Pattern: s.Config.Markets,
			Paths:   paths,
			Mode:    coinscrape.ContentText,
		})
		if err != nil {
			return nil, err
		}

		row := &coinscrape.MarketRow{
			Symbol: coinscrape.NormalizeSymbol(symbol),
			Rank:   i + 1,
		}
		for j, col := range cols {
			if err := col.set(row, cells[j]); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
