package coinscrape

import "fmt"

// PriceResult is the current price of a symbol and its percentage change.
// Change is positive when the page marks the move as up.
type PriceResult struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}

// String formats the result as a tab separated line.
func (r *PriceResult) String() string {
	return fmt.Sprintf("%s\t%g\t%+.2f%%", r.Symbol, r.Price, r.Change)
}

// MarketRow is one trading venue row from a symbol's markets table.
type MarketRow struct {
	Symbol        string  `json:"symbol"`
	Rank          int     `json:"rank"`
	Source        string  `json:"source"`
	Pair          string  `json:"pair"`
	Price         float64 `json:"price"`
	Volume        float64 `json:"volume"`
	VolumePercent float64 `json:"volumePercent"`
}

// String formats the row as a tab separated line.
func (r *MarketRow) String() string {
	return fmt.Sprintf("%d\t%s\t%s\t%g\t%.0f\t%.2f%%",
		r.Rank, r.Source, r.Pair, r.Price, r.Volume, r.VolumePercent)
}

// Details is the descriptive text for a symbol.
type Details struct {
	Symbol string `json:"symbol"`

	// Text is the description after the cleanup pipeline.
	Text string `json:"text"`

	// Markdown is the raw description converted to Markdown.
	Markdown string `json:"markdown"`
}
