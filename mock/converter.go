package mock

import "github.com/fwojciec/coinscrape"

var _ coinscrape.Converter = (*Converter)(nil)

// Converter is a mock implementation of coinscrape.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
