package mock

import "github.com/fwojciec/coinscrape"

var _ coinscrape.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of coinscrape.Extractor.
type Extractor struct {
	ParseFn   func(raw string) (coinscrape.Document, error)
	ExtractFn func(req *coinscrape.ExtractionRequest, raw string) ([]string, error)
}

func (e *Extractor) Parse(raw string) (coinscrape.Document, error) {
	return e.ParseFn(raw)
}

func (e *Extractor) Extract(req *coinscrape.ExtractionRequest, raw string) ([]string, error) {
	return e.ExtractFn(req, raw)
}

var _ coinscrape.Document = (*Document)(nil)

// Document is a mock implementation of coinscrape.Document.
type Document struct {
	ExtractFn func(req *coinscrape.ExtractionRequest) ([]string, error)
}

func (d *Document) Extract(req *coinscrape.ExtractionRequest) ([]string, error) {
	return d.ExtractFn(req)
}

var _ coinscrape.Cleaner = (*Cleaner)(nil)

// Cleaner is a mock implementation of coinscrape.Cleaner.
type Cleaner struct {
	CleanFn func(text string) string
}

func (c *Cleaner) Clean(text string) string {
	return c.CleanFn(text)
}
