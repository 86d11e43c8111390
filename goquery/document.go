// Package goquery implements pattern-anchored extraction over parsed HTML
// using goquery and cascadia.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/coinscrape"
)

// Ensure Document implements coinscrape.Document at compile time.
var _ coinscrape.Document = (*Document)(nil)

// Document is a page held both as raw text, which locator patterns are
// applied to, and as a parsed tree, which relation paths walk.
// A Document is read-only after construction and safe for concurrent use.
type Document struct {
	raw string
	doc *goquery.Document
}

// NewDocument parses raw into a Document.
func NewDocument(raw string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, coinscrape.WrapError(coinscrape.EINVALID, err, "failed to parse HTML")
	}
	return &Document{raw: raw, doc: doc}, nil
}

// Raw returns the unparsed page text.
func (d *Document) Raw() string {
	return d.raw
}

// Extract locates the request's anchor once and walks every path from it.
// It fails as a whole if the anchor cannot be resolved or any path fails.
func (d *Document) Extract(req *coinscrape.ExtractionRequest) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	anchor, err := d.Locate(req.Pattern)
	if err != nil {
		return nil, err
	}

	results := make([]string, 0, len(req.Paths))
	for _, path := range req.Paths {
		sel, err := Navigate(anchor, path)
		if err != nil {
			return nil, err
		}
		content, err := content(sel, req.Mode)
		if err != nil {
			return nil, err
		}
		results = append(results, content)
	}
	return results, nil
}

func content(sel *goquery.Selection, mode coinscrape.ContentMode) (string, error) {
	if mode == coinscrape.ContentText {
		return strings.TrimSpace(sel.Text()), nil
	}
	html, err := sel.Html()
	if err != nil {
		return "", coinscrape.WrapError(coinscrape.EINTERNAL, err, "failed to render element")
	}
	return html, nil
}

// Ensure Extractor implements coinscrape.Extractor at compile time.
var _ coinscrape.Extractor = (*Extractor)(nil)

// Extractor runs one-shot extraction queries against raw page text.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Parse parses raw into a Document.
func (e *Extractor) Parse(raw string) (coinscrape.Document, error) {
	return NewDocument(raw)
}

// Extract parses raw and runs req against it.
func (e *Extractor) Extract(req *coinscrape.ExtractionRequest, raw string) ([]string, error) {
	return Extract(req, raw)
}

// Extract parses raw and runs req against it.
func Extract(req *coinscrape.ExtractionRequest, raw string) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	doc, err := NewDocument(raw)
	if err != nil {
		return nil, err
	}
	return doc.Extract(req)
}
