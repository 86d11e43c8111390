package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/coinscrape"
	"golang.org/x/net/html"
)

// Anchor is the element a locator pattern resolved to.
type Anchor struct {
	// Tag and Predicate are the two groups captured from the raw page.
	Tag       string
	Predicate string

	// Selector is the structural selector derived from them.
	Selector string

	node *html.Node
}

// Selection returns the anchor element as a goquery selection.
func (a *Anchor) Selection() *goquery.Selection {
	return selectionOf(a.node)
}

// Locate applies pattern to the raw page text, derives the selector
// tag[predicate] and resolves the first element in the parsed tree that
// satisfies it.
//
// Returns EPATTERN when the pattern does not match the raw text and
// EELEMENT when the derived selector is invalid or matches nothing, e.g.
// when the pattern hit text inside an unrendered script payload.
func (d *Document) Locate(pattern *coinscrape.LocatorPattern) (*Anchor, error) {
	if pattern == nil {
		return nil, coinscrape.Errorf(coinscrape.EINVALID, "locator pattern required")
	}

	tag, predicate, ok := pattern.Match(d.raw)
	if !ok {
		return nil, coinscrape.Errorf(coinscrape.EPATTERN, "pattern %q did not match the page", pattern)
	}

	selector := tag + "[" + predicate + "]"
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, coinscrape.WrapError(coinscrape.EELEMENT, err, "derived selector %q is invalid", selector)
	}

	sel := d.doc.FindMatcher(matcher).First()
	if sel.Length() == 0 {
		return nil, coinscrape.Errorf(coinscrape.EELEMENT, "no element matches %q", selector)
	}

	return &Anchor{
		Tag:       tag,
		Predicate: predicate,
		Selector:  selector,
		node:      sel.Get(0),
	}, nil
}

// selectionOf wraps a single node in a selection rooted at that node.
func selectionOf(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}
