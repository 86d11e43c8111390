package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/coinscrape"
	"golang.org/x/net/html"
)

// Navigate walks path from anchor and returns the terminal element.
// Only element nodes count as parents, children and siblings; text and
// comment nodes are skipped. A step without a matching relative fails
// with ETRAVERSAL. An empty path returns the anchor itself.
func Navigate(anchor *Anchor, path coinscrape.RelationPath) (*goquery.Selection, error) {
	if anchor == nil || anchor.node == nil {
		return nil, coinscrape.Errorf(coinscrape.EINVALID, "anchor required")
	}
	n, err := walk(anchor.node, path)
	if err != nil {
		return nil, err
	}
	return selectionOf(n), nil
}

func walk(n *html.Node, path coinscrape.RelationPath) (*html.Node, error) {
	for i, step := range path {
		next := apply(n, step)
		if next == nil {
			return nil, coinscrape.Errorf(coinscrape.ETRAVERSAL,
				"step %d (%s) of path %q has no target from <%s>", i, step, path, n.Data)
		}
		n = next
	}
	return n, nil
}

// apply returns the element one step away from n, or nil.
func apply(n *html.Node, step coinscrape.Relation) *html.Node {
	switch step.Kind {
	case coinscrape.RelationParent:
		return parentElement(n)
	case coinscrape.RelationChild:
		if step.N < 0 {
			return lastElementChild(n)
		}
		c := firstElementChild(n)
		for j := 0; j < step.N && c != nil; j++ {
			c = nextElementSibling(c)
		}
		return c
	case coinscrape.RelationSibling:
		s := nextElementSibling(n)
		for j := 0; j < step.N && s != nil; j++ {
			s = nextElementSibling(s)
		}
		return s
	default:
		return nil
	}
}

func parentElement(n *html.Node) *html.Node {
	if p := n.Parent; p != nil && p.Type == html.ElementNode {
		return p
	}
	return nil
}

func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func lastElementChild(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func nextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}
