// Package cleanup provides the text post-processing pipeline applied to
// extracted content.
package cleanup

import (
	"regexp"
	"strings"

	"github.com/fwojciec/coinscrape"
)

// TitleTemplate is the replacement applied to every match of the title
// pattern. $1 is the heading text.
const TitleTemplate = "\n------------$1------------\n"

// Ensure Pipeline implements coinscrape.Cleaner at compile time.
var _ coinscrape.Cleaner = (*Pipeline)(nil)

type replacement struct {
	from *regexp.Regexp
	to   string
}

// Pipeline applies cleanup rules in a fixed order:
// strip, replace, newline normalisation, remove, title.
// A Pipeline is immutable and safe for concurrent use.
type Pipeline struct {
	strip   []*regexp.Regexp
	replace []replacement
	remove  []string
	title   *regexp.Regexp
}

// Compile builds a Pipeline from rules. Returns ECONFIG if any pattern
// does not compile.
func Compile(rules coinscrape.CleanupRules) (*Pipeline, error) {
	p := &Pipeline{
		remove: append([]string(nil), rules.Remove...),
	}

	for _, s := range rules.Strip {
		re, err := regexp.Compile(s)
		if err != nil {
			return nil, coinscrape.WrapError(coinscrape.ECONFIG, err, "invalid strip pattern %q", s)
		}
		p.strip = append(p.strip, re)
	}

	for _, r := range rules.Replace {
		re, err := regexp.Compile(r.From)
		if err != nil {
			return nil, coinscrape.WrapError(coinscrape.ECONFIG, err, "invalid replace pattern %q", r.From)
		}
		p.replace = append(p.replace, replacement{from: re, to: r.To})
	}

	if rules.Title != "" {
		re, err := regexp.Compile(rules.Title)
		if err != nil {
			return nil, coinscrape.WrapError(coinscrape.ECONFIG, err, "invalid title pattern %q", rules.Title)
		}
		p.title = re
	}

	return p, nil
}

// Clean applies the pipeline to text.
func (p *Pipeline) Clean(text string) string {
	for _, re := range p.strip {
		text = re.ReplaceAllString(text, "")
	}

	for _, r := range p.replace {
		text = r.from.ReplaceAllString(text, r.to)
	}

	// Configuration files carry newlines as the two characters `\n`.
	text = strings.ReplaceAll(text, `\n`, "\n")

	for _, s := range p.remove {
		if s == "" {
			continue
		}
		text = strings.ReplaceAll(text, s, "")
	}

	if p.title != nil {
		text = p.title.ReplaceAllString(text, TitleTemplate)
	}

	return text
}
