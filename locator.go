package coinscrape

import "regexp"

// LocatorPattern is a compiled anchor pattern. Capture group 1 is the tag
// name and capture group 2 is the attribute predicate, e.g.
//
//	(div) (class=".*priceValue.*")
type LocatorPattern struct {
	re     *regexp.Regexp
	source string
}

// ParseLocatorPattern compiles s and verifies it declares exactly two
// capture groups. Returns ECONFIG otherwise.
func ParseLocatorPattern(s string) (*LocatorPattern, error) {
	if s == "" {
		return nil, Errorf(ECONFIG, "locator pattern required")
	}
	re, err := regexp.Compile(s)
	if err != nil {
		return nil, WrapError(ECONFIG, err, "invalid locator pattern %q", s)
	}
	if n := re.NumSubexp(); n != 2 {
		return nil, Errorf(ECONFIG, "locator pattern %q must have 2 capture groups, has %d", s, n)
	}
	return &LocatorPattern{re: re, source: s}, nil
}

// MustParseLocatorPattern is like ParseLocatorPattern but panics on error.
// It is intended for patterns known at compile time.
func MustParseLocatorPattern(s string) *LocatorPattern {
	p, err := ParseLocatorPattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Match applies the pattern to raw page text and returns the tag name and
// attribute predicate of the first match.
func (p *LocatorPattern) Match(raw string) (tag, predicate string, ok bool) {
	m := p.re.FindStringSubmatch(raw)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// String returns the pattern source.
func (p *LocatorPattern) String() string {
	if p == nil {
		return ""
	}
	return p.source
}
