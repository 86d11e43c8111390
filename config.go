package coinscrape

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

// CurrentConfigVersion is the configuration schema version this build reads.
const CurrentConfigVersion = 1

// DefaultBaseURL is the site the default patterns are written for.
const DefaultBaseURL = "https://coinmarketcap.com"

// Config holds everything the scraper reads from the user's configuration.
type Config struct {
	Version  int
	BaseURL  string
	Symbols  []string
	Patterns PatternConfig
	Cleanup  CleanupRules
	Markets  MarketConfig
	Cache    CacheConfig
	Fetch    FetchConfig
	Renderer RendererConfig
}

// PatternConfig holds the locator patterns for each query.
type PatternConfig struct {
	// Price anchors the price block. Its first child is the price and
	// that child's next sibling the percentage block.
	Price string

	// WhatIs and About anchor the description heading; About is tried
	// when WhatIs does not match.
	WhatIs string
	About  string

	// Markets anchors the markets table.
	Markets string

	// Change matches the percentage markup. Group 1 is the class of the
	// direction icon, group 2 the unsigned number.
	Change string

	// UpMarker is the class fragment that marks an upward move.
	UpMarker string
}

// Replacement is a single "from → to" cleanup rule. From is a regular
// expression; To may reference its groups as $1.
type Replacement struct {
	From string
	To   string
}

// CleanupRules drive the cleanup pipeline. Order within each list matters.
type CleanupRules struct {
	Strip   []string
	Replace []Replacement
	Remove  []string
	Title   string
}

// MarketColumns are zero-based cell positions within a markets table row.
// A negative position means the column is absent.
type MarketColumns struct {
	Rank          int
	Source        int
	Pair          int
	Price         int
	Volume        int
	VolumePercent int
}

// MarketConfig controls market table extraction.
type MarketConfig struct {
	// Rows is the default number of rows to read.
	Rows int

	// Body is the path from the table anchor to the element whose
	// children are the rows.
	Body RelationPath

	Columns MarketColumns
}

// CacheConfig controls the page cache.
type CacheConfig struct {
	// Staleness is how long a page may be reused when a reload is requested.
	Staleness time.Duration

	// SingleFlight collapses concurrent fetches of the same URL.
	SingleFlight bool
}

// FetchConfig controls the fetch orchestrator.
type FetchConfig struct {
	// Concurrency bounds parallel static tasks. Zero means unbounded.
	Concurrency int

	// Timeout is the deadline of a single task.
	Timeout time.Duration

	// RetryDelays are the waits between static fetch attempts.
	RetryDelays []time.Duration

	// RequestsPerSecond limits static requests per domain. Zero disables it.
	RequestsPerSecond float64

	// Burst is how many static requests to one domain may start back to
	// back before the rate applies. Zero means one.
	Burst int

	PriceMode   FetchMode
	DetailsMode FetchMode
	MarketsMode FetchMode
}

// RendererConfig controls the rendering session.
type RendererConfig struct {
	// ControlURL of an already running renderer. When empty a local
	// headless browser is launched.
	ControlURL string

	Headless bool
	Stealth  bool

	// MaxNavigations recycles the session page after this many loads.
	MaxNavigations int

	// Settle is an extra wait after load for client side rendering.
	Settle time.Duration
}

// DefaultConfig returns a configuration with explicit defaults for every
// field.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		BaseURL: DefaultBaseURL,
		Symbols: []string{"bitcoin", "ethereum", "cardano"},
		Patterns: PatternConfig{
			Price:    `(div) (class=".{1,20}priceTitle__.{1,20}")>`,
			WhatIs:   `<(h\d)\s{1}(.{1,20}="what-is-.*?")>.*?</h\d>`,
			About:    `<(h2)\s{1}.{1,20}\s{1}(class=".*?")>About.{1,30}</h2>`,
			Markets:  `<(table) (class="[^"]*cmc-table[^"]*")>`,
			Change:   `<span class="([^"]{1,40})"></span>([0-9]+(?:[.][0-9]*)?)(?:<!-- -->)?%`,
			UpMarker: "icon-Caret-up",
		},
		Cleanup: CleanupRules{
			Strip: []string{
				`<a[^>]*>`, `</a>`,
				`<span[^>]*>`, `</span>`,
				`</?strong>`, `</?em>`,
				`<!-- -->`,
			},
			Replace: []Replacement{
				{From: `<h\d[^>]*>`, To: "##"},
				{From: `</h\d>`, To: "##"},
				{From: `</p>`, To: `\n`},
				{From: `<p[^>]*>`, To: ""},
			},
			Remove: []string{"<div>", "</div>", "&nbsp;"},
			Title:  `##(.*?)##`,
		},
		Markets: MarketConfig{
			Rows: 3,
			Body: RelationPath{Child(-1)},
			Columns: MarketColumns{
				Rank:          0,
				Source:        1,
				Pair:          2,
				Price:         3,
				Volume:        6,
				VolumePercent: 7,
			},
		},
		Cache: CacheConfig{
			Staleness:    60 * time.Second,
			SingleFlight: true,
		},
		Fetch: FetchConfig{
			Concurrency:       8,
			Timeout:           30 * time.Second,
			RetryDelays:       []time.Duration{1 * time.Second, 2 * time.Second},
			RequestsPerSecond: 2,
			Burst:             1,
			PriceMode:         FetchStatic,
			DetailsMode:       FetchStatic,
			MarketsMode:       FetchRendered,
		},
		Renderer: RendererConfig{
			Headless:       true,
			Stealth:        true,
			MaxNavigations: 50,
		},
	}
}

// UsesRenderer reports whether any query is configured for the rendered
// fetch path.
func (c *Config) UsesRenderer() bool {
	return c.Fetch.PriceMode == FetchRendered ||
		c.Fetch.DetailsMode == FetchRendered ||
		c.Fetch.MarketsMode == FetchRendered
}

// Validate returns an error if the configuration cannot be used. Every
// pattern is compiled here so that a broken pattern fails at load time
// rather than at first use.
func (c *Config) Validate() error {
	_, err := c.Compile()
	return err
}

// CompiledConfig holds the compiled locator patterns of a Config.
type CompiledConfig struct {
	*Config

	Price   *LocatorPattern
	WhatIs  *LocatorPattern
	About   *LocatorPattern
	Markets *LocatorPattern
	Change  *regexp.Regexp
}

// Compile validates the configuration and compiles its patterns.
func (c *Config) Compile() (*CompiledConfig, error) {
	if c.Version == 0 || c.Version > CurrentConfigVersion {
		return nil, Errorf(ECONFIG, "unsupported config version %d", c.Version)
	}
	if c.BaseURL == "" {
		return nil, Errorf(ECONFIG, "base URL required")
	}
	for _, s := range c.Symbols {
		if strings.TrimSpace(s) == "" {
			return nil, Errorf(ECONFIG, "empty symbol in symbol list")
		}
	}

	cc := &CompiledConfig{Config: c}
	var err error
	if cc.Price, err = ParseLocatorPattern(c.Patterns.Price); err != nil {
		return nil, err
	}
	if cc.WhatIs, err = ParseLocatorPattern(c.Patterns.WhatIs); err != nil {
		return nil, err
	}
	if cc.About, err = ParseLocatorPattern(c.Patterns.About); err != nil {
		return nil, err
	}
	if cc.Markets, err = ParseLocatorPattern(c.Patterns.Markets); err != nil {
		return nil, err
	}

	if cc.Change, err = regexp.Compile(c.Patterns.Change); err != nil {
		return nil, WrapError(ECONFIG, err, "invalid change pattern %q", c.Patterns.Change)
	}
	if n := cc.Change.NumSubexp(); n != 2 {
		return nil, Errorf(ECONFIG, "change pattern must have 2 capture groups, has %d", n)
	}
	if c.Patterns.UpMarker == "" {
		return nil, Errorf(ECONFIG, "up marker required")
	}

	if err := c.Cleanup.Validate(); err != nil {
		return nil, err
	}

	if c.Markets.Rows < 0 {
		return nil, Errorf(ECONFIG, "market rows must not be negative")
	}
	if c.Markets.Columns.Source < 0 || c.Markets.Columns.Pair < 0 || c.Markets.Columns.Price < 0 {
		return nil, Errorf(ECONFIG, "market source, pair and price columns are required")
	}

	if c.Cache.Staleness < 0 {
		return nil, Errorf(ECONFIG, "cache staleness must not be negative")
	}
	if c.Fetch.Concurrency < 0 {
		return nil, Errorf(ECONFIG, "fetch concurrency must not be negative")
	}
	if c.Fetch.Timeout < 0 {
		return nil, Errorf(ECONFIG, "fetch timeout must not be negative")
	}
	if c.Fetch.RequestsPerSecond < 0 {
		return nil, Errorf(ECONFIG, "requests per second must not be negative")
	}
	if c.Fetch.Burst < 0 {
		return nil, Errorf(ECONFIG, "fetch burst must not be negative")
	}
	for _, m := range []FetchMode{c.Fetch.PriceMode, c.Fetch.DetailsMode, c.Fetch.MarketsMode} {
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}

	return cc, nil
}

// Validate compiles every cleanup pattern and returns ECONFIG for the
// first one that does not compile.
func (r *CleanupRules) Validate() error {
	for _, s := range r.Strip {
		if _, err := regexp.Compile(s); err != nil {
			return WrapError(ECONFIG, err, "invalid strip pattern %q", s)
		}
	}
	for _, rep := range r.Replace {
		if _, err := regexp.Compile(rep.From); err != nil {
			return WrapError(ECONFIG, err, "invalid replace pattern %q", rep.From)
		}
	}
	if r.Title != "" {
		if _, err := regexp.Compile(r.Title); err != nil {
			return WrapError(ECONFIG, err, "invalid title pattern %q", r.Title)
		}
	}
	return nil
}

// NormalizeSymbol returns the slug form of a symbol as used in page URLs
// and in the symbol list.
func NormalizeSymbol(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol))
}

// AddSymbol appends symbol to the symbol list. It returns EINVALID for an
// empty symbol or one already in the list.
func (c *Config) AddSymbol(symbol string) error {
	s := NormalizeSymbol(symbol)
	if s == "" {
		return Errorf(EINVALID, "symbol required")
	}
	if slices.Contains(c.Symbols, s) {
		return Errorf(EINVALID, "symbol %q is already tracked", s)
	}
	c.Symbols = append(c.Symbols, s)
	return nil
}

// RemoveSymbol removes symbol from the symbol list. It returns ENOTFOUND
// when the symbol is not in the list.
func (c *Config) RemoveSymbol(symbol string) error {
	s := NormalizeSymbol(symbol)
	i := slices.Index(c.Symbols, s)
	if i < 0 {
		return Errorf(ENOTFOUND, "symbol %q is not tracked", s)
	}
	c.Symbols = slices.Delete(c.Symbols, i, i+1)
	return nil
}
