// Package toml reads and writes the coinscrape configuration file.
//
// The file keeps durations as strings ("30s") and relation paths in their
// textual form ("child:-1") so that it stays editable by hand. Keys that
// are missing from the file keep their default values.
package toml

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/coinscrape"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the name of the configuration file inside the
// configuration directory.
const DefaultFileName = "config.toml"

type file struct {
	Version  int           `toml:"version" comment:"Configuration schema version."`
	BaseURL  string        `toml:"base_url"`
	Symbols  []string      `toml:"symbols" comment:"Symbols queried when none are given on the command line."`
	Patterns patternTable  `toml:"patterns"`
	Cleanup  cleanupTable  `toml:"cleanup"`
	Markets  marketsTable  `toml:"markets"`
	Cache    cacheTable    `toml:"cache"`
	Fetch    fetchTable    `toml:"fetch"`
	Renderer rendererTable `toml:"renderer"`
}

type patternTable struct {
	Price    string `toml:"price"`
	WhatIs   string `toml:"what_is"`
	About    string `toml:"about"`
	Markets  string `toml:"markets"`
	Change   string `toml:"change"`
	UpMarker string `toml:"up_marker"`
}

type replacementTable struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

type cleanupTable struct {
	Strip   []string           `toml:"strip"`
	Remove  []string           `toml:"remove"`
	Title   string             `toml:"title"`
	Replace []replacementTable `toml:"replace"`
}

type columnsTable struct {
	Rank          int `toml:"rank"`
	Source        int `toml:"source"`
	Pair          int `toml:"pair"`
	Price         int `toml:"price"`
	Volume        int `toml:"volume"`
	VolumePercent int `toml:"volume_percent"`
}

type marketsTable struct {
	Rows    int          `toml:"rows"`
	Body    string       `toml:"body" comment:"Path from the table to the row container."`
	Columns columnsTable `toml:"columns" comment:"Zero-based cell positions. -1 marks an absent column."`
}

type cacheTable struct {
	Staleness    string `toml:"staleness"`
	SingleFlight bool   `toml:"single_flight"`
}

type fetchTable struct {
	Concurrency       int      `toml:"concurrency"`
	Timeout           string   `toml:"timeout"`
	RetryDelays       []string `toml:"retry_delays"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Burst             int      `toml:"burst"`
	PriceMode         string   `toml:"price_mode" comment:"static or rendered"`
	DetailsMode       string   `toml:"details_mode"`
	MarketsMode       string   `toml:"markets_mode"`
}

type rendererTable struct {
	ControlURL     string `toml:"control_url" comment:"DevTools URL of a running browser. Empty launches a local one."`
	Headless       bool   `toml:"headless"`
	Stealth        bool   `toml:"stealth"`
	MaxNavigations int    `toml:"max_navigations"`
	Settle         string `toml:"settle"`
}

// Decode reads a configuration from r. Keys absent from the input keep
// the values of coinscrape.DefaultConfig. Unknown keys, malformed values
// and configurations that fail validation return ECONFIG.
func Decode(r io.Reader) (*coinscrape.Config, error) {
	f := fromConfig(coinscrape.DefaultConfig())

	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, decodeError(err)
	}

	cfg, err := f.config()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes cfg to w.
func Encode(w io.Writer, cfg *coinscrape.Config) error {
	if err := toml.NewEncoder(w).Encode(fromConfig(cfg)); err != nil {
		return coinscrape.WrapError(coinscrape.EINTERNAL, err, "failed to encode config")
	}
	return nil
}

// Load reads the configuration file at path. A missing file returns
// ENOTFOUND so callers can fall back to defaults.
func Load(path string) (*coinscrape.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, coinscrape.Errorf(coinscrape.ENOTFOUND, "config file %q not found", path)
	}
	if err != nil {
		return nil, coinscrape.WrapError(coinscrape.EINTERNAL, err, "failed to read config file %q", path)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, coinscrape.WrapError(coinscrape.ErrorCode(err), err, "config file %q", path)
	}
	return cfg, nil
}

// LoadOrDefault is Load with coinscrape.DefaultConfig returned for a
// missing file.
func LoadOrDefault(path string) (*coinscrape.Config, error) {
	cfg, err := Load(path)
	if coinscrape.ErrorCode(err) == coinscrape.ENOTFOUND {
		return coinscrape.DefaultConfig(), nil
	}
	return cfg, err
}

// Save writes cfg to path, creating the parent directory if needed. The
// file is replaced atomically.
func Save(path string, cfg *coinscrape.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, cfg); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return coinscrape.WrapError(coinscrape.EINTERNAL, err, "failed to create config directory %q", dir)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return coinscrape.WrapError(coinscrape.EINTERNAL, err, "failed to create temporary config file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return coinscrape.WrapError(coinscrape.EINTERNAL, err, "failed to write config file")
	}
	if err := tmp.Close(); err != nil {
		return coinscrape.WrapError(coinscrape.EINTERNAL, err, "failed to write config file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return coinscrape.WrapError(coinscrape.EINTERNAL, err, "failed to replace config file %q", path)
	}
	return nil
}

// AddSymbol adds symbol to the symbol list stored at path. A missing file
// is created from the defaults.
func AddSymbol(path, symbol string) error {
	return update(path, func(cfg *coinscrape.Config) error {
		return cfg.AddSymbol(symbol)
	})
}

// RemoveSymbol removes symbol from the symbol list stored at path.
func RemoveSymbol(path, symbol string) error {
	return update(path, func(cfg *coinscrape.Config) error {
		return cfg.RemoveSymbol(symbol)
	})
}

func update(path string, fn func(*coinscrape.Config) error) error {
	cfg, err := LoadOrDefault(path)
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return Save(path, cfg)
}

func decodeError(err error) error {
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		row, col := derr.Position()
		return coinscrape.WrapError(coinscrape.ECONFIG, err, "line %d column %d", row, col)
	}
	var serr *toml.StrictMissingError
	if errors.As(err, &serr) {
		return coinscrape.WrapError(coinscrape.ECONFIG, err, "unknown keys")
	}
	return coinscrape.WrapError(coinscrape.ECONFIG, err, "invalid config")
}

func fromConfig(cfg *coinscrape.Config) file {
	replace := make([]replacementTable, len(cfg.Cleanup.Replace))
	for i, r := range cfg.Cleanup.Replace {
		replace[i] = replacementTable{From: r.From, To: r.To}
	}
	delays := make([]string, len(cfg.Fetch.RetryDelays))
	for i, d := range cfg.Fetch.RetryDelays {
		delays[i] = d.String()
	}

	return file{
		Version: cfg.Version,
		BaseURL: cfg.BaseURL,
		Symbols: clone(cfg.Symbols),
		Patterns: patternTable{
			Price:    cfg.Patterns.Price,
			WhatIs:   cfg.Patterns.WhatIs,
			About:    cfg.Patterns.About,
			Markets:  cfg.Patterns.Markets,
			Change:   cfg.Patterns.Change,
			UpMarker: cfg.Patterns.UpMarker,
		},
		Cleanup: cleanupTable{
			Strip:   clone(cfg.Cleanup.Strip),
			Remove:  clone(cfg.Cleanup.Remove),
			Title:   cfg.Cleanup.Title,
			Replace: replace,
		},
		Markets: marketsTable{
			Rows: cfg.Markets.Rows,
			Body: cfg.Markets.Body.String(),
			Columns: columnsTable{
				Rank:          cfg.Markets.Columns.Rank,
				Source:        cfg.Markets.Columns.Source,
				Pair:          cfg.Markets.Columns.Pair,
				Price:         cfg.Markets.Columns.Price,
				Volume:        cfg.Markets.Columns.Volume,
				VolumePercent: cfg.Markets.Columns.VolumePercent,
			},
		},
		Cache: cacheTable{
			Staleness:    cfg.Cache.Staleness.String(),
			SingleFlight: cfg.Cache.SingleFlight,
		},
		Fetch: fetchTable{
			Concurrency:       cfg.Fetch.Concurrency,
			Timeout:           cfg.Fetch.Timeout.String(),
			RetryDelays:       delays,
			RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
			Burst:             cfg.Fetch.Burst,
			PriceMode:         string(cfg.Fetch.PriceMode),
			DetailsMode:       string(cfg.Fetch.DetailsMode),
			MarketsMode:       string(cfg.Fetch.MarketsMode),
		},
		Renderer: rendererTable{
			ControlURL:     cfg.Renderer.ControlURL,
			Headless:       cfg.Renderer.Headless,
			Stealth:        cfg.Renderer.Stealth,
			MaxNavigations: cfg.Renderer.MaxNavigations,
			Settle:         cfg.Renderer.Settle.String(),
		},
	}
}

// clone copies s into a non-nil slice so that an empty list is written
// as "[]" instead of being omitted.
func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func (f *file) config() (*coinscrape.Config, error) {
	body, err := coinscrape.ParseRelationPath(f.Markets.Body)
	if err != nil {
		return nil, err
	}
	staleness, err := parseDuration("cache.staleness", f.Cache.Staleness)
	if err != nil {
		return nil, err
	}
	timeout, err := parseDuration("fetch.timeout", f.Fetch.Timeout)
	if err != nil {
		return nil, err
	}
	settle, err := parseDuration("renderer.settle", f.Renderer.Settle)
	if err != nil {
		return nil, err
	}
	delays := make([]time.Duration, len(f.Fetch.RetryDelays))
	for i, s := range f.Fetch.RetryDelays {
		if delays[i], err = parseDuration("fetch.retry_delays", s); err != nil {
			return nil, err
		}
	}
	replace := make([]coinscrape.Replacement, len(f.Cleanup.Replace))
	for i, r := range f.Cleanup.Replace {
		replace[i] = coinscrape.Replacement{From: r.From, To: r.To}
	}

	return &coinscrape.Config{
		Version: f.Version,
		BaseURL: f.BaseURL,
		Symbols: f.Symbols,
		Patterns: coinscrape.PatternConfig{
			Price:    f.Patterns.Price,
			WhatIs:   f.Patterns.WhatIs,
			About:    f.Patterns.About,
			Markets:  f.Patterns.Markets,
			Change:   f.Patterns.Change,
			UpMarker: f.Patterns.UpMarker,
		},
		Cleanup: coinscrape.CleanupRules{
			Strip:   f.Cleanup.Strip,
			Replace: replace,
			Remove:  f.Cleanup.Remove,
			Title:   f.Cleanup.Title,
		},
		Markets: coinscrape.MarketConfig{
			Rows: f.Markets.Rows,
			Body: body,
			Columns: coinscrape.MarketColumns{
				Rank:          f.Markets.Columns.Rank,
				Source:        f.Markets.Columns.Source,
				Pair:          f.Markets.Columns.Pair,
				Price:         f.Markets.Columns.Price,
				Volume:        f.Markets.Columns.Volume,
				VolumePercent: f.Markets.Columns.VolumePercent,
			},
		},
		Cache: coinscrape.CacheConfig{
			Staleness:    staleness,
			SingleFlight: f.Cache.SingleFlight,
		},
		Fetch: coinscrape.FetchConfig{
			Concurrency:       f.Fetch.Concurrency,
			Timeout:           timeout,
			RetryDelays:       delays,
			RequestsPerSecond: f.Fetch.RequestsPerSecond,
			Burst:             f.Fetch.Burst,
			PriceMode:         coinscrape.FetchMode(f.Fetch.PriceMode),
			DetailsMode:       coinscrape.FetchMode(f.Fetch.DetailsMode),
			MarketsMode:       coinscrape.FetchMode(f.Fetch.MarketsMode),
		},
		Renderer: coinscrape.RendererConfig{
			ControlURL:     f.Renderer.ControlURL,
			Headless:       f.Renderer.Headless,
			Stealth:        f.Renderer.Stealth,
			MaxNavigations: f.Renderer.MaxNavigations,
			Settle:         settle,
		},
	}, nil
}

func parseDuration(key, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, coinscrape.WrapError(coinscrape.ECONFIG, err, "%s: invalid duration %q", key, s)
	}
	return d, nil
}
