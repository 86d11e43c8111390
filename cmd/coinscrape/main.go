package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/coinscrape"
	"github.com/fwojciec/coinscrape/cache"
	"github.com/fwojciec/coinscrape/cleanup"
	"github.com/fwojciec/coinscrape/goquery"
	"github.com/fwojciec/coinscrape/htmltomarkdown"
	coinhttp "github.com/fwojciec/coinscrape/http"
	"github.com/fwojciec/coinscrape/rod"
	"github.com/fwojciec/coinscrape/scrape"
	coinslog "github.com/fwojciec/coinscrape/slog"
	"github.com/fwojciec/coinscrape/toml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config file path. Set before calling Run().
	ConfigPath string

	// Fetchers for end-to-end testing. When nil, Run builds them from the
	// configuration.
	Static   coinscrape.Fetcher
	Rendered coinscrape.Fetcher

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPath: defaultConfigPath(),
	}
}

// Close releases the fetchers created by Run.
func (m *Main) Close() error {
	var firstErr error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("coinscrape"),
		kong.Description("Scrape crypto prices, descriptions and market tables"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'coinscrape --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.ConfigPath = m.ConfigPath
	if cli.Config != "" {
		deps.ConfigPath = cli.Config
	}
	deps.Logger = newLogger(stderr, cli.Verbose)

	cfg, err := toml.LoadOrDefault(deps.ConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Set COINSCRAPE_CONFIG or --config to use a different config file\n")
		return err
	}
	if u := os.Getenv("COINSCRAPE_RENDERER"); u != "" {
		cfg.Renderer.ControlURL = u
	}
	deps.Config = cfg

	if strings.Fields(kongCtx.Command())[0] != "symbols" {
		scraper, err := m.newScraper(cfg, deps.Logger, stderr)
		if err != nil {
			return err
		}
		defer m.Close()
		deps.Scraper = scraper
	}

	return kongCtx.Run(deps)
}

// newScraper wires the scraper stack for cfg. The renderer is started
// only when a query is configured to use it.
func (m *Main) newScraper(cfg *coinscrape.Config, logger *slog.Logger, stderr io.Writer) (*scrape.Scraper, error) {
	compiled, err := cfg.Compile()
	if err != nil {
		return nil, err
	}
	pipeline, err := cleanup.Compile(cfg.Cleanup)
	if err != nil {
		return nil, err
	}

	static := m.Static
	if static == nil {
		var opts []coinhttp.Option
		if cfg.Fetch.Timeout > 0 {
			opts = append(opts, coinhttp.WithTimeout(cfg.Fetch.Timeout))
		}
		f := coinhttp.NewFetcher(opts...)
		m.closers = append(m.closers, f)
		static = f
	}

	rendered := m.Rendered
	if rendered == nil && cfg.UsesRenderer() {
		session, err := rod.NewSession(
			rod.WithControlURL(cfg.Renderer.ControlURL),
			rod.WithHeadless(cfg.Renderer.Headless),
			rod.WithStealth(cfg.Renderer.Stealth),
			rod.WithMaxNavigations(cfg.Renderer.MaxNavigations),
			rod.WithSettle(cfg.Renderer.Settle),
		)
		if err != nil {
			_ = m.Close()
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or set COINSCRAPE_RENDERER to a running browser")
			return nil, err
		}
		var opts []rod.FetcherOption
		if cfg.Fetch.Timeout > 0 {
			opts = append(opts, rod.WithFetchTimeout(cfg.Fetch.Timeout))
		}
		f := rod.NewFetcher(session, opts...)
		m.closers = append(m.closers, f)
		rendered = f
	}

	o := &scrape.Orchestrator{
		Cache: coinslog.NewLoggingCache(cache.New(
			cache.WithStaleness(cfg.Cache.Staleness),
			cache.WithSingleFlight(cfg.Cache.SingleFlight),
		), logger),
		Static:      coinslog.NewLoggingFetcher(static, logger),
		Concurrency: cfg.Fetch.Concurrency,
		Timeout:     cfg.Fetch.Timeout,
		RetryDelays: cfg.Fetch.RetryDelays,
		RateLimiter: scrape.NewDomainLimiter(cfg.Fetch),
		Logger:      logger,
	}
	if rendered != nil {
		o.Rendered = coinslog.NewLoggingFetcher(rendered, logger)
	}

	return &scrape.Scraper{
		Config:       compiled,
		Orchestrator: o,
		Extractor:    coinslog.NewLoggingExtractor(goquery.NewExtractor(), logger),
		Cleaner:      pipeline,
		Converter:    htmltomarkdown.NewConverter(htmltomarkdown.WithBaseURL(cfg.BaseURL)),
	}, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return toml.DefaultFileName
	}
	return filepath.Join(home, ".coinscrape", toml.DefaultFileName)
}
