package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/coinscrape"
	"github.com/fwojciec/coinscrape/scrape"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	ConfigPath string
	Config     *coinscrape.Config
	Scraper    *scrape.Scraper
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `help:"Config file path" env:"COINSCRAPE_CONFIG" type:"path"`
	Verbose bool   `short:"v" help:"Log fetches, cache lookups and extractions"`

	Prices  PricesCmd  `cmd:"" help:"Show current prices and 24h change"`
	Details DetailsCmd `cmd:"" help:"Show the description of a symbol"`
	Markets MarketsCmd `cmd:"" help:"Show the top markets of a symbol"`
	Symbols SymbolsCmd `cmd:"" help:"Manage the tracked symbol list"`
}

// PricesCmd is the "prices" subcommand.
type PricesCmd struct {
	Symbols []string `arg:"" optional:"" help:"Symbols to query (default: tracked symbols)"`
	Reload  bool     `short:"r" help:"Refetch pages older than the cache staleness window"`
}

// DetailsCmd is the "details" subcommand.
type DetailsCmd struct {
	Symbol   string `arg:"" help:"Symbol to describe"`
	Markdown bool   `short:"m" help:"Print the description as Markdown"`
}

// MarketsCmd is the "markets" subcommand.
type MarketsCmd struct {
	Symbol string `arg:"" help:"Symbol to query"`
	Rows   int    `short:"n" default:"0" help:"Number of rows (0 uses the configured default)"`
}

// SymbolsCmd groups the symbol list subcommands.
type SymbolsCmd struct {
	List   SymbolsListCmd   `cmd:"" help:"List tracked symbols"`
	Add    SymbolsAddCmd    `cmd:"" help:"Track a symbol"`
	Remove SymbolsRemoveCmd `cmd:"" help:"Stop tracking a symbol"`
}

// SymbolsListCmd is the "symbols list" subcommand.
type SymbolsListCmd struct{}

// SymbolsAddCmd is the "symbols add" subcommand.
type SymbolsAddCmd struct {
	Symbol string `arg:"" help:"Symbol to track"`
}

// SymbolsRemoveCmd is the "symbols remove" subcommand.
type SymbolsRemoveCmd struct {
	Symbol string `arg:"" help:"Symbol to stop tracking"`
}
