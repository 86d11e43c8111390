package main

import (
	"fmt"

	"github.com/fwojciec/coinscrape"
	"github.com/fwojciec/coinscrape/toml"
)

// Run executes the symbols list command.
func (c *SymbolsListCmd) Run(deps *Dependencies) error {
	if len(deps.Config.Symbols) == 0 {
		fmt.Fprintln(deps.Stdout, "No symbols tracked. Use 'coinscrape symbols add' to track one.")
		return nil
	}
	for _, s := range deps.Config.Symbols {
		fmt.Fprintln(deps.Stdout, s)
	}
	return nil
}

// Run executes the symbols add command.
func (c *SymbolsAddCmd) Run(deps *Dependencies) error {
	if err := toml.AddSymbol(deps.ConfigPath, c.Symbol); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", coinscrape.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Tracking %q\n", coinscrape.NormalizeSymbol(c.Symbol))
	return nil
}

// Run executes the symbols remove command.
func (c *SymbolsRemoveCmd) Run(deps *Dependencies) error {
	if err := toml.RemoveSymbol(deps.ConfigPath, c.Symbol); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", coinscrape.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Stopped tracking %q\n", coinscrape.NormalizeSymbol(c.Symbol))
	return nil
}
