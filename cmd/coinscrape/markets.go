package main

import (
	"fmt"

	"github.com/fwojciec/coinscrape"
)

// Run executes the markets command.
func (c *MarketsCmd) Run(deps *Dependencies) error {
	if c.Rows < 0 {
		fmt.Fprintln(deps.Stderr, "error: row count must not be negative")
		return coinscrape.Errorf(coinscrape.EINVALID, "row count must not be negative")
	}

	rows, err := deps.Scraper.Markets(deps.Ctx, c.Symbol, c.Rows)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s: %s\n", c.Symbol, coinscrape.ErrorMessage(err))
		return err
	}

	for _, r := range rows {
		fmt.Fprintln(deps.Stdout, r)
	}
	return nil
}
