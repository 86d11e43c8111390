package main

import (
	"fmt"

	"github.com/fwojciec/coinscrape"
)

// Run executes the details command.
func (c *DetailsCmd) Run(deps *Dependencies) error {
	d, err := deps.Scraper.Details(deps.Ctx, c.Symbol)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s: %s\n", c.Symbol, coinscrape.ErrorMessage(err))
		return err
	}

	if c.Markdown {
		if d.Markdown == "" {
			fmt.Fprintln(deps.Stderr, "error: no Markdown available for this description")
			return coinscrape.Errorf(coinscrape.ENOTFOUND, "no Markdown for %q", c.Symbol)
		}
		fmt.Fprintln(deps.Stdout, d.Markdown)
		return nil
	}

	fmt.Fprintln(deps.Stdout, d.Text)
	return nil
}
