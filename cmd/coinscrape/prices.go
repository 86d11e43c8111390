package main

import (
	"fmt"

	"github.com/fwojciec/coinscrape"
)

// Run executes the prices command.
func (c *PricesCmd) Run(deps *Dependencies) error {
	if len(c.Symbols) == 0 && len(deps.Config.Symbols) == 0 {
		fmt.Fprintln(deps.Stdout, "No symbols tracked. Use 'coinscrape symbols add' to track one.")
		return nil
	}

	var (
		res *coinscrape.BatchResult[*coinscrape.PriceResult]
		err error
	)
	if len(c.Symbols) == 0 {
		res, err = deps.Scraper.AllPrices(deps.Ctx, c.Reload)
	} else {
		res, err = deps.Scraper.Prices(deps.Ctx, c.Symbols, c.Reload)
	}
	return report(deps, res, err)
}

// report prints successful outcomes to stdout and failures to stderr. It
// returns the batch error, or an error carrying the code of the first
// failed task when any task failed.
func report[T fmt.Stringer](deps *Dependencies, res *coinscrape.BatchResult[T], err error) error {
	if res == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", coinscrape.ErrorMessage(err))
		return err
	}

	for _, o := range res.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s: %s\n", o.Task.Symbol, coinscrape.ErrorMessage(o.Err))
			continue
		}
		fmt.Fprintln(deps.Stdout, o.Value)
	}

	if err != nil {
		return err
	}
	if failed := res.Failed(); len(failed) > 0 {
		return coinscrape.WrapError(coinscrape.ErrorCode(failed[0].Err), failed[0].Err,
			"%d of %d symbols failed", len(failed), len(res.Outcomes))
	}
	return nil
}
