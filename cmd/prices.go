package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

// --- Refresh Command ---

type refreshCmd struct {
	force bool
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch live prices from CoinPaprika" }
func (*refreshCmd) Usage() string {
	return `cit refresh [-force]

  Fetches the live price of every coin recorded with a CoinPaprika id.
  Prices younger than the configured cache duration are kept, unless -force is set.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "Refresh prices even if they are fresh")
}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := open(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	ledger, err := a.ledger(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	ids := ledger.CoinIDs()
	if len(ids) == 0 {
		fmt.Fprintf(stdout, "No coin with a %s id, nothing to refresh.\n", renderer.Source)
		return subcommands.ExitSuccess
	}

	updatedAt, err := a.store.PricesUpdatedAt(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !c.force && !coinfolio.Stale(updatedAt, a.cfg.CoinPaprika.PriceTTL(), now()) {
		fmt.Fprintf(stdout, "Prices are up to date (updated %s). Use -force to refresh anyway.\n", updatedAt.Local().Format("15:04"))
		return subcommands.ExitSuccess
	}

	current, err := a.store.Prices(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	prices, n, err := a.client("", 0).RefreshPrices(ctx, ids, current)
	if err != nil {
		fmt.Fprintf(stderr, "Error: price refresh interrupted: %v\n", err)
		return subcommands.ExitFailure
	}
	if n == 0 {
		fmt.Fprintln(stderr, "Error: no price could be fetched.")
		return subcommands.ExitFailure
	}
	if err := a.store.SavePrices(ctx, prices, now()); err != nil {
		fmt.Fprintf(stderr, "Error saving prices: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Refreshed %d of %d price(s).\n", n, len(ids))
	return subcommands.ExitSuccess
}

// --- Coins Command ---

type coinsCmd struct {
	refresh bool
	limit   int
}

func (*coinsCmd) Name() string     { return "coins" }
func (*coinsCmd) Synopsis() string { return "search CoinPaprika coins by name or symbol" }
func (*coinsCmd) Usage() string {
	return `cit coins [-refresh] [-limit <n>] <term>

  Searches the coin list by name or symbol, to find the id to use with 'cit buy -coin'.
  The coin list is downloaded when it is older than the configured cache duration.
`
}

func (c *coinsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.refresh, "refresh", false, "Download the coin list even if it is fresh")
	f.IntVar(&c.limit, "limit", 6, "Maximum number of results")
}

func (c *coinsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	term := strings.Join(f.Args(), " ")
	if len(strings.TrimSpace(term)) < coinfolio.MinSearchLength {
		fmt.Fprintf(stderr, "Error: the search term needs at least %d characters.\n", coinfolio.MinSearchLength)
		return subcommands.ExitUsageError
	}

	a, ok := open(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	coins, err := a.coins(ctx, c.refresh)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Coins(coinfolio.SearchCoins(coins, term, c.limit)))
	return subcommands.ExitSuccess
}

// coins returns the coin list, downloading it when stale or when force is set.
// A failed download falls back on the stored list, if any.
func (a *app) coins(ctx context.Context, force bool) ([]coinfolio.Coin, error) {
	coins, err := a.store.Coins(ctx)
	if err != nil {
		return nil, err
	}
	updatedAt, err := a.store.CoinsUpdatedAt(ctx)
	if err != nil {
		return nil, err
	}
	ttl := a.cfg.CoinPaprika.CoinTTL()
	if !force && len(coins) > 0 && !coinfolio.Stale(updatedAt, ttl, now()) {
		return coins, nil
	}

	cacheDir := ""
	if dir, err := os.UserCacheDir(); err == nil && !force {
		cacheDir = filepath.Join(dir, "cit")
	}
	fetched, err := a.client(cacheDir, ttl).FetchCoins(ctx)
	if err != nil {
		if len(coins) > 0 {
			a.log.Warn().Err(err).Msg("using the stored coin list")
			return coins, nil
		}
		return nil, fmt.Errorf("cannot download the coin list: %w", err)
	}
	if err := a.store.SaveCoins(ctx, fetched, now()); err != nil {
		return nil, err
	}
	return fetched, nil
}
