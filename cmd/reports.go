package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

// report runs fn on the current metrics and prints the markdown it returns.
func report(ctx context.Context, fn func(a *app, m *coinfolio.Metrics, pricesUpdatedAt time.Time) string) subcommands.ExitStatus {
	a, ok := open(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	m, updatedAt, err := a.metrics(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(fn(a, m, updatedAt))
	return subcommands.ExitSuccess
}

// --- Summary Command ---

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio totals" }
func (*summaryCmd) Usage() string {
	return `cit summary

  Displays the total invested, the current value and the profits of the portfolio,
  at the last refreshed prices. See 'cit refresh'.
`
}

func (*summaryCmd) SetFlags(f *flag.FlagSet) {}

func (*summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, func(a *app, m *coinfolio.Metrics, updatedAt time.Time) string {
		return renderer.Summary(m, updatedAt, a.currency())
	})
}

// --- Holdings Command ---

type holdingsCmd struct{}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display holdings, cost basis and profits per asset" }
func (*holdingsCmd) Usage() string {
	return `cit holdings

  Displays, for each asset, the holdings, average cost, cost basis, live price,
  current value, unrealized and realized profits.
`
}

func (*holdingsCmd) SetFlags(f *flag.FlagSet) {}

func (*holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, func(a *app, m *coinfolio.Metrics, _ time.Time) string {
		return renderer.Holdings(m, a.currency())
	})
}

// --- ROI Command ---

type roiCmd struct{}

func (*roiCmd) Name() string     { return "roi" }
func (*roiCmd) Synopsis() string { return "display the return on investment per asset" }
func (*roiCmd) Usage() string {
	return `cit roi

  Displays the return on investment of each asset ever bought.
`
}

func (*roiCmd) SetFlags(f *flag.FlagSet) {}

func (*roiCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, func(a *app, m *coinfolio.Metrics, _ time.Time) string {
		return renderer.ROI(m)
	})
}

// --- Allocation Command ---

type allocationCmd struct{}

func (*allocationCmd) Name() string     { return "allocation" }
func (*allocationCmd) Synopsis() string { return "display the share of each asset in the portfolio" }
func (*allocationCmd) Usage() string {
	return `cit allocation

  Displays the share of each held asset in the portfolio value. Assets without
  live price are valued at cost basis.
`
}

func (*allocationCmd) SetFlags(f *flag.FlagSet) {}

func (*allocationCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, func(a *app, m *coinfolio.Metrics, _ time.Time) string {
		return renderer.Allocation(coinfolio.Allocation(m), a.currency())
	})
}

// --- Volume Command ---

type volumeCmd struct{}

func (*volumeCmd) Name() string     { return "volume" }
func (*volumeCmd) Synopsis() string { return "display the traded volume per month" }
func (*volumeCmd) Usage() string {
	return `cit volume

  Displays the total of buys and sells of each month.
`
}

func (*volumeCmd) SetFlags(f *flag.FlagSet) {}

func (*volumeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	printMarkdown(renderer.Volume(coinfolio.MonthlyVolume(ledger.Transactions()), a.currency()))
	return subcommands.ExitSuccess
}
