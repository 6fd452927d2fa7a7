package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	coin  string
	typ   string
	query string
	head  int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions, newest first" }
func (*txCmd) Usage() string {
	return `cit tx [-coin <id or symbol>] [-type buy|sell] [-q <text>] [-head <n>]

  Lists transactions from the newest to the oldest, with options for filtering and limiting the output.
`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.coin, "coin", "all", "Only list this asset: a coin id, or a symbol for coins without id.")
	f.StringVar(&p.typ, "type", "all", "Only list this type of transaction: buy, sell or all.")
	f.StringVar(&p.query, "q", "", "Only list transactions with this text in their symbol, name or notes.")
	f.IntVar(&p.head, "head", 0, "Show only the first N transactions.")
}

// filter builds the filter from the flags.
func (p *txCmd) filter() (coinfolio.Filter, error) {
	filter := coinfolio.Filter{Text: p.query}
	if p.coin != "all" {
		filter.Key = p.coin
	}
	if p.typ != "all" {
		typ, err := coinfolio.ParseTxType(p.typ)
		if err != nil {
			return filter, err
		}
		filter.Type = typ
	}
	return filter, nil
}

func (p *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter, err := p.filter()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, ok := open(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	ledger, err := a.ledger(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return subcommands.ExitFailure
	}

	// Asset keys are matched case-insensitively.
	for _, o := range ledger.CoinOptions() {
		if strings.EqualFold(o.Key, filter.Key) {
			filter.Key = o.Key
		}
	}
	transactions := ledger.Filter(filter)
	if p.head > 0 && len(transactions) > p.head {
		transactions = transactions[:p.head]
	}
	printMarkdown(renderer.Transactions(transactions, a.currency()))
	return subcommands.ExitSuccess
}
