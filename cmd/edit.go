package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/date"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

// --- Edit Command ---

type editCmd struct {
	typ      string
	date     string
	quantity string
	price    string
	fee      string
	memo     string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change a recorded transaction" }
func (*editCmd) Usage() string {
	return `cit edit [-type buy|sell] [-d <date>] [-q <quantity>] [-p <price>] [-fee <fee>] [-m <memo>] <id>

  Changes the given fields of a transaction. The coin cannot be changed,
  delete the transaction and record a new one instead.
  The edited transaction is validated against the rest of the history.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", "", "New type: buy or sell")
	f.StringVar(&c.date, "d", "", "New date and time")
	f.StringVar(&c.quantity, "q", "", "New quantity")
	f.StringVar(&c.price, "p", "", "New unit price")
	f.StringVar(&c.fee, "fee", "", "New fee")
	f.StringVar(&c.memo, "m", "", "New note")
}

// edit builds the Edit from the flags that were set.
func (c *editCmd) edit(f *flag.FlagSet) (coinfolio.Edit, error) {
	var e coinfolio.Edit
	var err error
	amount := func(s string) *float64 {
		v, perr := coinfolio.ParseAmount(s)
		if perr != nil && err == nil {
			err = perr
		}
		return &v
	}
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "type":
			typ, perr := coinfolio.ParseTxType(c.typ)
			if perr != nil && err == nil {
				err = perr
			}
			e.Type = &typ
		case "d":
			on, perr := date.Parse(c.date)
			if perr != nil && err == nil {
				err = perr
			}
			e.Date = &on
		case "q":
			e.Quantity = amount(c.quantity)
		case "p":
			e.Price = amount(c.price)
		case "fee":
			e.Fee = amount(c.fee)
		case "m":
			e.Notes = &c.memo
		}
	})
	return e, err
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	e, err := c.edit(f)
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
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	tx, err := ledger.Edit(f.Arg(0), e)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := a.store.SaveTransactions(ctx, ledger.Transactions()); err != nil {
		fmt.Fprintf(stderr, "Error saving transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Updated %s: %s\n", tx.ID, renderer.Transaction(tx, a.currency()))
	return subcommands.ExitSuccess
}

// --- Delete Command ---

type deleteCmd struct{}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete recorded transactions" }
func (*deleteCmd) Usage() string {
	return `cit delete <id>...

  Deletes transactions. Deleting a buy can leave later sells uncovered.
`
}

func (*deleteCmd) SetFlags(f *flag.FlagSet) {}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
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
	for _, id := range f.Args() {
		tx, err := ledger.Delete(id)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "Deleted %s: %s\n", tx.ID, renderer.Transaction(tx, a.currency()))
	}
	if err := a.store.SaveTransactions(ctx, ledger.Transactions()); err != nil {
		fmt.Fprintf(stderr, "Error saving transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// --- Clear Command ---

type clearCmd struct {
	yes bool
}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "delete every transaction" }
func (*clearCmd) Usage() string {
	return `cit clear -y

  Deletes every transaction. Prices and the coin list are kept.
`
}

func (c *clearCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Confirm the deletion")
}

func (c *clearCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintln(stderr, "Refusing to delete every transaction without -y.")
		return subcommands.ExitUsageError
	}
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
	n := ledger.Len()
	ledger.Clear()
	if err := a.store.SaveTransactions(ctx, ledger.Transactions()); err != nil {
		fmt.Fprintf(stderr, "Error saving transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Deleted %d transaction(s).\n", n)
	return subcommands.ExitSuccess
}
