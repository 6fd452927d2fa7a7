package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/date"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

// addCmd holds the flags shared by 'buy' and 'sell'.
type addCmd struct {
	date     string
	coinID   string
	symbol   string
	name     string
	quantity string
	price    string
	fee      string
	memo     string
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Transaction date and time (YYYY-MM-DDTHH:MM). Defaults to now.")
	f.StringVar(&c.coinID, "coin", "", "CoinPaprika coin id, like btc-bitcoin. See 'cit coins'.")
	f.StringVar(&c.symbol, "s", "", "Ticker symbol, like BTC. Defaults to the symbol of -coin.")
	f.StringVar(&c.name, "n", "", "Coin name. Defaults to the name of -coin, or the symbol.")
	f.StringVar(&c.quantity, "q", "", "Quantity of coins")
	f.StringVar(&c.price, "p", "", "Unit price in the quote currency")
	f.StringVar(&c.fee, "fee", "0", "Fee paid in the quote currency")
	f.StringVar(&c.memo, "m", "", "An optional note for the transaction")
}

// transaction builds the transaction from the flags.
func (c *addCmd) transaction(ctx context.Context, a *app, typ coinfolio.TxType) (coinfolio.Transaction, error) {
	on := now()
	if c.date != "" {
		var err error
		if on, err = date.Parse(c.date); err != nil {
			return coinfolio.Transaction{}, err
		}
	}
	quantity, err := coinfolio.ParseAmount(c.quantity)
	if err != nil {
		return coinfolio.Transaction{}, fmt.Errorf("quantity: %w", err)
	}
	price, err := coinfolio.ParseAmount(c.price)
	if err != nil {
		return coinfolio.Transaction{}, fmt.Errorf("price: %w", err)
	}
	fee, err := coinfolio.ParseAmount(c.fee)
	if err != nil {
		return coinfolio.Transaction{}, fmt.Errorf("fee: %w", err)
	}

	symbol, name := c.symbol, c.name
	if id := strings.TrimSpace(c.coinID); id != "" && (symbol == "" || name == "") {
		coins, err := a.store.Coins(ctx)
		if err != nil {
			return coinfolio.Transaction{}, err
		}
		if coin, ok := coinfolio.FindCoin(coins, id); ok {
			symbol = firstOf(symbol, coin.Symbol)
			name = firstOf(name, coin.Name)
		}
	}
	return coinfolio.NewTransaction(typ, on, c.coinID, symbol, name, quantity, price, fee, c.memo), nil
}

// firstOf returns the first non blank string.
func firstOf(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (c *addCmd) execute(ctx context.Context, typ coinfolio.TxType) subcommands.ExitStatus {
	a, ok := open(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	tx, err := c.transaction(ctx, a, typ)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	ledger, err := a.ledger(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := ledger.Add(tx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := a.store.SaveTransactions(ctx, ledger.Transactions()); err != nil {
		fmt.Fprintf(stderr, "Error saving transaction: %v\n", err)
		return subcommands.ExitFailure
	}

	added := ledger.Transactions()[ledger.Len()-1]
	fmt.Fprintf(stdout, "%s\nSaved as %s\n", renderer.Transaction(added, a.currency()), added.ID)
	return subcommands.ExitSuccess
}

// --- Buy Command ---

type buyCmd struct{ addCmd }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a purchase of coins" }
func (*buyCmd) Usage() string {
	return `cit buy (-coin <id> | -s <symbol>) -q <quantity> -p <price> [-fee <fee>] [-d <date>] [-m <memo>]

  Records a purchase of coins.
`
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.execute(ctx, coinfolio.Buy)
}

// --- Sell Command ---

type sellCmd struct{ addCmd }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale of coins" }
func (*sellCmd) Usage() string {
	return `cit sell (-coin <id> | -s <symbol>) -q <quantity> -p <price> [-fee <fee>] [-d <date>] [-m <memo>]

  Records a sale of coins. The quantity cannot exceed the holdings at that date.
`
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.execute(ctx, coinfolio.Sell)
}
