// Package cmd implements the cit command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/coinpaprika"
	"github.com/etnz/coinfolio/config"
	"github.com/etnz/coinfolio/logger"
	"github.com/etnz/coinfolio/store"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&editCmd{}, "transactions")
	c.Register(&deleteCmd{}, "transactions")
	c.Register(&clearCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")

	c.Register(&summaryCmd{}, "reports")
	c.Register(&holdingsCmd{}, "reports")
	c.Register(&roiCmd{}, "reports")
	c.Register(&volumeCmd{}, "reports")
	c.Register(&allocationCmd{}, "reports")
	c.Register(&chartCmd{}, "reports")

	c.Register(&refreshCmd{}, "prices")
	c.Register(&coinsCmd{}, "prices")

	c.Register(&exportCmd{}, "data")
	c.Register(&backupCmd{}, "data")
	c.Register(&restoreCmd{}, "data")

	c.Register(&AssistCmd{}, "help")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", config.DefaultPath, "Path to the configuration file (TOML)")
var dbFile = flag.String("db", "", "Path to the SQLite database. Overrides the configuration.")
var verbose = flag.Bool("v", false, "Log debug information to stderr")
var raw = flag.Bool("raw", false, "Print reports as raw markdown")

// stdout and stderr are variables for tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// now is a variable for tests.
var now = time.Now

// app holds what a subcommand needs: configuration, logger and storage.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *store.Store
}

// Configure loads the configuration and applies the global flags.
func Configure() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if *dbFile != "" {
		cfg.Database = *dbFile
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Out: stderr})
	logger.SetGlobalLogger(log)
	return cfg, log, nil
}

// openApp configures the application and opens its database.
func openApp(ctx context.Context) (*app, error) {
	cfg, log, err := Configure()
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	kv, err := store.OpenSQLite(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("could not open database %q: %w", cfg.Database, err)
	}
	log.Debug().Str("database", cfg.Database).Msg("database opened")
	return &app{cfg: cfg, log: log, store: store.New(kv, log)}, nil
}

// open is openApp for subcommands: errors are reported on stderr.
func open(ctx context.Context) (*app, bool) {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, false
	}
	return a, true
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing the database")
	}
}

// currency is the quote currency of every amount.
func (a *app) currency() string { return a.cfg.QuoteCurrency }

// ledger loads the transaction log.
func (a *app) ledger(ctx context.Context) (*coinfolio.Ledger, error) {
	txs, err := a.store.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load transactions: %w", err)
	}
	return coinfolio.NewLedger(txs...), nil
}

// metrics computes the metrics of the stored log at the stored prices.
// It also returns when prices were last updated.
func (a *app) metrics(ctx context.Context) (*coinfolio.Metrics, time.Time, error) {
	l, err := a.ledger(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	prices, err := a.store.Prices(ctx)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("could not load prices: %w", err)
	}
	updatedAt, err := a.store.PricesUpdatedAt(ctx)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("could not load prices: %w", err)
	}
	return l.Metrics(prices), updatedAt, nil
}

// client returns a CoinPaprika client configured from the application's configuration.
func (a *app) client(cacheDir string, ttl time.Duration) *coinpaprika.Client {
	c := a.cfg.CoinPaprika
	opts := []coinpaprika.ClientOption{
		coinpaprika.WithBaseURL(c.BaseURL),
		coinpaprika.WithTimeout(c.GetTimeout()),
		coinpaprika.WithRequestInterval(c.GetRequestInterval()),
		coinpaprika.WithQuoteCurrency(a.cfg.QuoteCurrency),
		coinpaprika.WithCoinListLimit(c.CoinListLimit),
		coinpaprika.WithLogger(a.log),
	}
	if cacheDir != "" {
		opts = append(opts, coinpaprika.WithCache(cacheDir, ttl))
	}
	return coinpaprika.NewClient(opts...)
}

// printMarkdown renders md for the terminal, unless -raw is set.
func printMarkdown(md string) {
	if *raw {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	fmt.Fprint(stdout, md)
}
