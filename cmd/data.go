package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/coinfolio"
	"github.com/google/subcommands"
)

// create opens name for writing, "-" being stdout.
func create(name string) (io.WriteCloser, error) {
	if name == "-" {
		return nopCloser{stdout}, nil
	}
	return os.Create(name)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// --- Export Command ---

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export transactions as CSV" }
func (*exportCmd) Usage() string {
	return `cit export [-o <file.csv>]

  Writes every transaction as CSV, in chronological order.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "crypto-transactions.csv", "Output file, - for stdout")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if ledger.Len() == 0 {
		fmt.Fprintf(stderr, "Error: %v\n", coinfolio.ErrNothingToExport)
		return subcommands.ExitFailure
	}

	w, err := create(c.output)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := coinfolio.ExportCSV(w, ledger.Transactions()); err != nil {
		w.Close()
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := w.Close(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.output != "-" {
		fmt.Fprintf(stdout, "Exported %d transaction(s) to %s\n", ledger.Len(), c.output)
	}
	return subcommands.ExitSuccess
}

// --- Backup Command ---

type backupCmd struct {
	output string
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "save transactions, prices and coins into a JSON file" }
func (*backupCmd) Usage() string {
	return `cit backup [-o <file.json>]

  Writes a backup of all data, to be restored with 'cit restore'.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file, - for stdout. Defaults to crypto-tracker-backup-<date>.json")
}

func (c *backupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	exportedAt := now()
	if c.output == "" {
		c.output = fmt.Sprintf("crypto-tracker-backup-%s.json", exportedAt.Format("2006-01-02"))
	}

	a, ok := open(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	data, err := a.store.Load(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	w, err := create(c.output)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := coinfolio.EncodeBackup(w, data, exportedAt); err != nil {
		w.Close()
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := w.Close(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.output != "-" {
		fmt.Fprintf(stdout, "Backup written to %s\n", c.output)
	}
	return subcommands.ExitSuccess
}

// --- Restore Command ---

type restoreCmd struct {
	yes bool
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "replace all data with a backup" }
func (*restoreCmd) Usage() string {
	return `cit restore -y <file.json>

  Replaces transactions, prices and coins with the content of a backup.
  Nothing changes when the backup cannot be read.
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Confirm that current data is replaced")
}

func (c *restoreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if !c.yes {
		fmt.Fprintln(stderr, "Refusing to replace current data without -y.")
		return subcommands.ExitUsageError
	}

	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer file.Close()
	data, err := coinfolio.DecodeBackup(file)
	if err != nil {
		if errors.Is(err, coinfolio.ErrInvalidBackup) {
			fmt.Fprintf(stderr, "Error: %s is not a backup: %v\n", f.Arg(0), err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return subcommands.ExitFailure
	}

	a, ok := open(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.store.Restore(ctx, data); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Restored %d transaction(s), %d price(s) and %d coin(s).\n", len(data.Transactions), len(data.Prices), len(data.Coins))
	return subcommands.ExitSuccess
}
