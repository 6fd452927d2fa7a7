package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type chartCmd struct {
	kind   string
	output string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "draw the portfolio timeline or allocation as a PNG image" }
func (*chartCmd) Usage() string {
	return `cit chart [-kind timeline|allocation] [-o <file.png>]

  Draws a chart of the portfolio:
  - timeline: value at trade, net invested, cost basis and realized profit after each transaction,
  - allocation: the share of each held asset.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "timeline", "Chart to draw: timeline or allocation")
	f.StringVar(&c.output, "o", "", "Output file. Defaults to cit-<kind>.png")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.kind != "timeline" && c.kind != "allocation" {
		fmt.Fprintf(stderr, "Error: unknown chart %q\n", c.kind)
		return subcommands.ExitUsageError
	}
	if c.output == "" {
		c.output = "cit-" + c.kind + ".png"
	}

	a, ok := open(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	m, _, err := a.metrics(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var png []byte
	if c.kind == "timeline" {
		png, err = renderer.TimelineChart(m.Timeline, a.currency())
	} else {
		png, err = renderer.AllocationChart(coinfolio.Allocation(m))
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: cannot draw the %s: %v\n", c.kind, err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(c.output, png, 0o644); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Chart written to %s\n", c.output)
	return subcommands.ExitSuccess
}
