package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/coinfolio/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// AssistCmd is the subcommand for the AI assistant.
type AssistCmd struct{}

// Name returns the name of the command.
func (*AssistCmd) Name() string { return "assist" }

// Synopsis returns a short-one line synopsis of the command.
func (*AssistCmd) Synopsis() string { return "start an interactive session with the AI assistant" }

// Usage returns a long-form usage string.
func (*AssistCmd) Usage() string {
	return `cit assist [<question>]

  Starts an interactive session with the AI assistant, about your portfolio.
  It needs a Gemini API key, see 'cit topic config'.
`
}

// SetFlags sets the flags for the command.
func (*AssistCmd) SetFlags(_ *flag.FlagSet) {}

// Execute executes the command.
func (c *AssistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	initialPrompt := strings.Join(f.Args(), " ")

	a, ok := open(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	if a.cfg.Assistant.APIKey == "" {
		fmt.Fprintln(stderr, "Error: no Gemini API key, set GEMINI_API_KEY.")
		return subcommands.ExitFailure
	}

	ledger, err := a.ledger(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	prices, err := a.store.Prices(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  a.cfg.Assistant.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	model := a.cfg.Assistant.Model
	accountant := agent.NewAccountant(model, ledger, prices)
	analyst := agent.NewAnalyst(model)
	for _, e := range []*agent.Expert{accountant, analyst} {
		e.Log = a.log
	}
	assistant := agent.New(stdout, os.Stdin, model, accountant, analyst)

	if err := assistant.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
