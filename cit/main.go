// Command cit tracks a crypto portfolio: buys and sells, weighted-average cost
// basis, live CoinPaprika prices and reports.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/coinfolio/cmd"
	"github.com/etnz/coinfolio/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// Shell completion: exits when invoked by the shell.
	completion(commander).Complete(name)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the commander's subcommands and flags for the shell.
func completion(commander *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flags(flag.CommandLine),
	}
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		sub := &complete.Command{Flags: flags(f), Args: predict.Nothing}
		switch c.Name() {
		case "restore":
			sub.Args = predict.Files("*.json")
		case "topic":
			sub.Args = predict.Set(topics())
		case "help":
			sub.Args = predict.Set(names(commander))
		}
		root.Sub[c.Name()] = sub
	})
	return root
}

// flags predicts the values of f's flags.
func flags(f *flag.FlagSet) map[string]complete.Predictor {
	m := map[string]complete.Predictor{}
	f.VisitAll(func(fl *flag.Flag) {
		switch fl.Name {
		case "config":
			m[fl.Name] = predict.Files("*.toml")
		case "db":
			m[fl.Name] = predict.Files("*.db")
		case "o":
			m[fl.Name] = predict.Files("*")
		case "type":
			m[fl.Name] = predict.Set{"buy", "sell", "all"}
		case "kind":
			m[fl.Name] = predict.Set{"timeline", "allocation"}
		default:
			if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
				m[fl.Name] = predict.Nothing
			} else {
				m[fl.Name] = predict.Something
			}
		}
	})
	return m
}

func names(commander *subcommands.Commander) []string {
	var names []string
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		names = append(names, c.Name())
	})
	return names
}

func topics() []string {
	topics, err := docs.GetAllTopics()
	if err != nil {
		return nil
	}
	return topics
}
