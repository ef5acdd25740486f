// Package main is the entry point for the werewolf agent.
// It only handles dependency injection and command wiring.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "werewolf-agent",
		Short: "Decision engine for a seat at a werewolf table",
		Long:  "Answers a game host's speak, vote, night-action and last-words requests. Decisions come from a rule engine; an optional LLM may draft speeches and votes, which are checked against the same hard rules.",
	}

	root.PersistentFlags().String("config", "", "JSON config file (env vars override it)")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before the config")

	root.AddCommand(newServeCmd())
	root.AddCommand(newDecideCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
