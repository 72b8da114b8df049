/*
Package main is the entry point for the replay CLI.

replay manages the store of learned web automations: the records the
decision engine consults when choosing between reusing a stored automation
and recording a new one.

Usage:
  replay [command]

Available Commands:
  list        List all stored automations
  show        Show one automation in full, including its scripts
  search      Search automations by text or matching criteria
  decide      Show the reuse/record decision for a request
  stats       Show usage and confidence statistics for the store
  export      Export all automations as JSON
  import      Import automations from a JSON export
  remove      Remove a stored automation by id
  clear       Remove every stored automation
  version     Print build version

Examples:
  # What would the engine do with this request?
  replay decide search --website example.com --params '{"query":"cats"}'

  # Move automations between machines
  replay export -o automations.json
  replay import automations.json
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/semantest/replay/internal/cli"
	"github.com/semantest/replay/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "replay",
		Short:         "Manage learned web automations",
		Long:          `replay stores learned web automations and decides when to reuse them instead of re-recording.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		cli.NewListCmd(),
		cli.NewShowCmd(),
		cli.NewSearchCmd(),
		cli.NewDecideCmd(),
		cli.NewStatsCmd(),
		cli.NewExportCmd(),
		cli.NewImportCmd(),
		cli.NewRemoveCmd(),
		cli.NewClearCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
}
