package main

import (
	"github.com/spf13/cobra"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List and inspect narrative patterns",
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available narrative patterns",
	RunE: func(_ *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()
		defer app.Log.Sync()

		patterns, err := app.Patterns.List()
		if err != nil {
			return err
		}
		return printJSON(patterns)
	},
}

var patternsShowCmd = &cobra.Command{
	Use:   "show <pattern-id>",
	Short: "Show the full record of a pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()
		defer app.Log.Sync()

		p, err := app.Patterns.Get(args[0])
		if err != nil {
			return err
		}
		return printJSON(p)
	},
}

func init() {
	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsShowCmd)
	rootCmd.AddCommand(patternsCmd)
}
