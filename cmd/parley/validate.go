package main

import (
	"fmt"

	"github.com/aretw0/parley/pkg/rules"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [rules-file]",
	Short: "Check a rule file before serving it",
	Long: `Compiles every pattern and reports all problems at once: generators whose parameter
count differs from the pattern's capture groups, transitions to undeclared states,
invalid regular expressions and a missing initial state.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("rules")
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no rule file given (pass a path or --rules)")
		}

		table, err := rules.Load(path)
		if err != nil {
			if errs := rules.ValidationErrors(err); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %v\n", e)
				}
				return fmt.Errorf("validation failed: %d problem(s) in %s", len(errs), path)
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Rules are valid: %d states, %d rules.\n", len(table.States()), table.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
