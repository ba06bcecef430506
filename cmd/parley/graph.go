package main

import (
	"fmt"

	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/rules"
	"github.com/aretw0/parley/pkg/rules/villagegp"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the dialogue as a Mermaid diagram",
	Long:  `Outputs a Mermaid diagram (graph TD) of the states and the patterns that move between them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := readOptions(cmd)

		table := villagegp.Table()
		if opts.RulesPath != "" {
			var err error
			if table, err = rules.Load(opts.RulesPath); err != nil {
				return err
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(table.Describe(), nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
