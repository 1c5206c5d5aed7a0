package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [dialog.xml]",
	Short: "Export the compiled dialog as a Mermaid diagram",
	Long:  `Compiles the dialog and outputs a Mermaid flowchart (graph TD) of the records, their parents, sibling order and jumps.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.RunGraph(cmd.Context(), readOptions(cmd, args), os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
