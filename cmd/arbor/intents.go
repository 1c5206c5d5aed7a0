package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

var intentsCmd = &cobra.Command{
	Use:   "intents <file.csv>",
	Short: "Convert an intent spreadsheet into an XML dialog fragment",
	Long: `Reads a CSV export with the columns intent, example, output, buttons and jump
and writes a <nodes> fragment that a dialog can import.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		examples, _ := cmd.Flags().GetString("examples")

		err := cli.RunIntents(cli.IntentsOptions{
			Input:    args[0],
			Output:   output,
			Examples: examples,
		}, os.Stdout, os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(intentsCmd)
	intentsCmd.Flags().StringP("output", "o", "", "XML output file (default stdout)")
	intentsCmd.Flags().String("examples", "", "Also write the intent examples to this CSV file")
}
