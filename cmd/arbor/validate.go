package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dialog.xml]",
	Short: "Compile a dialog without writing it",
	Long:  `Runs the full compilation and reports warnings. Exits 1 on a fatal error.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := cli.RunValidate(cmd.Context(), readOptions(cmd, args), os.Stdout)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Dialog is valid! ✅ (%d records, %d warnings)\n", len(res.Records), len(res.Diagnostics))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
