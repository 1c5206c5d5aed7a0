package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

var compileCmd = &cobra.Command{
	Use:   "compile [dialog.xml]",
	Short: "Compile a dialog and publish the JSON records",
	Long: `Compiles the dialog and writes the records to the selected sink.
Without an outputs directory or sink the JSON is written to stdout.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := readOptions(cmd, args)
		flags := cmd.Flags()
		opts.OutputsDir, _ = flags.GetString("outputs-dir")
		opts.OutputsName, _ = flags.GetString("outputs-name")
		opts.OutputConfig, _ = flags.GetString("output-config")
		opts.Sink, _ = flags.GetString("sink")
		opts.RedisAddr, _ = flags.GetString("redis-addr")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if err := cli.RunCompile(ctx, opts, os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("outputs-dir", "o", "", "Directory the compiled dialog is written to")
	compileCmd.Flags().String("outputs-name", "", "Name of the compiled dialog (default \"dialog.json\")")
	compileCmd.Flags().String("output-config", "", "Write the merged configuration to this YAML file")
	compileCmd.Flags().String("sink", "", "Where to publish: file, redis, s3 or stdout")
	compileCmd.Flags().String("redis-addr", "", "Redis address for the redis sink")
}
