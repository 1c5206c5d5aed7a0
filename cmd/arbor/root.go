package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor compiles XML dialog trees into flat dialog JSON",
	Long: `Arbor reads a dialog authored as a nested XML tree, resolves imports,
generates abort/again/back/repeat control nodes from inherited settings and
writes the flat list of dialog records expected by the conversation service.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("dialog", "d", "", "Main dialog XML file")
	flags.StringArrayP("config", "c", nil, "Configuration file (YAML or JSON); repeatable, later files win")
	flags.StringArray("env-file", nil, "Dotenv file merged into the configuration; repeatable")
	flags.StringP("schema", "s", "", "XSD schema the dialog and its imports are validated against")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.Bool("report", false, "Print a compilation report")
}

// readOptions collects the shared flags. A positional argument names the dialog.
func readOptions(cmd *cobra.Command, args []string) cli.Options {
	flags := cmd.Flags()
	opts := cli.Options{}
	opts.Dialog, _ = flags.GetString("dialog")
	opts.Configs, _ = flags.GetStringArray("config")
	opts.EnvFiles, _ = flags.GetStringArray("env-file")
	opts.Schema, _ = flags.GetString("schema")
	opts.Verbose, _ = flags.GetBool("verbose")
	opts.Report, _ = flags.GetBool("report")
	if len(args) > 0 {
		opts.Dialog = args[0]
	}
	return opts
}
