package main

import (
	"github.com/aretw0/abacus/internal/cli"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive calculator session",
	Long: `Reads one expression per line and prints its result. A failing line is reported
and the session goes on. Commands: :history [n], :clear, :help, :quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		asJSON, _ := cmd.Flags().GetBool("json")
		quiet, _ := cmd.Flags().GetBool("quiet")

		return cli.RunREPL(commandContext(cmd), rt.Calculator, cli.REPLOptions{
			In:           cmd.InOrStdin(),
			Out:          cmd.OutOrStdout(),
			JSON:         asJSON,
			Quiet:        quiet,
			HistoryLimit: rt.Config.HistoryLimit,
		}, rt.Logger)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().Bool("json", false, "Use JSON-Lines for input and output")
	replCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
