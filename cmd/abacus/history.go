package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/abacus/internal/cli"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or clear recorded evaluations",
	Long: `Lists recorded evaluations, newest first. Useful with a persistent store:

  abacus --store file eval 1 + 1
  abacus --store file history`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		ctx := commandContext(cmd)

		if clearAll, _ := cmd.Flags().GetBool("clear"); clearAll {
			if err := rt.Calculator.ClearHistory(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return nil
		}

		limit := rt.Config.HistoryLimit
		if cmd.Flags().Changed("limit") {
			limit, _ = cmd.Flags().GetInt("limit")
		}
		list, err := rt.Calculator.History(ctx, limit)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if list == nil {
				list = []domain.Evaluation{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		return cli.PrintHistory(ctx, cmd.OutOrStdout(), list, rt.Logger)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 0, "Maximum number of entries, 0 for all (default from config)")
	historyCmd.Flags().Bool("clear", false, "Remove every recorded evaluation")
	historyCmd.Flags().Bool("json", false, "Print the history as JSON")
}
