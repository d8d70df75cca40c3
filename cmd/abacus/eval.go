package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/abacus/internal/presentation/graph"
	"github.com/aretw0/abacus/pkg/arith"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/expr"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an arithmetic expression",
	Long: `Evaluates an expression built from numbers, + - * / and parentheses and records
it in the history. Arguments are joined with spaces, so quoting is optional.`,
	Example: `  abacus eval "1 + 1"
  abacus eval 10 / 4
  abacus eval --graph "(1 + 2) / 0"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := strings.Join(args, " ")

		if showGraph, _ := cmd.Flags().GetBool("graph"); showGraph {
			n, err := expr.Parse(src)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(n, &graph.Overlay{Values: true}))
			return nil
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		rec, err := rt.Calculator.Evaluate(commandContext(cmd), src)
		return printEvaluation(cmd, rec, err)
	},
}

func newOpCmd(op arith.Op) *cobra.Command {
	cmd := &cobra.Command{
		Use:   op.String() + " <a> <b>",
		Short: fmt.Sprintf("Compute a %s b", op.Symbol()),
		Example: fmt.Sprintf(`  abacus %[1]s 10 2
  abacus %[1]s 1/3 0.5
  abacus %[1]s -- -1 2`, op),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			rec, err := rt.Calculator.Apply(commandContext(cmd), op, args[0], args[1])
			return printEvaluation(cmd, rec, err)
		},
	}
	cmd.Flags().Bool("json", false, "Print the evaluation record as JSON")
	return cmd
}

// printEvaluation writes the result, or the whole record with --json.
// A failed evaluation is still returned as an error so the exit status reflects it.
func printEvaluation(cmd *cobra.Command, rec *domain.Evaluation, evalErr error) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON && rec != nil {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return err
		}
		return evalErr
	}
	if evalErr != nil {
		return evalErr
	}
	fmt.Fprintln(cmd.OutOrStdout(), rec.Result)
	return nil
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().Bool("json", false, "Print the evaluation record as JSON")
	evalCmd.Flags().Bool("graph", false, "Print the expression tree as a Mermaid flowchart instead of evaluating it")

	for _, op := range arith.Ops {
		rootCmd.AddCommand(newOpCmd(op))
	}
}
