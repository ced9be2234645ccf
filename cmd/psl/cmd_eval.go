package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comalice/psl"
	"github.com/comalice/psl/internal/extensibility"
)

func newEvalCmd() *cobra.Command {
	var useLua bool
	cmd := &cobra.Command{
		Use:   "eval EXPR...",
		Short: "Evaluate an expression the way an expr message would",
		Long: `Evaluate an expression the way an expr message would. The arguments
are joined with spaces and escape markers are stripped first, so
'hypot(3\, 4)' and 'hypot(3, 4)' give the same result.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ev psl.Evaluator = psl.ExprEvaluator{}
			if useLua {
				ev = extensibility.LuaEvaluator{}
			}
			src := psl.Normalize(strings.Join(args, " "))
			prog, err := ev.Compile(src)
			if err != nil {
				return fmt.Errorf("%w: %v", psl.ErrExprCompile, err)
			}
			v, err := prog.Run()
			if err != nil {
				return fmt.Errorf("%w: %v", psl.ErrExprEval, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(v, 'g', -1, 64))
			return nil
		},
	}
	cmd.Flags().BoolVar(&useLua, "lua", false, "evaluate with the Lua engine")
	return cmd
}
