package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/psl/internal/config"
	"github.com/comalice/psl/internal/core"
	"github.com/comalice/psl/internal/production"
)

func newDotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dot PATCH",
		Short: "Print a patch as a Graphviz digraph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Load(args[0])
			if err != nil {
				return err
			}
			rt, err := p.Build(core.WithVisualizer(production.DOTVisualizer{}))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rt.Visualize())
			return nil
		},
	}
}
