package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/comalice/psl"
)

func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the operation catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tARITY\tDESCRIPTION")
			for _, d := range psl.Catalogue() {
				mark := ""
				if d.ID == psl.DefaultOp {
					mark = " (default)"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s%s\n", d.Name, d.Arity, d.Doc, mark)
			}
			return tw.Flush()
		},
	}
}
