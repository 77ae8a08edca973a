package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/readex-eu/readex-ptf-sub000/internal/search"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the registered search strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tVERSION\tSUMMARY")
		for _, f := range search.Factories() {
			fmt.Fprintf(w, "%s\t%d.%d\t%s\n", f.Name, f.Major, f.Minor, f.Summary)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
