package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/readex-eu/readex-ptf-sub000/internal/search"
)

var version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ptfsearch version %s (strategy interface %d.%d)\n",
			version, search.InterfaceMajor, search.InterfaceMinor)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
