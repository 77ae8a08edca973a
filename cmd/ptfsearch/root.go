package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/readex-eu/readex-ptf-sub000/pkg/logger"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "ptfsearch",
	Short: "Autotuning search engine",
	Long: `ptfsearch explores tuning parameter spaces with exhaustive, individual,
random and GDE3 search strategies. It runs a search locally against recorded
measurements or serves search sessions to a remote tuning orchestrator.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetDefault(logger.New(logLevel, logFormat, os.Stderr))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
}
