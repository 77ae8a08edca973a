package main

import (
	"os"

	"github.com/readex-eu/readex-ptf-sub000/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
