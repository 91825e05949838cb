package main

import (
	"os"

	"github.com/jontk/ctb/internal/cli"
	"github.com/jontk/ctb/internal/logging"
)

func main() {
	// Defaults until a command loads the config file and reconfigures logging
	logging.Init(logging.DefaultConfig())
	logger := logging.GetLogger()

	if err := cli.Execute(); err != nil {
		logger.Error().Err(err).Msg("Failed to execute command")
		os.Exit(1)
	}
}
