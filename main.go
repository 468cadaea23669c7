// Package main is the entry point for the supportbot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/danielolaszy/supportbot/cmd"
	"github.com/danielolaszy/supportbot/internal/logging"
)

var version = "dev"

func main() {
	logging.Debug("starting supportbot", "version", version)

	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
