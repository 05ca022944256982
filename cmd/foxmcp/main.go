// Package main is the entry point for the foxmcp bridge.
package main

import (
	"os"

	"github.com/foxmcp/foxmcp/cmd/foxmcp/app"
	"github.com/foxmcp/foxmcp/pkg/logger"
)

func main() {
	logger.Initialize()

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
