// Package main implements the main entry point of the CHIP-8 emulator
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	root := cli.NewRootCommand(cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	err := root.ExecuteContext(ctx)
	if err == nil {
		return
	}

	var usageErr *cli.UsageError
	switch {
	case errors.As(err, &usageErr):
		usageErr.ShowUsage(os.Stderr)
	case errors.Is(err, context.Canceled):
		// Handle context cancellation (Ctrl+C) gracefully
		return
	default:
		logger := config.CreateLogger(false, false)
		logger.Error("Execution failed", log.Err(err))
	}
	os.Exit(1)
}
