// Command tryeach runs a JavaScript project's tests against a matrix of
// dependency scenarios.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/tryeach/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Cancelling the context stops the running scenario; the executor
	// restores dependencies before returning.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand()
	err := root.ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}

	format, _ := root.PersistentFlags().GetString("format")
	if format != "json" {
		format = "text"
	}
	// Errors go to stderr; stdout carries the run report.
	formatter := &cli.OutputFormatter{Format: format, Writer: os.Stderr}
	_ = formatter.ReportError(err)
	return cli.GetExitCode(err)
}
