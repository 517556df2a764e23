// Package main is the entry point for terrarun.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/runoshun/terrarun/internal/app"
	"github.com/runoshun/terrarun/internal/cli"
	"github.com/runoshun/terrarun/internal/domain"
)

// Exit codes.
const (
	exitSuccess     = 0 // All tests pass
	exitTestFailure = 1 // Tests ran (or compiled) and failed
	exitRuntimeErr  = 2 // Configuration errors, timeouts and runs that did not complete
)

// version is set by ldflags at build time.
var version = "dev"

var newRootCommand = cli.NewRootCommand

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, domain.ErrTestsFailed), errors.Is(err, domain.ErrCompileFailed):
		return exitTestFailure
	default:
		return exitRuntimeErr
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	container, err := app.New(cwd, os.Stderr)
	if err != nil {
		return runWithoutContainer(ctx, err)
	}
	defer func() { _ = container.Close() }()

	return execute(ctx, newRootCommand(container, version))
}

// runWithoutContainer still serves help and version when the config can't be loaded.
func runWithoutContainer(ctx context.Context, loadErr error) error {
	if !canRunWithoutConfig(os.Args[1:]) {
		return loadErr
	}
	return execute(ctx, newRootCommand(nil, version))
}

func execute(ctx context.Context, root *cobra.Command) error {
	return root.ExecuteContext(ctx)
}

func canRunWithoutConfig(args []string) bool {
	if len(args) == 0 {
		return true
	}
	if args[0] == "help" {
		return true
	}
	return slices.ContainsFunc(args, func(arg string) bool {
		return arg == "--help" || arg == "-h" || arg == "--version" || strings.HasPrefix(arg, "--help=")
	})
}
