// Package cli provides the command-line interface for terrarun.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/runoshun/terrarun/internal/app"
)

// Command group IDs.
const (
	groupRun   = "run"
	groupSetup = "setup"
)

// NewRootCommand creates the root command for terrarun.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "terrarun",
		Short: "Run terratests with bounded go test processes",
		Long: `terrarun runs Terraform terratests with go test.

It checks the go toolchain, compiles the tests, runs them under a timeout
and writes log files, a run summary and an HTML report next to the tests.

The run timeout comes from --timeout, [test].timeout in .terrarun.toml or
a "-timeout=<N>m|<N>h" argument passed to go test after "--".`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil || c.AppConfig == nil {
				return nil
			}
			for _, w := range c.AppConfig.Warnings {
				printWarning(cmd.ErrOrStderr(), w)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.AddGroup(
		&cobra.Group{ID: groupRun, Title: "Test Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	checkCmd := newCheckCommand(c)
	checkCmd.GroupID = groupRun

	compileCmd := newCompileCommand(c)
	compileCmd.GroupID = groupRun

	testCmd := newTestCommand(c)
	testCmd.GroupID = groupRun

	reportCmd := newReportCommand(c)
	reportCmd.GroupID = groupRun

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	root.AddCommand(
		checkCmd,
		compileCmd,
		testCmd,
		reportCmd,
		configCmd,
	)

	return root
}
