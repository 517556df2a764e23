package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/runoshun/terrarun/internal/app"
	"github.com/runoshun/terrarun/internal/domain"
	"github.com/runoshun/terrarun/internal/infra/report"
	"github.com/runoshun/terrarun/internal/usecase"
)

// newTestCommand creates the test command.
func newTestCommand(c *app.Container) *cobra.Command {
	var flags testFlags

	cmd := &cobra.Command{
		Use:   "test [-- go test args...]",
		Short: "Run the terratests",
		Long: `Run go test against the terratests under a timeout.

Arguments after "--" are passed to go test. A "-timeout=<N>m|<N>h" argument
there takes precedence over --timeout and the configured timeout.

With --json the raw event stream is not echoed; a result table is printed
when the run finishes instead.`,
		Example: `  # Run every terratest in ./test with a 45 minute timeout
  terrarun test --path test --timeout 45m

  # Run a single test and keep logs and an HTML report
  terrarun test --log-files --html-report -- -run TestVpc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, c.AppConfig, args)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			in := usecase.RunTestsInput{
				Stdout:       stdout,
				Stderr:       cmd.ErrOrStderr(),
				Path:         opts.Path,
				Packages:     opts.Packages,
				Args:         opts.Args,
				Timeout:      opts.Timeout,
				JSON:         opts.JSON,
				HTMLReport:   opts.HTMLReport,
				DisableCache: opts.DisableCache,
				LogFiles:     opts.LogFiles,
			}
			if opts.JSON || opts.HTMLReport {
				in.Stdout = nil
			}

			out, err := c.RunTestsUseCase().Execute(cmd.Context(), in)
			if out == nil {
				if err != nil && !domain.IsConfigurationError(err) {
					printResult(cmd.ErrOrStderr(), false, "terratests did not complete")
				}
				return err
			}

			printRunResult(stdout, out, err == nil)
			if path := c.RunLogPath(); path != "" {
				printNote(stdout, "run log: %s", path)
			}
			return err
		},
	}

	flags.register(cmd, true)
	return cmd
}

// printRunResult prints the result table, the banner and the written artifacts.
func printRunResult(w io.Writer, out *usecase.RunTestsOutput, passed bool) {
	if out.Report != nil && !out.Report.Empty() {
		_, _ = fmt.Fprintln(w)
		report.WriteTable(w, out.Report)
	}

	msg := fmt.Sprintf("%s (timeout %s)", out.TestPath, out.Timeout)
	if !passed {
		msg = fmt.Sprintf("%s (exit code %d)", out.TestPath, out.Response.ExitCode)
	}
	printResult(w, passed, msg)

	for _, path := range out.Artifacts {
		printNote(w, "wrote %s", path)
	}
}
