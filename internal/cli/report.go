package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/terrarun/internal/app"
	"github.com/runoshun/terrarun/internal/domain"
	"github.com/runoshun/terrarun/internal/infra/report"
	"github.com/runoshun/terrarun/internal/usecase"
)

// newReportCommand creates the report command.
func newReportCommand(c *app.Container) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "report [log]",
		Short: "Render an HTML report from a go test -json log",
		Long: `Render terratest-report.html from a log written by "terrarun test --json --log-files".

The log defaults to ` + domain.StdoutLogFileName + ` in the current directory and
the report is written next to it unless --out is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.RenderReportInput{OutputDir: outputDir}
			if len(args) > 0 {
				in.LogPath = args[0]
			}

			out, err := c.RenderReportUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			report.WriteTable(w, out.Report)
			_, _ = fmt.Fprintln(w)
			printResult(w, out.Report.Passed(), out.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "Directory for the report (default: directory of the log)")
	return cmd
}
