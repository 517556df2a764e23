package cli

import (
	"github.com/spf13/cobra"

	"github.com/runoshun/terrarun/internal/app"
	"github.com/runoshun/terrarun/internal/usecase"
)

// newCompileCommand creates the compile command.
func newCompileCommand(c *app.Container) *cobra.Command {
	var flags testFlags

	cmd := &cobra.Command{
		Use:   "compile [-- go test args...]",
		Short: "Compile the terratests without running them",
		Long: `Compile every test binary with "go test -run ^$" so that build errors
surface before any infrastructure is provisioned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, c.AppConfig, args)
			if err != nil {
				return err
			}

			out, err := c.CompileTestsUseCase().Execute(cmd.Context(), usecase.CompileTestsInput{
				Stdout:   cmd.OutOrStdout(),
				Stderr:   cmd.ErrOrStderr(),
				Path:     opts.Path,
				Packages: opts.Packages,
				Args:     opts.Args,
				Timeout:  opts.Timeout,
			})
			if err != nil {
				if out != nil {
					printResult(cmd.ErrOrStderr(), false, "terratests do not compile")
				}
				return err
			}

			printResult(cmd.OutOrStdout(), true, "terratests compile in "+out.TestPath)
			return nil
		},
	}

	flags.register(cmd, false)
	return cmd
}
