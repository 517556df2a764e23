package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/terrarun/internal/app"
	"github.com/runoshun/terrarun/internal/usecase"
)

// newCheckCommand creates the check command.
func newCheckCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the go toolchain is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.CheckGoUseCase().Execute(cmd.Context(), usecase.CheckGoInput{})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Version)
			return nil
		},
	}
}
