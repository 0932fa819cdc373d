package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/justrun/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Compile the project once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := readFlags(cmd)
			return c.app.Build(cmd.Context(), app.BuildOptions{
				TSConfig: f.tsconfig,
				Debug:    f.output.Debug,
				NoColor:  !f.output.Color,
			})
		},
	}
}
