package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/justrun/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := readFlags(cmd)
			return c.app.Clean(cmd.Context(), app.CleanOptions{TSConfig: f.tsconfig})
		},
	}
}
