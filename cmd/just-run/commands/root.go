// Package commands implements the CLI commands for just-run.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/justrun/internal/adapters/detector"
	"go.trai.ch/justrun/internal/app"
	"go.trai.ch/justrun/internal/build"
	"go.trai.ch/justrun/internal/core/domain"
)

// CLI represents the command line interface for just-run.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, opts app.RunOptions) error
	Build(ctx context.Context, opts app.BuildOptions) error
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:   "just-run [flags] <command> [args...]",
		Short: "Compile a TypeScript project and restart a command on every change",
		Long: "just-run compiles the project described by a tsconfig, runs the given command\n" +
			"and restarts it whenever a rebuild succeeds. Flags after the command are\n" +
			"passed to it unchanged.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		RunE:          c.runRoot,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	// Everything after the command belongs to the command.
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.PersistentFlags().StringP("tsconfig", "t", domain.DefaultTSConfigFile, "Path to the tsconfig file")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable coloured output")
	rootCmd.PersistentFlags().Bool("debug", false, "Print debug output (also enabled by "+domain.DebugEnvVar+")")

	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func (c *CLI) runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		// Display command usage help without returning an error
		_ = cmd.Help()
		return nil
	}

	f := readFlags(cmd)
	return c.app.Run(cmd.Context(), app.RunOptions{
		TSConfig: f.tsconfig,
		Command:  args[0],
		Args:     args[1:],
		Debug:    f.output.Debug,
		NoColor:  !f.output.Color,
	})
}

type flags struct {
	tsconfig string
	output   detector.Settings
}

func readFlags(cmd *cobra.Command) flags {
	tsconfig, _ := cmd.Flags().GetString("tsconfig")
	noColor, _ := cmd.Flags().GetBool("no-color")
	debug, _ := cmd.Flags().GetBool("debug")

	return flags{
		tsconfig: tsconfig,
		output:   detector.DetectStderr(noColor, debug),
	}
}
