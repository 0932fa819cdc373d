// Package app implements the application layer for just-run.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/justrun/internal/core/domain"
	"go.trai.ch/justrun/internal/core/ports"
	"go.trai.ch/justrun/internal/engine/builder"
	"go.trai.ch/justrun/internal/engine/runner"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	compilation ports.CompilationLoader
	settings    ports.ConfigLoader
	compiler    ports.Compiler
	rewriter    ports.AliasRewriter
	watcher     ports.Watcher
	processes   ports.ProcessRunner
	logger      ports.Logger
	tracer      trace.Tracer
	workDir     string
	stdout      io.Writer
}

// New creates a new App instance.
func New(
	compilation ports.CompilationLoader,
	settings ports.ConfigLoader,
	compiler ports.Compiler,
	rewriter ports.AliasRewriter,
	watcher ports.Watcher,
	processes ports.ProcessRunner,
	log ports.Logger,
) *App {
	return &App{
		compilation: compilation,
		settings:    settings,
		compiler:    compiler,
		rewriter:    rewriter,
		watcher:     watcher,
		processes:   processes,
		logger:      log,
		stdout:      os.Stdout,
	}
}

// WithTracer sets the tracer handed to every builder.
func (a *App) WithTracer(tracer trace.Tracer) *App {
	a.tracer = tracer
	return a
}

// WithWorkingDir overrides the project directory. It is primarily used for
// testing; by default the process working directory is used.
func (a *App) WithWorkingDir(dir string) *App {
	a.workDir = dir
	return a
}

// WithOutput sets where the user command writes its output.
func (a *App) WithOutput(w io.Writer) *App {
	a.stdout = w
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	TSConfig string
	Command  string
	Args     []string
	Debug    bool
	NoColor  bool
}

// Run builds the project, starts the command and restarts it after every
// successful rebuild until ctx is cancelled.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	a.configure(opts.Debug, opts.NoColor)

	if opts.Command == "" {
		return domain.ErrNoCommand
	}

	workDir, err := a.resolveWorkDir()
	if err != nil {
		return err
	}

	cfg, err := a.compilation.Load(tsconfigPath(workDir, opts.TSConfig))
	if err != nil {
		return err
	}

	settings, err := a.settings.Load(workDir)
	if err != nil {
		return err
	}
	settings = runnerSettings(settings, cfg, workDir)

	b := a.newBuilder(cfg, workDir)
	r := runner.New(b, a.watcher, a.processes, a.logger, settings, runner.WithOutput(a.stdout))

	return r.Run(ctx, domain.Command{
		Name: opts.Command,
		Args: opts.Args,
		Dir:  workDir,
	})
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	TSConfig string
	Debug    bool
	NoColor  bool
}

// Build performs one non-incremental build of the project.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	a.configure(opts.Debug, opts.NoColor)

	workDir, err := a.resolveWorkDir()
	if err != nil {
		return err
	}

	cfg, err := a.compilation.Load(tsconfigPath(workDir, opts.TSConfig))
	if err != nil {
		return err
	}

	res := a.newBuilder(cfg, workDir).Build(ctx)
	if !res.OK() {
		return errors.Join(domain.ErrBuildExecutionFailed, res.Reason)
	}
	return nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	TSConfig string
}

// Clean removes the output directory of the project.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	workDir, err := a.resolveWorkDir()
	if err != nil {
		return err
	}

	cfg, err := a.compilation.Load(tsconfigPath(workDir, opts.TSConfig))
	if err != nil {
		return err
	}

	a.logger.Info(fmt.Sprintf("removing %s...", cfg.OutDir()))
	if err := a.newBuilder(cfg, workDir).Clean(); err != nil {
		return err
	}
	a.logger.Success(fmt.Sprintf("removed %s", cfg.OutDir()))
	return nil
}

// colorSetter is implemented by adapters that colour their output.
type colorSetter interface {
	SetColor(enabled bool)
}

func (a *App) configure(debug, noColor bool) {
	if lc, ok := a.logger.(ports.LevelController); ok {
		lc.SetDebug(debug)
		lc.SetColor(!noColor)
	}
	if cs, ok := a.compiler.(colorSetter); ok {
		cs.SetColor(!noColor)
	}
	if debug {
		a.logger.Debug("debugger is on")
	}
}

func (a *App) newBuilder(cfg *domain.CompilationConfig, workDir string) *builder.Builder {
	opts := []builder.Option{builder.WithWorkingDir(workDir)}
	if a.tracer != nil {
		opts = append(opts, builder.WithTracer(a.tracer))
	}
	return builder.New(cfg, a.compiler, a.rewriter, a.logger, opts...)
}

func (a *App) resolveWorkDir() (string, error) {
	if a.workDir != "" {
		return filepath.Abs(a.workDir)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve working directory")
	}
	return wd, nil
}

// runnerSettings fills the watch roots with the tsconfig directory when none
// are configured and always ignores the output directory, so emitting output
// never triggers another build.
func runnerSettings(settings *domain.RunnerConfig, cfg *domain.CompilationConfig, workDir string) *domain.RunnerConfig {
	out := *settings
	out.Watch = slices.Clone(settings.Watch)
	out.Ignore = slices.Clone(settings.Ignore)

	if len(out.Watch) == 0 {
		out.Watch = []string{filepath.Dir(absolute(workDir, cfg.ConfigPath()))}
	}

	outDir := absolute(workDir, cfg.OutDir())
	if !slices.Contains(out.Ignore, outDir) {
		out.Ignore = append(out.Ignore, outDir)
	}
	return &out
}

func absolute(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

func tsconfigPath(workDir, path string) string {
	if path == "" {
		path = domain.DefaultTSConfigFile
	}
	return absolute(workDir, path)
}
