// Package runner restarts a user command whenever the project rebuilds.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.trai.ch/justrun/internal/core/domain"
	"go.trai.ch/justrun/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// Orchestrator is the part of the incremental builder the runner drives.
type Orchestrator interface {
	Start(ctx context.Context) domain.BuildResult
	Stop()
}

// Runner watches the project, rebuilds on change and restarts the command
// after every successful build.
type Runner struct {
	builder   Orchestrator
	watcher   ports.Watcher
	processes ports.ProcessRunner
	logger    ports.Logger
	cfg       *domain.RunnerConfig
	stdout    io.Writer

	proc ports.Process
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets where the command output is copied. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.stdout = w
	}
}

// New creates a Runner.
func New(
	builder Orchestrator,
	watcher ports.Watcher,
	processes ports.ProcessRunner,
	logger ports.Logger,
	cfg *domain.RunnerConfig,
	opts ...Option,
) *Runner {
	if cfg == nil {
		cfg = domain.DefaultRunnerConfig()
	}
	r := &Runner{
		builder:   builder,
		watcher:   watcher,
		processes: processes,
		logger:    logger,
		cfg:       cfg,
		stdout:    os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run builds the project, starts cmd and keeps both up to date until ctx is
// cancelled. It returns nil on cancellation and an error only when watching
// cannot begin.
func (r *Runner) Run(ctx context.Context, cmd domain.Command) error {
	if cmd.Name == "" {
		return domain.ErrNoCommand
	}
	cmd = cmd.WithEnv(r.cfg.Env)

	if res := r.builder.Start(ctx); res.OK() {
		r.spawn(ctx, cmd)
	}

	if err := r.watcher.Start(ctx, ports.WatchOptions{
		Roots:      r.cfg.Watch,
		Ignore:     r.cfg.Ignore,
		Extensions: r.cfg.Extensions,
	}); err != nil {
		r.stopProcess()
		r.builder.Stop()
		return err
	}

	// One slot: batches arriving during a build collapse into one follow-up.
	triggers := make(chan struct{}, 1)
	debouncer := NewDebouncer(r.cfg.Debounce, func(paths []string) {
		r.logger.Debug("changed: " + strings.Join(paths, ", "))
		select {
		case triggers <- struct{}{}:
		default:
		}
	})

	var g errgroup.Group
	g.Go(func() error {
		for event := range r.watcher.Events() {
			debouncer.Add(event.Path)
		}
		return nil
	})
	g.Go(func() error {
		r.loop(ctx, cmd, triggers)

		r.logger.Info("shutting down...")
		debouncer.Stop()
		r.stopProcess()
		if err := r.watcher.Stop(); err != nil {
			r.logger.Warn(fmt.Sprintf("failed to stop watcher: %v", err))
		}
		r.builder.Stop()
		return nil
	})

	return g.Wait()
}

func (r *Runner) loop(ctx context.Context, cmd domain.Command, triggers <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-triggers:
			if res := r.builder.Start(ctx); !res.OK() {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			r.stopProcess()
			r.spawn(ctx, cmd)
		case <-r.exited():
			r.reap(cmd)
		}
	}
}

func (r *Runner) spawn(ctx context.Context, cmd domain.Command) {
	r.logger.Debug("starting " + strings.Join(cmd.Argv(), " "))
	proc, err := r.processes.Start(ctx, cmd, r.stdout)
	if err != nil {
		r.logger.Error(err)
		return
	}
	r.proc = proc
}

// exited returns a channel closed when the running process ends, or nil when
// nothing runs.
func (r *Runner) exited() <-chan struct{} {
	if r.proc == nil {
		return nil
	}
	return r.proc.Done()
}

func (r *Runner) reap(cmd domain.Command) {
	proc := r.proc
	r.proc = nil
	if err := proc.Wait(); err != nil {
		r.logger.Error(err)
		return
	}
	r.logger.Info(cmd.Name + " exited, waiting for changes...")
}

func (r *Runner) stopProcess() {
	if r.proc == nil {
		return
	}
	proc := r.proc
	r.proc = nil
	if err := proc.Stop(r.cfg.KillTimeout); err != nil {
		r.logger.Warn(fmt.Sprintf("failed to stop process %d: %v", proc.Pid(), err))
	}
}
