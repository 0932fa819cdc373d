// Package shell starts and supervises the user's command.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"go.trai.ch/justrun/internal/core/domain"
	"go.trai.ch/justrun/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ProcessRunner = (*Runner)(nil)

// Runner implements ports.ProcessRunner. Commands run in a PTY so they keep
// their terminal colours; plain pipes are used where no PTY is available.
type Runner struct {
	environ func() []string
}

// NewRunner creates a new Runner inheriting the process environment.
func NewRunner() *Runner {
	return &Runner{environ: os.Environ}
}

// Start launches cmd and copies its combined output to stdout.
func (r *Runner) Start(ctx context.Context, cmd domain.Command, stdout io.Writer) (ports.Process, error) {
	if cmd.Name == "" {
		return nil, domain.ErrNoCommand
	}
	if err := ctx.Err(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrProcessStartFailed.Error())
	}

	env := resolveEnvironment(r.environ(), cmd.Env)

	executable := cmd.Name
	if !filepath.IsAbs(executable) && !strings.ContainsRune(executable, filepath.Separator) {
		if lp, err := lookPath(executable, env); err == nil {
			executable = lp
		}
	}

	c := exec.Command(executable, cmd.Args...) //nolint:gosec // user provided command
	c.Args[0] = cmd.Name
	c.Dir = cmd.Dir
	c.Env = env

	p := &process{cmd: c, done: make(chan struct{})}

	ioDone := make(chan struct{})
	ptmx, err := pty.Start(c)
	switch {
	case err == nil:
		go func() {
			defer close(ioDone)
			defer func() { _ = ptmx.Close() }()
			// Reading the PTY master fails with EIO once the child exits.
			_, _ = io.Copy(stdout, ptmx)
		}()
	case errors.Is(err, pty.ErrUnsupported):
		c.Stdout = stdout
		c.Stderr = stdout
		setProcessGroup(c)
		if err := c.Start(); err != nil {
			return nil, startError(err, cmd)
		}
		close(ioDone)
	default:
		return nil, startError(err, cmd)
	}

	go p.wait(ioDone)
	return p, nil
}

func startError(err error, cmd domain.Command) error {
	err = zerr.Wrap(err, domain.ErrProcessStartFailed.Error())
	return zerr.With(err, "command", strings.Join(cmd.Argv(), " "))
}

type process struct {
	cmd  *exec.Cmd
	done chan struct{}

	mu      sync.Mutex
	err     error
	stopped bool
}

func (p *process) wait(ioDone <-chan struct{}) {
	err := p.cmd.Wait()
	<-ioDone

	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	close(p.done)
}

// Pid returns the operating system process id.
func (p *process) Pid() int {
	return p.cmd.Process.Pid
}

// Done is closed once the process has exited.
func (p *process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the process exits. A process ended by Stop is not an
// error.
func (p *process) Wait() error {
	<-p.done

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err == nil || p.stopped {
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(p.err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return zerr.With(zerr.Wrap(p.err, domain.ErrProcessFailed.Error()), "exit_code", exitCode)
}

// Stop sends SIGTERM to the process group and kills it when it is still
// running after timeout. It returns once the process has exited.
func (p *process) Stop(timeout time.Duration) error {
	select {
	case <-p.done:
		return nil
	default:
	}

	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	if err := terminate(p.cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return zerr.With(zerr.Wrap(err, "failed to signal process"), "pid", p.Pid())
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return nil
	case <-timer.C:
	}

	if err := kill(p.cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return zerr.With(zerr.Wrap(err, "failed to kill process"), "pid", p.Pid())
	}
	<-p.done
	return nil
}

// resolveEnvironment overlays the command environment on the inherited one.
// The result is sorted so children see a stable order.
func resolveEnvironment(sysEnv []string, cmdEnv map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(cmdEnv))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range cmdEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the PATH of env rather than the
// PATH of the current process.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
