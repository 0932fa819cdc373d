package domain

import (
	"maps"
	"slices"
	"time"
)

// RunnerConfig holds the settings of the change-triggered runner.
type RunnerConfig struct {
	// Watch lists the roots watched for changes.
	Watch []string
	// Ignore lists glob patterns matched against path segments.
	Ignore []string
	// Extensions lists file extensions that trigger a rebuild.
	Extensions []string
	// Debounce is the window used to coalesce file events.
	Debounce time.Duration
	// KillTimeout is the grace period between SIGTERM and SIGKILL.
	KillTimeout time.Duration
	// EnvFile is an optional dotenv file merged into the child environment.
	EnvFile string
	// Env holds extra variables for the child process.
	Env map[string]string
}

// DefaultRunnerConfig returns the settings used when no just-run.yaml exists.
func DefaultRunnerConfig() *RunnerConfig {
	return &RunnerConfig{
		Ignore:      DefaultIgnores(),
		Extensions:  DefaultExtensions(),
		Debounce:    DefaultDebounce,
		KillTimeout: DefaultKillTimeout,
		Env:         map[string]string{},
	}
}

// Command is the user program restarted after successful builds.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string
}

// Argv returns the full argument vector.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// WithEnv returns a copy of the command with env merged over its own.
func (c Command) WithEnv(env map[string]string) Command {
	merged := maps.Clone(c.Env)
	if merged == nil {
		merged = make(map[string]string, len(env))
	}
	maps.Copy(merged, env)
	c.Env = merged
	c.Args = slices.Clone(c.Args)
	return c
}
