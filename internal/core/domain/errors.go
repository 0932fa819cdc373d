package domain

import "go.trai.ch/zerr"

var (
	// ErrCompileFailed is returned when the compiler rejects its input or crashes.
	ErrCompileFailed = zerr.New("compilation failed")

	// ErrRewriteFailed is returned when path alias rewriting fails after a successful compile.
	ErrRewriteFailed = zerr.New("path alias rewriting failed")

	// ErrCleanFailed is returned when the output directory cannot be removed.
	ErrCleanFailed = zerr.New("failed to clean output directory")

	// ErrUnsafeClean is returned when the output directory would remove the working tree.
	ErrUnsafeClean = zerr.New("refusing to clean output directory outside the project")

	// ErrBuildFailed is reported when a build attempt fails.
	ErrBuildFailed = zerr.New("build failed")

	// ErrBuildExecutionFailed is returned by one-shot builds that failed.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrConfigNotFound is returned when the tsconfig file does not exist.
	ErrConfigNotFound = zerr.New("could not find tsconfig")

	// ErrConfigReadFailed is returned when a config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when a config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigExtendsCycle is returned when tsconfig extends chains loop.
	ErrConfigExtendsCycle = zerr.New("tsconfig extends cycle detected")

	// ErrNoEntryFiles is returned when the tsconfig resolves to no entry files.
	ErrNoEntryFiles = zerr.New("no entry files found")

	// ErrInvalidRunnerConfig is returned when just-run.yaml holds invalid values.
	ErrInvalidRunnerConfig = zerr.New("invalid runner configuration")

	// ErrEnvFileReadFailed is returned when the configured dotenv file cannot be read.
	ErrEnvFileReadFailed = zerr.New("failed to read env file")

	// ErrNoCommand is returned when the runner is invoked without a command.
	ErrNoCommand = zerr.New("no command specified")

	// ErrProcessStartFailed is returned when the child process cannot be started.
	ErrProcessStartFailed = zerr.New("failed to start process")

	// ErrProcessFailed is returned when the child process exits with an error.
	ErrProcessFailed = zerr.New("process exited with error")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to start file watcher")
)
