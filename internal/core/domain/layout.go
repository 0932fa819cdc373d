package domain

import "time"

const (
	// DefaultTSConfigFile is the tsconfig used when no --tsconfig flag is given.
	DefaultTSConfigFile = "tsconfig.json"

	// DefaultOutDir is the output directory used when the tsconfig sets none.
	DefaultOutDir = "dist"

	// RunnerConfigFile is the name of the optional runner settings file.
	RunnerConfigFile = "just-run.yaml"

	// DebugEnvVar enables debug output when set to a non-empty value.
	DebugEnvVar = "JUST_DEBUG"

	// DefaultDebounce is the default window for coalescing file events.
	DefaultDebounce = 100 * time.Millisecond

	// DefaultKillTimeout is how long a child process gets to exit after SIGTERM.
	DefaultKillTimeout = 5 * time.Second

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultIgnores are directory names never watched.
func DefaultIgnores() []string {
	return []string{".git", ".jj", "node_modules"}
}

// DefaultExtensions are the file extensions that trigger a rebuild.
func DefaultExtensions() []string {
	return []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs", ".json"}
}

// SourceExtensions are the extensions accepted as compiler entry files.
func SourceExtensions() []string {
	return []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx"}
}
