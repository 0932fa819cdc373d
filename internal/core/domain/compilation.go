package domain

import "slices"

// CompilationConfig is the read-only view of a project's compiler configuration.
type CompilationConfig struct {
	entryFiles []string
	outDir     string
	sourceMap  bool
	hasPaths   bool
	configPath string
}

// CompilationOptions holds the values used to construct a CompilationConfig.
type CompilationOptions struct {
	EntryFiles []string
	OutDir     string
	SourceMap  bool
	HasPaths   bool
	ConfigPath string
}

// NewCompilationConfig creates an immutable CompilationConfig.
func NewCompilationConfig(opts CompilationOptions) *CompilationConfig {
	return &CompilationConfig{
		entryFiles: slices.Clone(opts.EntryFiles),
		outDir:     opts.OutDir,
		sourceMap:  opts.SourceMap,
		hasPaths:   opts.HasPaths,
		configPath: opts.ConfigPath,
	}
}

// EntryFiles returns a copy of the ordered entry files.
func (c *CompilationConfig) EntryFiles() []string {
	return slices.Clone(c.entryFiles)
}

// OutDir returns the output directory.
func (c *CompilationConfig) OutDir() string {
	return c.outDir
}

// SourceMap reports whether source maps are emitted.
func (c *CompilationConfig) SourceMap() bool {
	return c.sourceMap
}

// HasPaths reports whether the config declares path aliases.
func (c *CompilationConfig) HasPaths() bool {
	return c.hasPaths
}

// ConfigPath returns the location of the configuration file.
func (c *CompilationConfig) ConfigPath() string {
	return c.configPath
}
