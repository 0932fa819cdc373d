package domain

// Format is the module format emitted by the compiler.
type Format string

const (
	// FormatCommonJS emits self-contained CommonJS modules.
	FormatCommonJS Format = "cjs"
	// FormatESM emits ECMAScript modules.
	FormatESM Format = "esm"
)

// Platform is the runtime the compiler targets.
type Platform string

const (
	// PlatformNode targets the server-side Node.js runtime.
	PlatformNode Platform = "node"
	// PlatformBrowser targets browsers.
	PlatformBrowser Platform = "browser"
)

// CompileRequest describes one compiler invocation.
type CompileRequest struct {
	Format      Format
	Platform    Platform
	Minify      bool
	WorkingDir  string
	EntryPoints []string
	SourceMap   bool
	OutDir      string
	ConfigPath  string
	Incremental bool
}

// CompileOutput summarizes a successful compilation.
type CompileOutput struct {
	// Modules is the number of entry modules emitted.
	Modules int
	// Warnings holds formatted compiler warnings.
	Warnings []string
}

// RewriteRequest describes one path alias rewriting pass.
type RewriteRequest struct {
	ConfigFile string
	OutDir     string
}
