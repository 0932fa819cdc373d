// Package esbuild implements the compiler port on top of the esbuild Go API.
package esbuild

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/justrun/internal/core/domain"
	"go.trai.ch/justrun/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Compiler)(nil)

// Compiler compiles TypeScript and JavaScript sources with esbuild.
type Compiler struct {
	color    api.StderrColor
	logLevel api.LogLevel
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithSilentLog stops esbuild from printing diagnostics to stderr.
func WithSilentLog() Option {
	return func(c *Compiler) {
		c.logLevel = api.LogLevelSilent
	}
}

// SetColor lets esbuild colour diagnostics on terminals, or disables colour.
// It must be called before the first compilation.
func (c *Compiler) SetColor(enabled bool) {
	if enabled {
		c.color = api.ColorIfTerminal
	} else {
		c.color = api.ColorNever
	}
}

// NewCompiler creates a new Compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		color:    api.ColorIfTerminal,
		logLevel: api.LogLevelWarning,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Build performs one non-incremental compilation and writes it to disk.
func (c *Compiler) Build(_ context.Context, req domain.CompileRequest) (domain.CompileOutput, error) {
	result := api.Build(c.options(req))
	if len(result.Errors) > 0 {
		return domain.CompileOutput{}, compileError(result.Errors)
	}
	return output(req, result.Warnings), nil
}

// Context starts an incremental session and runs its first compilation.
func (c *Compiler) Context(ctx context.Context, req domain.CompileRequest) (ports.BuildHandle, domain.CompileOutput, error) {
	buildCtx, ctxErr := api.Context(c.options(req))
	if ctxErr != nil {
		return nil, domain.CompileOutput{}, compileError(ctxErr.Errors)
	}

	h := &handle{ctx: buildCtx, req: req}
	out, err := h.Rebuild(ctx)
	if err != nil {
		h.Dispose()
		return nil, domain.CompileOutput{}, err
	}
	return h, out, nil
}

func (c *Compiler) options(req domain.CompileRequest) api.BuildOptions {
	opts := api.BuildOptions{
		Color:             c.color,
		LogLevel:          c.logLevel,
		AbsWorkingDir:     req.WorkingDir,
		EntryPoints:       req.EntryPoints,
		Outdir:            req.OutDir,
		Tsconfig:          req.ConfigPath,
		Format:            format(req.Format),
		Platform:          platform(req.Platform),
		MinifyWhitespace:  req.Minify,
		MinifyIdentifiers: req.Minify,
		MinifySyntax:      req.Minify,
		Sourcemap:         api.SourceMapNone,
		Write:             true,
	}
	if req.SourceMap {
		opts.Sourcemap = api.SourceMapLinked
	}
	return opts
}

// handle wraps an esbuild build context.
type handle struct {
	mu       sync.Mutex
	ctx      api.BuildContext
	req      domain.CompileRequest
	disposed bool
}

// Rebuild re-emits output through the retained esbuild context.
func (h *handle) Rebuild(_ context.Context) (domain.CompileOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.disposed {
		return domain.CompileOutput{}, zerr.Wrap(ErrDisposed, domain.ErrCompileFailed.Error())
	}

	result := h.ctx.Rebuild()
	if len(result.Errors) > 0 {
		return domain.CompileOutput{}, compileError(result.Errors)
	}
	return output(h.req, result.Warnings), nil
}

// Stop cancels any in-flight compilation of the session.
func (h *handle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.disposed {
		h.ctx.Cancel()
	}
}

// Dispose releases the esbuild context. Calling it twice is safe.
func (h *handle) Dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.disposed {
		return
	}
	h.disposed = true
	h.ctx.Dispose()
}

// ErrDisposed is returned when a disposed session is asked to rebuild.
var ErrDisposed = zerr.New("build context already disposed")

func output(req domain.CompileRequest, warnings []api.Message) domain.CompileOutput {
	return domain.CompileOutput{
		Modules:  len(req.EntryPoints),
		Warnings: formatMessages(warnings, api.WarningMessage),
	}
}

func compileError(messages []api.Message) error {
	formatted := formatMessages(messages, api.ErrorMessage)
	detail := strings.TrimSpace(strings.Join(formatted, ""))
	if detail == "" {
		detail = fmt.Sprintf("%d errors", len(messages))
	}
	err := zerr.Wrap(zerr.New(detail), domain.ErrCompileFailed.Error())
	return zerr.With(err, "errors", len(messages))
}

func formatMessages(messages []api.Message, kind api.MessageKind) []string {
	if len(messages) == 0 {
		return nil
	}
	return api.FormatMessages(messages, api.FormatMessagesOptions{
		Kind: kind,
	})
}

func format(f domain.Format) api.Format {
	switch f {
	case domain.FormatESM:
		return api.FormatESModule
	case domain.FormatCommonJS:
		return api.FormatCommonJS
	default:
		return api.FormatDefault
	}
}

func platform(p domain.Platform) api.Platform {
	switch p {
	case domain.PlatformBrowser:
		return api.PlatformBrowser
	default:
		return api.PlatformNode
	}
}
