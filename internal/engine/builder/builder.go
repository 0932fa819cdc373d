// Package builder implements the incremental build orchestrator.
//
// A Builder owns at most one live incremental build handle. Build performs a
// one-shot compilation, Start performs the first incremental compilation or
// re-emits output through the existing handle, and Stop releases the handle.
// Failures inside Build and Start never escape: they are reported through the
// returned domain.BuildResult, the Failed flag and the logger.
package builder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/justrun/internal/core/domain"
	"go.trai.ch/justrun/internal/core/ports"
	"go.trai.ch/zerr"
)

// TracerName is the instrumentation name of the builder spans.
const TracerName = "go.trai.ch/justrun/builder"

// Builder is the incremental build orchestrator.
type Builder struct {
	cfg      *domain.CompilationConfig
	compiler ports.Compiler
	rewriter ports.AliasRewriter
	logger   ports.Logger
	tracer   trace.Tracer
	workDir  string
	now      func() time.Time

	handle ports.BuildHandle
	failed bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithWorkingDir sets the directory compilations run in and the output
// directory is resolved against. It defaults to the process working directory.
func WithWorkingDir(dir string) Option {
	return func(b *Builder) {
		b.workDir = dir
	}
}

// WithTracer sets the tracer used for build spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(b *Builder) {
		b.tracer = tracer
	}
}

// WithClock replaces the clock used for elapsed time reporting.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// New creates a Builder for the given configuration.
func New(
	cfg *domain.CompilationConfig,
	compiler ports.Compiler,
	rewriter ports.AliasRewriter,
	logger ports.Logger,
	opts ...Option,
) *Builder {
	b := &Builder{
		cfg:      cfg,
		compiler: compiler,
		rewriter: rewriter,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			b.workDir = wd
		} else {
			b.workDir = "."
		}
	}
	if b.tracer == nil {
		b.tracer = otel.Tracer(TracerName)
	}
	return b
}

// Failed reports whether the most recent Build or Start attempt failed.
func (b *Builder) Failed() bool {
	return b.failed
}

// Active reports whether an incremental build handle is retained.
func (b *Builder) Active() bool {
	return b.handle != nil
}

// Build performs a one-shot, non-incremental build. It never changes whether
// a handle is retained.
func (b *Builder) Build(ctx context.Context) domain.BuildResult {
	ctx, span := b.tracer.Start(ctx, "builder.build")
	defer span.End()

	return b.attempt(span, func() (int, error) {
		if err := b.Clean(); err != nil {
			return 0, err
		}

		out, err := b.compiler.Build(ctx, b.request(false))
		if err != nil {
			return 0, err
		}

		if b.cfg.HasPaths() {
			if _, err := b.rewriter.Rewrite(ctx, domain.RewriteRequest{
				ConfigFile: b.cfg.ConfigPath(),
				OutDir:     b.cfg.OutDir(),
			}); err != nil {
				return 0, err
			}
		}

		return out.Modules, nil
	})
}

// Start performs the first incremental build, or re-emits output through the
// retained handle when one exists. Start does not rewrite path aliases.
func (b *Builder) Start(ctx context.Context) domain.BuildResult {
	ctx, span := b.tracer.Start(ctx, "builder.start")
	defer span.End()

	return b.attempt(span, func() (int, error) {
		if b.handle != nil {
			span.SetAttributes(attribute.Bool("build.reused", true))
			return b.rebuild(ctx)
		}

		if err := b.Clean(); err != nil {
			return 0, err
		}

		handle, out, err := b.compiler.Context(ctx, b.request(true))
		if err != nil {
			return 0, err
		}
		b.handle = handle

		return out.Modules, nil
	})
}

// Rebuild re-emits output through the retained handle. It is a no-op when no
// handle exists. The handle stays retained when re-emission fails.
func (b *Builder) Rebuild(ctx context.Context) error {
	_, err := b.rebuild(ctx)
	return err
}

// rebuild re-emits through the retained handle and returns the module count
// the compiler reported.
func (b *Builder) rebuild(ctx context.Context) (int, error) {
	if b.handle == nil {
		return 0, nil
	}

	ctx, span := b.tracer.Start(ctx, "builder.rebuild")
	defer span.End()

	out, err := b.handle.Rebuild(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rebuild failed")
		return 0, err
	}
	span.SetAttributes(attribute.Int("build.modules", out.Modules))
	return out.Modules, nil
}

// Stop halts and disposes the retained handle. It is a no-op when no handle
// exists, so calling it twice is safe.
func (b *Builder) Stop() {
	if b.handle == nil {
		return
	}

	handle := b.handle
	b.handle = nil

	defer handle.Dispose()
	handle.Stop()
}

// Clean removes the output directory. A missing directory is not an error.
func (b *Builder) Clean() error {
	path := b.outPath()

	if err := b.checkCleanTarget(path); err != nil {
		return err
	}

	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCleanFailed.Error()), "path", path)
	}
	return nil
}

// attempt runs one build attempt and converts its outcome into a result,
// the failure flag and user-facing notifications.
func (b *Builder) attempt(span trace.Span, run func() (int, error)) domain.BuildResult {
	b.logger.Info("building...")
	started := b.now()
	b.failed = false

	modules, err := run()
	elapsed := b.now().Sub(started)

	if err != nil {
		b.failed = true
		span.RecordError(err)
		span.SetStatus(codes.Error, domain.ErrBuildFailed.Error())
		span.SetAttributes(attribute.Bool("build.failed", true))

		b.logger.Error(domain.ErrBuildFailed)
		b.logger.Debug(err.Error())
		return domain.Failed(err, elapsed)
	}

	span.SetAttributes(
		attribute.Bool("build.failed", false),
		attribute.Int("build.modules", modules),
	)
	b.logger.Success(fmt.Sprintf("build successfully in %s (%d modules)", formatElapsed(elapsed), modules))
	return domain.Succeeded(modules, elapsed)
}

func (b *Builder) request(incremental bool) domain.CompileRequest {
	return domain.CompileRequest{
		Format:      domain.FormatCommonJS,
		Platform:    domain.PlatformNode,
		Minify:      true,
		WorkingDir:  b.workDir,
		EntryPoints: b.cfg.EntryFiles(),
		SourceMap:   b.cfg.SourceMap(),
		OutDir:      b.cfg.OutDir(),
		ConfigPath:  b.cfg.ConfigPath(),
		Incremental: incremental,
	}
}

func (b *Builder) outPath() string {
	out := b.cfg.OutDir()
	if filepath.IsAbs(out) {
		return filepath.Clean(out)
	}
	return filepath.Join(b.workDir, out)
}

// checkCleanTarget rejects output directories whose removal would delete the
// working directory or one of its ancestors.
func (b *Builder) checkCleanTarget(path string) error {
	if strings.TrimSpace(b.cfg.OutDir()) == "" {
		return zerr.With(domain.ErrUnsafeClean, "out_dir", b.cfg.OutDir())
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCleanFailed.Error()), "path", path)
	}
	workDir, err := filepath.Abs(b.workDir)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCleanFailed.Error()), "path", b.workDir)
	}

	rel, err := filepath.Rel(target, workDir)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return zerr.With(domain.ErrUnsafeClean, "path", target)
	}
	return nil
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}
