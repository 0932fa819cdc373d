package builder_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/justrun/internal/core/domain"
	"go.trai.ch/justrun/internal/core/ports"
	"go.trai.ch/justrun/internal/core/ports/mocks"
	"go.trai.ch/justrun/internal/engine/builder"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	builder  *builder.Builder
	compiler *mocks.MockCompiler
	rewriter *mocks.MockAliasRewriter
	logger   *mocks.MockLogger
	workDir  string
	outDir   string
}

func newFixture(t *testing.T, hasPaths bool, opts ...builder.Option) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	workDir := t.TempDir()

	cfg := domain.NewCompilationConfig(domain.CompilationOptions{
		EntryFiles: []string{"a.ts"},
		OutDir:     "dist",
		SourceMap:  true,
		HasPaths:   hasPaths,
		ConfigPath: "tsconfig.json",
	})

	f := &fixture{
		compiler: mocks.NewMockCompiler(ctrl),
		rewriter: mocks.NewMockAliasRewriter(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		workDir:  workDir,
		outDir:   filepath.Join(workDir, "dist"),
	}

	f.logger.EXPECT().Info("building...").AnyTimes()
	f.logger.EXPECT().Success(gomock.Any()).AnyTimes()

	opts = append([]builder.Option{builder.WithWorkingDir(workDir)}, opts...)
	f.builder = builder.New(cfg, f.compiler, f.rewriter, f.logger, opts...)
	return f
}

// expectDebug records every diagnostic message. Builders only emit them
// for failed attempts, so tests of successful builds leave it unset.
func (f *fixture) expectDebug() *[]string {
	var msgs []string
	f.logger.EXPECT().Debug(gomock.Any()).Do(func(msg string) {
		msgs = append(msgs, msg)
	}).AnyTimes()
	return &msgs
}

func (f *fixture) writeOutput(t *testing.T, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(f.outDir, domain.DirPerm))
	path := filepath.Join(f.outDir, name)
	require.NoError(t, os.WriteFile(path, []byte("stale"), domain.FilePerm))
	return path
}

func TestBuilder_Clean(t *testing.T) {
	t.Run("missing directory is not an error", func(t *testing.T) {
		f := newFixture(t, false)

		require.NoError(t, f.builder.Clean())
		require.NoError(t, f.builder.Clean())
		assert.NoDirExists(t, f.outDir)
	})

	t.Run("removes existing tree", func(t *testing.T) {
		f := newFixture(t, false)
		f.writeOutput(t, "index.js")
		require.NoError(t, os.MkdirAll(filepath.Join(f.outDir, "nested", "deep"), domain.DirPerm))

		require.NoError(t, f.builder.Clean())
		require.NoError(t, f.builder.Clean())
		assert.NoDirExists(t, f.outDir)
	})
}

func TestBuilder_Clean_RefusesUnsafeTargets(t *testing.T) {
	tests := []struct {
		name   string
		outDir string
	}{
		{name: "empty", outDir: ""},
		{name: "working directory", outDir: "."},
		{name: "parent directory", outDir: ".."},
		{name: "filesystem root", outDir: string(filepath.Separator)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			workDir := t.TempDir()
			marker := filepath.Join(workDir, "keep.txt")
			require.NoError(t, os.WriteFile(marker, []byte("keep"), domain.FilePerm))

			cfg := domain.NewCompilationConfig(domain.CompilationOptions{
				EntryFiles: []string{"a.ts"},
				OutDir:     tt.outDir,
			})
			b := builder.New(cfg, mocks.NewMockCompiler(ctrl), mocks.NewMockAliasRewriter(ctrl),
				mocks.NewMockLogger(ctrl), builder.WithWorkingDir(workDir))

			err := b.Clean()
			require.Error(t, err)
			assert.Contains(t, err.Error(), domain.ErrUnsafeClean.Error())
			assert.FileExists(t, marker)
		})
	}
}

func TestBuilder_Build_Success(t *testing.T) {
	f := newFixture(t, false)
	stale := f.writeOutput(t, "stale.js")

	f.compiler.EXPECT().
		Build(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.CompileRequest) (domain.CompileOutput, error) {
			assert.NoFileExists(t, stale, "clean must run before compiling")
			assert.Equal(t, domain.CompileRequest{
				Format:      domain.FormatCommonJS,
				Platform:    domain.PlatformNode,
				Minify:      true,
				WorkingDir:  f.workDir,
				EntryPoints: []string{"a.ts"},
				SourceMap:   true,
				OutDir:      "dist",
				ConfigPath:  "tsconfig.json",
				Incremental: false,
			}, req)
			return domain.CompileOutput{Modules: 1}, nil
		})
	f.rewriter.EXPECT().Rewrite(gomock.Any(), gomock.Any()).Times(0)

	res := f.builder.Build(context.Background())

	assert.True(t, res.OK())
	assert.Equal(t, 1, res.Modules)
	assert.False(t, f.builder.Failed())
	assert.False(t, f.builder.Active())
}

func TestBuilder_Build_CompileError(t *testing.T) {
	f := newFixture(t, true)
	compileErr := errors.New("syntax error")

	gomock.InOrder(
		f.compiler.EXPECT().Build(gomock.Any(), gomock.Any()).Return(domain.CompileOutput{}, compileErr),
		f.compiler.EXPECT().Build(gomock.Any(), gomock.Any()).Return(domain.CompileOutput{Modules: 1}, nil),
	)
	f.rewriter.EXPECT().Rewrite(gomock.Any(), gomock.Any()).Return(1, nil).Times(1)
	f.logger.EXPECT().Error(domain.ErrBuildFailed).Times(1)
	debug := f.expectDebug()

	res := f.builder.Build(context.Background())
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Reason, compileErr)
	assert.True(t, f.builder.Failed())
	require.Len(t, *debug, 1, "the underlying error is surfaced once in debug output")
	assert.Contains(t, (*debug)[0], "syntax error")

	// The builder stays usable and resets the flag on the next attempt.
	res = f.builder.Build(context.Background())
	assert.True(t, res.OK())
	assert.False(t, f.builder.Failed())
	assert.Len(t, *debug, 1, "a successful build reports no error")
}

func TestBuilder_Build_RewriteError(t *testing.T) {
	f := newFixture(t, true)
	rewriteErr := errors.New("bad alias")

	f.compiler.EXPECT().Build(gomock.Any(), gomock.Any()).Return(domain.CompileOutput{Modules: 1}, nil)
	f.rewriter.EXPECT().
		Rewrite(gomock.Any(), domain.RewriteRequest{ConfigFile: "tsconfig.json", OutDir: "dist"}).
		Return(0, rewriteErr)
	f.logger.EXPECT().Error(domain.ErrBuildFailed).Times(1)
	debug := f.expectDebug()

	res := f.builder.Build(context.Background())

	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Reason, rewriteErr)
	assert.True(t, f.builder.Failed())
	require.Len(t, *debug, 1)
	assert.Contains(t, (*debug)[0], "bad alias")
}

func TestBuilder_Build_RewriteGating(t *testing.T) {
	tests := []struct {
		name        string
		hasPaths    bool
		compileErr  error
		wantRewrite int
	}{
		{name: "paths and success", hasPaths: true, wantRewrite: 1},
		{name: "paths and failure", hasPaths: true, compileErr: errors.New("fail"), wantRewrite: 0},
		{name: "no paths and success", hasPaths: false, wantRewrite: 0},
		{name: "no paths and failure", hasPaths: false, compileErr: errors.New("fail"), wantRewrite: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.hasPaths)
			f.logger.EXPECT().Error(gomock.Any()).AnyTimes()
			f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()

			f.compiler.EXPECT().Build(gomock.Any(), gomock.Any()).Return(domain.CompileOutput{Modules: 1}, tt.compileErr)
			f.rewriter.EXPECT().Rewrite(gomock.Any(), gomock.Any()).Return(0, nil).Times(tt.wantRewrite)

			res := f.builder.Build(context.Background())
			assert.Equal(t, tt.compileErr == nil, res.OK())
		})
	}
}

func TestBuilder_Build_CleanError(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(domain.ErrBuildFailed)

	workDir := t.TempDir()
	cfg := domain.NewCompilationConfig(domain.CompilationOptions{EntryFiles: []string{"a.ts"}, OutDir: "."})
	compiler := mocks.NewMockCompiler(ctrl)
	compiler.EXPECT().Build(gomock.Any(), gomock.Any()).Times(0)

	b := builder.New(cfg, compiler, mocks.NewMockAliasRewriter(ctrl), logger, builder.WithWorkingDir(workDir))
	res := b.Build(context.Background())

	assert.False(t, res.OK())
	assert.True(t, b.Failed())
}

func TestBuilder_Start_ReusesHandle(t *testing.T) {
	f := newFixture(t, true)
	handle := mocks.NewMockBuildHandle(gomock.NewController(t))

	f.compiler.EXPECT().
		Context(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.CompileRequest) (ports.BuildHandle, domain.CompileOutput, error) {
			assert.True(t, req.Incremental)
			return handle, domain.CompileOutput{Modules: 1}, nil
		}).
		Times(1)
	handle.EXPECT().Rebuild(gomock.Any()).Return(domain.CompileOutput{Modules: 3}, nil).Times(1)
	f.rewriter.EXPECT().Rewrite(gomock.Any(), gomock.Any()).Times(0)

	res := f.builder.Start(context.Background())
	require.True(t, res.OK())
	require.True(t, f.builder.Active())

	// Output written after the first start must survive the second one.
	marker := f.writeOutput(t, "index.js")

	res = f.builder.Start(context.Background())
	require.True(t, res.OK())
	assert.Equal(t, 3, res.Modules, "the count comes from the re-emission output")
	assert.True(t, f.builder.Active())
	assert.FileExists(t, marker)
	assert.False(t, f.builder.Failed())
}

func TestBuilder_Start_FailureLeavesIdle(t *testing.T) {
	f := newFixture(t, false)
	f.logger.EXPECT().Error(domain.ErrBuildFailed).Times(1)
	f.expectDebug()

	gomock.InOrder(
		f.compiler.EXPECT().Context(gomock.Any(), gomock.Any()).Return(nil, domain.CompileOutput{}, errors.New("fail")),
		f.compiler.EXPECT().Context(gomock.Any(), gomock.Any()).
			Return(mocks.NewMockBuildHandle(gomock.NewController(t)), domain.CompileOutput{Modules: 1}, nil),
	)

	res := f.builder.Start(context.Background())
	assert.False(t, res.OK())
	assert.True(t, f.builder.Failed())
	assert.False(t, f.builder.Active())

	res = f.builder.Start(context.Background())
	assert.True(t, res.OK())
	assert.False(t, f.builder.Failed())
	assert.True(t, f.builder.Active())
}

func TestBuilder_Start_RebuildErrorKeepsHandle(t *testing.T) {
	f := newFixture(t, false)
	handle := mocks.NewMockBuildHandle(gomock.NewController(t))
	rebuildErr := errors.New("type error")

	f.compiler.EXPECT().Context(gomock.Any(), gomock.Any()).Return(handle, domain.CompileOutput{Modules: 1}, nil)
	handle.EXPECT().Rebuild(gomock.Any()).Return(domain.CompileOutput{}, rebuildErr)
	f.logger.EXPECT().Error(domain.ErrBuildFailed).Times(1)
	f.expectDebug()

	require.True(t, f.builder.Start(context.Background()).OK())

	res := f.builder.Start(context.Background())
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Reason, rebuildErr)
	assert.True(t, f.builder.Failed())
	assert.True(t, f.builder.Active())
}

func TestBuilder_Rebuild_NoHandle(t *testing.T) {
	f := newFixture(t, false)

	require.NoError(t, f.builder.Rebuild(context.Background()))
	assert.False(t, f.builder.Active())
}

func TestBuilder_Rebuild_PropagatesError(t *testing.T) {
	f := newFixture(t, false)
	handle := mocks.NewMockBuildHandle(gomock.NewController(t))
	rebuildErr := errors.New("boom")

	f.compiler.EXPECT().Context(gomock.Any(), gomock.Any()).Return(handle, domain.CompileOutput{Modules: 1}, nil)
	handle.EXPECT().Rebuild(gomock.Any()).Return(domain.CompileOutput{}, rebuildErr)

	require.True(t, f.builder.Start(context.Background()).OK())

	err := f.builder.Rebuild(context.Background())
	require.ErrorIs(t, err, rebuildErr)
	assert.False(t, f.builder.Failed(), "rebuild alone does not touch the flag")
	assert.True(t, f.builder.Active())
}

func TestBuilder_Stop(t *testing.T) {
	t.Run("no handle is a no-op", func(t *testing.T) {
		f := newFixture(t, false)

		f.builder.Stop()
		f.builder.Stop()
		assert.False(t, f.builder.Active())
	})

	t.Run("stops then disposes once", func(t *testing.T) {
		f := newFixture(t, false)
		handle := mocks.NewMockBuildHandle(gomock.NewController(t))

		f.compiler.EXPECT().Context(gomock.Any(), gomock.Any()).Return(handle, domain.CompileOutput{Modules: 1}, nil)
		gomock.InOrder(
			handle.EXPECT().Stop().Times(1),
			handle.EXPECT().Dispose().Times(1),
		)

		require.True(t, f.builder.Start(context.Background()).OK())
		f.builder.Stop()
		f.builder.Stop()
		assert.False(t, f.builder.Active())
	})

	t.Run("start after stop creates a fresh session", func(t *testing.T) {
		f := newFixture(t, false)
		ctrl := gomock.NewController(t)
		first := mocks.NewMockBuildHandle(ctrl)
		second := mocks.NewMockBuildHandle(ctrl)

		gomock.InOrder(
			f.compiler.EXPECT().Context(gomock.Any(), gomock.Any()).Return(first, domain.CompileOutput{Modules: 1}, nil),
			f.compiler.EXPECT().Context(gomock.Any(), gomock.Any()).Return(second, domain.CompileOutput{Modules: 1}, nil),
		)
		first.EXPECT().Stop()
		first.EXPECT().Dispose()

		require.True(t, f.builder.Start(context.Background()).OK())
		f.builder.Stop()
		require.True(t, f.builder.Start(context.Background()).OK())
		assert.True(t, f.builder.Active())
	})

	t.Run("disposes even when stop panics", func(t *testing.T) {
		f := newFixture(t, false)
		handle := mocks.NewMockBuildHandle(gomock.NewController(t))

		f.compiler.EXPECT().Context(gomock.Any(), gomock.Any()).Return(handle, domain.CompileOutput{Modules: 1}, nil)
		handle.EXPECT().Stop().Do(func() { panic("stop failed") })
		handle.EXPECT().Dispose().Times(1)

		require.True(t, f.builder.Start(context.Background()).OK())
		assert.Panics(t, f.builder.Stop)
		assert.False(t, f.builder.Active())
	})
}

func TestBuilder_Build_KeepsHandle(t *testing.T) {
	f := newFixture(t, false)
	handle := mocks.NewMockBuildHandle(gomock.NewController(t))

	f.compiler.EXPECT().Context(gomock.Any(), gomock.Any()).Return(handle, domain.CompileOutput{Modules: 1}, nil)
	f.compiler.EXPECT().Build(gomock.Any(), gomock.Any()).Return(domain.CompileOutput{Modules: 1}, nil)

	require.True(t, f.builder.Start(context.Background()).OK())
	require.True(t, f.builder.Build(context.Background()).OK())
	assert.True(t, f.builder.Active())
}

func TestBuilder_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	f := newFixture(t, false, builder.WithTracer(provider.Tracer(builder.TracerName)))
	f.logger.EXPECT().Error(domain.ErrBuildFailed)
	f.expectDebug()

	f.compiler.EXPECT().Build(gomock.Any(), gomock.Any()).Return(domain.CompileOutput{Modules: 2}, nil)
	f.compiler.EXPECT().Context(gomock.Any(), gomock.Any()).Return(nil, domain.CompileOutput{}, errors.New("fail"))

	f.builder.Build(context.Background())
	f.builder.Start(context.Background())

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "builder.build", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("build.modules", 2))
	assert.Contains(t, spans[0].Attributes(), attribute.Bool("build.failed", false))

	assert.Equal(t, "builder.start", spans[1].Name())
	assert.Contains(t, spans[1].Attributes(), attribute.Bool("build.failed", true))
	assert.NotEmpty(t, spans[1].Events(), "the error is recorded on the span")
}

func TestBuilder_SuccessMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	compiler := mocks.NewMockCompiler(ctrl)

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ticks := []time.Time{started, started.Add(1500 * time.Millisecond)}
	clock := func() time.Time {
		now := ticks[0]
		ticks = ticks[1:]
		return now
	}

	cfg := domain.NewCompilationConfig(domain.CompilationOptions{EntryFiles: []string{"a.ts"}, OutDir: "dist"})
	b := builder.New(cfg, compiler, mocks.NewMockAliasRewriter(ctrl), logger,
		builder.WithWorkingDir(t.TempDir()), builder.WithClock(clock))

	gomock.InOrder(
		logger.EXPECT().Info("building..."),
		logger.EXPECT().Success("build successfully in 1.5s (1 modules)"),
	)
	compiler.EXPECT().Build(gomock.Any(), gomock.Any()).Return(domain.CompileOutput{Modules: 1}, nil)

	res := b.Build(context.Background())
	require.True(t, res.OK())
	assert.Equal(t, 1500*time.Millisecond, res.Elapsed)
}
