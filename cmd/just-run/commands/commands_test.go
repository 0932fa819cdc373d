package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/justrun/cmd/just-run/commands"
	"go.trai.ch/justrun/internal/app"
	"go.trai.ch/justrun/internal/build"
)

type mockApp struct {
	runFunc   func(ctx context.Context, opts app.RunOptions) error
	buildFunc func(ctx context.Context, opts app.BuildOptions) error
	cleanFunc func(ctx context.Context, opts app.CleanOptions) error
}

func (m *mockApp) Run(ctx context.Context, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Build(ctx context.Context, opts app.BuildOptions) error {
	if m.buildFunc != nil {
		return m.buildFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Clean(ctx context.Context, opts app.CleanOptions) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, opts)
	}
	return nil
}

func TestCommands_Root(t *testing.T) {
	t.Setenv("JUST_DEBUG", "")
	t.Setenv("NO_COLOR", "")

	t.Run("passes everything after the command through", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"-t", "tsconfig.app.json", "--debug", "node", "--inspect", "dist/index.js"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tsconfig.app.json", captured.TSConfig)
		assert.Equal(t, "node", captured.Command)
		assert.Equal(t, []string{"--inspect", "dist/index.js"}, captured.Args)
		assert.True(t, captured.Debug)
	})

	t.Run("defaults", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"node", "dist/index.js"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "tsconfig.json", captured.TSConfig)
		assert.False(t, captured.Debug)
	})

	t.Run("debug from the environment", func(t *testing.T) {
		t.Setenv("JUST_DEBUG", "1")

		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"node"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.True(t, captured.Debug)
		assert.Empty(t, captured.Args)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"node"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("shows usage when no command provided", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) error {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs([]string{})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Usage:")
	})
}

func TestCommands_Build(t *testing.T) {
	t.Setenv("JUST_DEBUG", "")

	var captured app.BuildOptions
	mock := &mockApp{
		buildFunc: func(_ context.Context, opts app.BuildOptions) error {
			captured = opts
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"build", "--tsconfig", "tsconfig.build.json", "--no-color"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "tsconfig.build.json", captured.TSConfig)
	assert.True(t, captured.NoColor)
	assert.False(t, captured.Debug)
}

func TestCommands_Build_RejectsArgs(t *testing.T) {
	cli := commands.New(&mockApp{})
	cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
	cli.SetArgs([]string{"build", "extra"})

	require.Error(t, cli.Execute(context.Background()))
}

func TestCommands_Clean(t *testing.T) {
	var captured app.CleanOptions
	called := false
	mock := &mockApp{
		cleanFunc: func(_ context.Context, opts app.CleanOptions) error {
			captured = opts
			called = true
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"clean", "-t", "other.json"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, called)
	assert.Equal(t, "other.json", captured.TSConfig)
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "just-run version "+build.Version)
}
