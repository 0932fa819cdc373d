package logger_test

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/justrun/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger with an injected bytes.Buffer and plain
// output for deterministic golden files.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	lg.SetColor(false)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name       string
		log        func(lg *logger.Logger)
		goldenName string
	}{
		{
			name:       "info",
			log:        func(lg *logger.Logger) { lg.Info("building...") },
			goldenName: "info_basic",
		},
		{
			name:       "success",
			log:        func(lg *logger.Logger) { lg.Success("build successfully in 12ms (3 modules)") },
			goldenName: "success_basic",
		},
		{
			name:       "warn",
			log:        func(lg *logger.Logger) { lg.Warn("watch root src is not a directory, skipping") },
			goldenName: "warn_basic",
		},
		{
			name:       "multiline info",
			log:        func(lg *logger.Logger) { lg.Info("line1\nline2") },
			goldenName: "info_multiline",
		},
		{
			name:       "debug filtered by default",
			log:        func(lg *logger.Logger) { lg.Debug("rebuild took 3ms") },
			goldenName: "debug_filtered",
		},
		{
			name: "debug enabled",
			log: func(lg *logger.Logger) {
				lg.SetDebug(true)
				lg.Debug("rebuild took 3ms")
			},
			goldenName: "debug_enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			tt.log(lg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "standard error",
			err:        os.ErrPermission,
			goldenName: "error_simple",
		},
		{
			name:       "sentinel",
			err:        zerr.New("build failed"),
			goldenName: "error_sentinel",
		},
		{
			name: "wrapped chain",
			err: zerr.Wrap(
				zerr.Wrap(errors.New("open tsconfig.json: no such file or directory"), "could not find tsconfig"),
				"failed to load configuration",
			),
			goldenName: "error_chain",
		},
		{
			name:       "multiline cause",
			err:        zerr.Wrap(errors.New("a.ts:1:13: ERROR: Expected identifier\n  export const = ;"), "compilation failed"),
			goldenName: "error_multiline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_SetOutputNil(t *testing.T) {
	lg, _ := newTestLogger(t)
	assert.NotPanics(t, func() {
		lg.SetOutput(nil)
	})
}
