package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/justrun/internal/adapters/logger"
)

func asciiProfile() termenv.Profile { return termenv.Ascii }

func TestPrettyHandler_Handle_Levels(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		msg        string
		goldenName string
	}{
		{name: "info level", level: slog.LevelInfo, msg: "information message", goldenName: "handler_info"},
		{name: "success level", level: logger.LevelSuccess, msg: "success message", goldenName: "handler_success"},
		{name: "warn level", level: slog.LevelWarn, msg: "warning message", goldenName: "handler_warn"},
		{name: "error level", level: slog.LevelError, msg: "error message", goldenName: "handler_error"},
		{name: "debug level filtered", level: slog.LevelDebug, msg: "debug message", goldenName: "handler_debug_filtered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			handler := logger.NewPrettyHandlerWithProfile(buf, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}, asciiProfile)
			lg := slog.New(handler)

			lg.Log(t.Context(), tt.level, tt.msg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_Attrs(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := logger.NewPrettyHandlerWithProfile(buf, nil, asciiProfile)
	lg := slog.New(handler).With("span", "builder.start").WithGroup("build").With("modules", 3)

	lg.Info("timing", "ms", 12)

	g := goldie.New(t)
	g.Assert(t, "handler_attrs", buf.Bytes())
}

func TestPrettyHandler_Enabled(t *testing.T) {
	level := &slog.LevelVar{}
	handler := logger.NewPrettyHandlerWithProfile(&bytes.Buffer{}, &slog.HandlerOptions{Level: level}, asciiProfile)

	assert.False(t, handler.Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, handler.Enabled(t.Context(), logger.LevelSuccess))

	level.Set(slog.LevelDebug)
	assert.True(t, handler.Enabled(t.Context(), slog.LevelDebug))
}
