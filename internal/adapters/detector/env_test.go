package detector_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/justrun/internal/adapters/detector"
	"go.trai.ch/justrun/internal/core/domain"
)

func TestColorEnabled(t *testing.T) {
	tests := []struct {
		name    string
		noColor string
		term    string
		isTTY   bool
		flag    bool
		want    bool
	}{
		{name: "terminal", term: "xterm-256color", isTTY: true, want: true},
		{name: "not a terminal", term: "xterm-256color", isTTY: false, want: false},
		{name: "flag", term: "xterm-256color", isTTY: true, flag: true, want: false},
		{name: "NO_COLOR", noColor: "1", term: "xterm-256color", isTTY: true, want: false},
		{name: "dumb terminal", term: "dumb", isTTY: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("TERM", tt.term)

			assert.Equal(t, tt.want, detector.ColorEnabled(tt.isTTY, tt.flag))
		})
	}
}

func TestDebugEnabled(t *testing.T) {
	t.Setenv(domain.DebugEnvVar, "")
	assert.False(t, detector.DebugEnabled(false))
	assert.True(t, detector.DebugEnabled(true))

	t.Setenv(domain.DebugEnvVar, "1")
	assert.True(t, detector.DebugEnabled(false))
}

func TestDetect_NonTerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv(domain.DebugEnvVar, "")

	f, err := os.CreateTemp(t.TempDir(), "out")
	assert.NoError(t, err)
	defer f.Close()

	got := detector.Detect(f.Fd(), false, true)
	assert.Equal(t, detector.Settings{Color: false, Debug: true}, got)
}
