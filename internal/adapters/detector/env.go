// Package detector inspects the environment to choose output settings.
package detector

import (
	"os"

	"go.trai.ch/justrun/internal/core/domain"
	"golang.org/x/term"
)

// Settings are the output settings derived from flags and the environment.
type Settings struct {
	Color bool
	Debug bool
}

// Detect resolves output settings for the stream with the given file
// descriptor. Colour is disabled by the flag, NO_COLOR, TERM=dumb, or a
// stream that is not a terminal. Debug is enabled by the flag or JUST_DEBUG.
func Detect(fd uintptr, noColorFlag, debugFlag bool) Settings {
	return Settings{
		Color: ColorEnabled(term.IsTerminal(int(fd)), noColorFlag), //nolint:gosec // fd fits in int
		Debug: DebugEnabled(debugFlag),
	}
}

// DetectStderr resolves output settings for os.Stderr.
func DetectStderr(noColorFlag, debugFlag bool) Settings {
	return Detect(os.Stderr.Fd(), noColorFlag, debugFlag)
}

// ColorEnabled applies the colour overrides to the terminal detection.
func ColorEnabled(isTTY, noColorFlag bool) bool {
	if noColorFlag || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTTY
}

// DebugEnabled reports whether debug output was requested.
func DebugEnabled(debugFlag bool) bool {
	return debugFlag || os.Getenv(domain.DebugEnvVar) != ""
}
