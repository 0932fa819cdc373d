// Package style provides the brand colours and status markers shared by the
// terminal output of just-run.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Marker is the icon and colour that prefix a status line.
type Marker struct {
	Icon  string
	Color lipgloss.Color
}

// Status markers, one per kind of notification.
var (
	Failure  = Marker{Icon: "✗", Color: Red}
	Caution  = Marker{Icon: "!", Color: Yellow}
	Done     = Marker{Icon: "✓", Color: Green}
	Progress = Marker{Icon: "●", Color: Iris}
	Trace    = Marker{Icon: "~", Color: Slate}
)

// Prefix returns msg preceded by the marker icon.
func (m Marker) Prefix(msg string) string {
	return m.Icon + " " + msg
}

// TermColor converts the marker colour for termenv output.
func (m Marker) TermColor() termenv.Color {
	return termenv.RGBColor(string(m.Color))
}
