package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// palette holds the styles used when colorizing.
// Styles come from a dedicated lipgloss renderer pinned to the ANSI profile, so
// the escape sequences do not depend on whether stdout is a terminal.
type palette struct {
	header      lipgloss.Style
	hunk        lipgloss.Style
	added       lipgloss.Style
	removed     lipgloss.Style
	addedEmph   lipgloss.Style
	removedEmph lipgloss.Style
}

func newPalette() palette {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)

	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return palette{
		header:      base.Bold(true).Foreground(lipgloss.Color("6")),
		hunk:        base.Foreground(lipgloss.Color("5")),
		added:       base.Foreground(lipgloss.Color("2")),
		removed:     base.Foreground(lipgloss.Color("1")),
		addedEmph:   base.Bold(true).Underline(true).Foreground(lipgloss.Color("2")),
		removedEmph: base.Bold(true).Underline(true).Foreground(lipgloss.Color("1")),
	}
}
