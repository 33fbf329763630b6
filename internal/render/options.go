package render

import (
	"fmt"
	"strings"
)

// Format selects the layout used to print a diff
type Format int

const (
	// FormatSimple prints one tag line and a change summary per file
	FormatSimple Format = iota
	// FormatUnified prints classic unified-diff hunks
	FormatUnified
	// FormatSideBySide prints old and new text in two columns
	FormatSideBySide
)

// DefaultColumnWidth is the width of each side-by-side column
const DefaultColumnWidth = 60

// String returns the config name of the format
func (f Format) String() string {
	switch f {
	case FormatUnified:
		return "unified"
	case FormatSideBySide:
		return "side-by-side"
	default:
		return "simple"
	}
}

// ParseFormat converts a config or flag value into a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unified":
		return FormatUnified, nil
	case "side-by-side", "sidebyside", "split":
		return FormatSideBySide, nil
	case "simple", "summary":
		return FormatSimple, nil
	}
	return FormatSimple, fmt.Errorf("unknown diff format %q (want unified, side-by-side or simple)", s)
}

// ResolveFormat maps the unifiedFormat/sideBySide flag pair onto a Format.
// sideBySide wins over unified; with neither set the simple layout is used.
func ResolveFormat(unified, sideBySide bool) Format {
	switch {
	case sideBySide:
		return FormatSideBySide
	case unified:
		return FormatUnified
	default:
		return FormatSimple
	}
}

// Options configures a Renderer.
//
// The zero value renders the simple layout without color; use DefaultOptions
// for the usual colorized unified output.
type Options struct {
	// Colorize wraps headers, additions and deletions in ANSI color sequences
	Colorize bool
	// Format picks the layout
	Format Format
	// ColumnWidth bounds each side-by-side column; zero means DefaultColumnWidth
	ColumnWidth int
}

// DefaultOptions returns colorized unified output
func DefaultOptions() Options {
	return Options{
		Colorize:    true,
		Format:      FormatUnified,
		ColumnWidth: DefaultColumnWidth,
	}
}

// Plain returns a copy of o with colorization turned off
func (o Options) Plain() Options {
	o.Colorize = false
	return o
}
