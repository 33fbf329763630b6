package render

import (
	"fmt"
	"strings"

	"github.com/epuerta/codeguard/internal/diff"
	"github.com/mattn/go-runewidth"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// NoChangesMessage is returned when there is nothing to preview
const NoChangesMessage = "No pending changes to preview"

// Renderer formats file diffs as text
type Renderer struct {
	opts    Options
	palette palette
}

// New creates a Renderer for the given options
func New(opts Options) *Renderer {
	if opts.ColumnWidth <= 0 {
		opts.ColumnWidth = DefaultColumnWidth
	}
	return &Renderer{opts: opts, palette: newPalette()}
}

// Render formats every file and separates the sections with a blank line
func (r *Renderer) Render(files []diff.FileDiff) string {
	if len(files) == 0 {
		return NoChangesMessage
	}

	sections := make([]string, 0, len(files))
	for _, f := range files {
		sections = append(sections, r.RenderFile(f))
	}
	return strings.Join(sections, "\n\n")
}

// RenderFile formats a single file in the configured layout
func (r *Renderer) RenderFile(f diff.FileDiff) string {
	var lines []string
	switch r.opts.Format {
	case FormatUnified:
		lines = r.unified(f)
	case FormatSideBySide:
		lines = r.sideBySide(f)
	default:
		lines = r.simple(f)
	}
	lines = append(lines, summary(f.Stats))
	return strings.Join(lines, "\n")
}

func summary(s diff.Stats) string {
	return fmt.Sprintf("Changes: +%d -%d", s.Additions, s.Deletions)
}

func (r *Renderer) header(s string) string {
	if !r.opts.Colorize {
		return s
	}
	return r.palette.header.Render(s)
}

func (r *Renderer) hunkMarker(h diff.Hunk) string {
	marker := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
	if !r.opts.Colorize {
		return marker
	}
	return r.palette.hunk.Render(marker)
}

func (r *Renderer) line(kind diff.LineKind, s string) string {
	if !r.opts.Colorize {
		return s
	}
	switch kind {
	case diff.Added:
		return r.palette.added.Render(s)
	case diff.Removed:
		return r.palette.removed.Render(s)
	}
	return s
}

func tag(kind diff.ChangeKind) string {
	switch kind {
	case diff.Create:
		return "[CREATED]"
	case diff.Delete:
		return "[DELETED]"
	default:
		return "[MODIFIED]"
	}
}

func (r *Renderer) simple(f diff.FileDiff) []string {
	return []string{r.header(tag(f.Kind) + " " + f.Path)}
}

func (r *Renderer) unified(f diff.FileDiff) []string {
	oldName, newName := "--- "+f.Path, "+++ "+f.Path
	switch f.Kind {
	case diff.Delete:
		oldName += " (deleted)"
	case diff.Create:
		newName += " (new file)"
	}

	out := []string{r.header(oldName), r.header(newName)}
	for _, h := range f.Hunks {
		out = append(out, r.hunkMarker(h))
		out = r.appendHunkBody(out, h.Lines)
	}
	return out
}

// appendHunkBody writes prefixed lines. When colorizing, a block of removals
// directly followed by the same number of additions is shown pairwise with the
// changed spans emphasized.
func (r *Renderer) appendHunkBody(out []string, lines []diff.Line) []string {
	for i := 0; i < len(lines); {
		line := lines[i]
		if line.Kind != diff.Removed || !r.opts.Colorize {
			out = append(out, r.line(line.Kind, line.Kind.String()+line.Text))
			i++
			continue
		}

		rmEnd := i
		for rmEnd < len(lines) && lines[rmEnd].Kind == diff.Removed {
			rmEnd++
		}
		addEnd := rmEnd
		for addEnd < len(lines) && lines[addEnd].Kind == diff.Added {
			addEnd++
		}

		if rmEnd-i != addEnd-rmEnd {
			for ; i < rmEnd; i++ {
				out = append(out, r.line(diff.Removed, "-"+lines[i].Text))
			}
			continue
		}

		var added []string
		for k := 0; k < rmEnd-i; k++ {
			oldText, newText := r.emphasize(lines[i+k].Text, lines[rmEnd+k].Text)
			out = append(out, oldText)
			added = append(added, newText)
		}
		out = append(out, added...)
		i = addEnd
	}
	return out
}

// emphasize returns colorized "-old" and "+new" lines with the differing spans highlighted
func (r *Renderer) emphasize(oldText, newText string) (string, string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldText, newText, false))

	p := r.palette
	var rm, add strings.Builder
	rm.WriteString(p.removed.Render("-"))
	add.WriteString(p.added.Render("+"))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			rm.WriteString(p.removed.Render(d.Text))
			add.WriteString(p.added.Render(d.Text))
		case diffmatchpatch.DiffDelete:
			rm.WriteString(p.removedEmph.Render(d.Text))
		case diffmatchpatch.DiffInsert:
			add.WriteString(p.addedEmph.Render(d.Text))
		}
	}
	return rm.String(), add.String()
}

func (r *Renderer) sideBySide(f diff.FileDiff) []string {
	width := r.opts.ColumnWidth
	label := f.Path
	switch f.Kind {
	case diff.Delete:
		label += " (deleted)"
	case diff.Create:
		label += " (new file)"
	}

	out := []string{
		r.header(label),
		r.header(cell("OLD", width) + " | " + "NEW"),
		strings.Repeat("-", width) + "-+-" + strings.Repeat("-", width),
	}
	for _, h := range f.Hunks {
		out = append(out, r.hunkMarker(h))
		for _, line := range h.Lines {
			switch line.Kind {
			case diff.Added:
				out = append(out, cell("", width)+" | "+r.line(diff.Added, clip(line.Text, width)))
			case diff.Removed:
				out = append(out, r.line(diff.Removed, cell(line.Text, width))+" |")
			default:
				out = append(out, cell(line.Text, width)+" | "+clip(line.Text, width))
			}
		}
	}
	return out
}

// clip makes text safe for a fixed-width column: no carriage returns,
// expanded tabs, truncated to width display cells.
func clip(s string, width int) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", "    ")
	return runewidth.Truncate(s, width, "...")
}

// cell clips s and pads it on the right to exactly width display cells
func cell(s string, width int) string {
	return runewidth.FillRight(clip(s, width), width)
}
