package changeset

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/epuerta/codeguard/internal/diff"
	"github.com/epuerta/codeguard/internal/fileops"
	godiff "github.com/sourcegraph/go-diff/diff"
)

const noNewlineMarker = "\\ No newline at end of file\n"

// WritePatch writes the pending changes as a git-style multi-file unified diff.
//
// Unlike Preview, lines keep their terminators so a missing final newline is
// reported the way git does, and the result can be fed to `git apply`.
// Unchanged files are skipped.
func (c *ChangeSet) WritePatch(w io.Writer) error {
	var fileDiffs []*godiff.FileDiff
	for _, path := range c.order {
		if fd := c.fileDiff(c.changes[path]); fd != nil {
			fileDiffs = append(fileDiffs, fd)
		}
	}
	if len(fileDiffs) == 0 {
		return nil
	}

	out, err := godiff.PrintMultiFileDiff(fileDiffs)
	if err != nil {
		return fmt.Errorf("failed to print patch: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// Patch returns WritePatch output as a string
func (c *ChangeSet) Patch() (string, error) {
	var buf bytes.Buffer
	if err := c.WritePatch(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SavePatch writes WritePatch output to path, resolved like every other path
// of the changeset and creating parent directories
func (c *ChangeSet) SavePatch(path string) error {
	abs, err := c.resolve(path)
	if err != nil {
		return err
	}
	patch, err := c.Patch()
	if err != nil {
		return err
	}
	if err := fileops.WriteFile(c.fs, abs, patch); err != nil {
		return fmt.Errorf("failed to save patch to %s: %w", abs, err)
	}
	c.logger.Log("changeset: saved patch of %d changes to %s", len(c.order), abs)
	return nil
}

func (c *ChangeSet) fileDiff(change PendingChange) *godiff.FileDiff {
	oldContent, newContent := change.OldContent, change.NewContent
	switch change.Kind {
	case diff.Create:
		oldContent = ""
	case diff.Delete:
		newContent = ""
	}

	script := diff.Compute(splitKeepEnds(oldContent), splitKeepEnds(newContent))
	hunks := diff.BuildHunks(script, c.opts.ContextLines)
	if len(hunks) == 0 && change.Kind == diff.Modify {
		return nil
	}

	rel := c.relative(change.Path)
	fd := &godiff.FileDiff{
		OrigName: "a/" + rel,
		NewName:  "b/" + rel,
		Extended: []string{fmt.Sprintf("diff --git a/%s b/%s", rel, rel)},
	}
	switch change.Kind {
	case diff.Create:
		fd.OrigName = "/dev/null"
		fd.Extended = append(fd.Extended, "new file mode 100644")
	case diff.Delete:
		fd.NewName = "/dev/null"
		fd.Extended = append(fd.Extended, "deleted file mode 100644")
	}

	for _, h := range hunks {
		fd.Hunks = append(fd.Hunks, &godiff.Hunk{
			OrigStartLine: int32(h.OldStart),
			OrigLines:     int32(h.OldCount),
			NewStartLine:  int32(h.NewStart),
			NewLines:      int32(h.NewCount),
			Body:          hunkBody(h),
		})
	}
	return fd
}

// hunkBody prints prefixed lines; a line without terminator is the last line
// of a file lacking a final newline and gets git's marker.
func hunkBody(h diff.Hunk) []byte {
	var body bytes.Buffer
	for _, line := range h.Lines {
		body.WriteString(line.Kind.String())
		body.WriteString(line.Text)
		if !strings.HasSuffix(line.Text, "\n") {
			body.WriteString("\n")
			body.WriteString(noNewlineMarker)
		}
	}
	return body.Bytes()
}

// splitKeepEnds splits text into lines that keep their "\n"
func splitKeepEnds(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// relative renders path relative to the base directory, with forward slashes
func (c *ChangeSet) relative(path string) string {
	base := c.opts.BaseDir
	if base == "" {
		// on error base stays empty and the path is printed without its leading slash
		base, _ = os.Getwd()
	}
	if base != "" {
		if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(path), "/")
}
