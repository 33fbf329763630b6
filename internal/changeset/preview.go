package changeset

import (
	"fmt"

	"github.com/epuerta/codeguard/internal/diff"
	"github.com/epuerta/codeguard/internal/fileops"
	"github.com/epuerta/codeguard/internal/render"
)

// FileStats summarizes the diff of one pending change
type FileStats struct {
	Path      string
	Kind      diff.ChangeKind
	Additions int
	Deletions int
}

// Stats summarizes the whole changeset
type Stats struct {
	Files          []FileStats
	TotalFiles     int
	TotalAdditions int
	TotalDeletions int
}

// Diffs computes the diff of every pending change in registration order
func (c *ChangeSet) Diffs() []diff.FileDiff {
	diffs := make([]diff.FileDiff, 0, len(c.order))
	for _, path := range c.order {
		change := c.changes[path]
		diffs = append(diffs, diff.NewFileDiff(change.Path, change.Kind, change.OldContent, change.NewContent, c.opts.ContextLines))
	}
	return diffs
}

// Preview renders all pending changes
func (c *ChangeSet) Preview(opts render.Options) string {
	return render.New(opts).Render(c.Diffs())
}

// Stats counts added and removed lines per file and in total
func (c *ChangeSet) Stats() Stats {
	var stats Stats
	for _, d := range c.Diffs() {
		stats.Files = append(stats.Files, FileStats{
			Path:      d.Path,
			Kind:      d.Kind,
			Additions: d.Stats.Additions,
			Deletions: d.Stats.Deletions,
		})
		stats.TotalAdditions += d.Stats.Additions
		stats.TotalDeletions += d.Stats.Deletions
	}
	stats.TotalFiles = len(stats.Files)
	return stats
}

// SavePreview writes a plain-text preview to path. Colorization is always off
// so the file never contains escape sequences.
func (c *ChangeSet) SavePreview(path string, opts render.Options) error {
	abs, err := c.resolve(path)
	if err != nil {
		return err
	}

	if err := fileops.WriteFile(c.fs, abs, c.Preview(opts.Plain())); err != nil {
		return fmt.Errorf("failed to save preview to %s: %w", abs, err)
	}
	c.logger.Log("changeset: saved preview of %d changes to %s", len(c.order), abs)
	return nil
}
