// Package changeset holds proposed file mutations in memory, previews them as
// diffs, and applies, discards or hands them to an external diff viewer.
//
// A ChangeSet performs no locking. Create one per session and serialize calls.
package changeset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/epuerta/codeguard/internal/diff"
	"github.com/epuerta/codeguard/internal/fileops"
	"github.com/epuerta/codeguard/internal/logging"
	"github.com/spf13/afero"
)

// DefaultDiffTool is launched by OpenInDiffTool when no tool is named
const DefaultDiffTool = "vimdiff"

// PendingChange is a registered, not yet applied file mutation.
// Contents are captured once at registration and never re-read.
type PendingChange struct {
	Path       string
	Kind       diff.ChangeKind
	OldContent string
	NewContent string
}

// Options configures a ChangeSet. The zero value works on the real filesystem.
type Options struct {
	// Fs is the filesystem changes are read from and applied to
	Fs afero.Fs
	// BaseDir resolves relative paths; empty means the working directory at registration time
	BaseDir string
	// ContextLines around each change in previews and patches. Zero shows
	// changed lines only; negative values select diff.DefaultContextLines.
	ContextLines int
	// ScratchDir is where OpenInDiffTool creates its temp directory; empty means os.TempDir
	ScratchDir string
	// VerifyBeforeApply fails a file whose on-disk content moved since registration
	VerifyBeforeApply bool
	// Logger receives debug output
	Logger logging.Logger

	// Standard streams handed to the external diff viewer; nil means the process streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// ChangeSet is the set of pending changes of one session
type ChangeSet struct {
	opts    Options
	fs      afero.Fs
	logger  logging.Logger
	order   []string
	changes map[string]PendingChange
	scratch string
}

// New creates an empty ChangeSet
func New(opts Options) *ChangeSet {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.ContextLines < 0 {
		opts.ContextLines = diff.DefaultContextLines
	}
	return &ChangeSet{
		opts:    opts,
		fs:      opts.Fs,
		logger:  logging.OrNil(opts.Logger),
		changes: make(map[string]PendingChange),
	}
}

// resolve turns path into a clean absolute path
func (c *ChangeSet) resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path is required", ErrInvalidArgument)
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}

	base := c.opts.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		base = wd
	}
	return filepath.Join(base, path), nil
}

// AddFileChange registers newContent for path. The change is a Create when the
// file does not exist yet and a Modify otherwise.
func (c *ChangeSet) AddFileChange(path, newContent string) error {
	return c.addFileChange(path, newContent, "")
}

// AddFileChangeAs registers newContent for path with an explicit kind.
// Deletions go through AddFileDeletion.
func (c *ChangeSet) AddFileChangeAs(path, newContent string, kind diff.ChangeKind) error {
	if kind != diff.Create && kind != diff.Modify {
		return fmt.Errorf("%w: change kind %q is not create or modify", ErrInvalidArgument, kind)
	}
	return c.addFileChange(path, newContent, kind)
}

func (c *ChangeSet) addFileChange(path, newContent string, kind diff.ChangeKind) error {
	abs, err := c.resolve(path)
	if err != nil {
		return err
	}

	info, err := fileops.GetFile(c.fs, abs)
	if err != nil {
		return fmt.Errorf("failed to snapshot %s: %w", abs, err)
	}
	if info.IsDir {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidArgument, abs)
	}

	if kind == "" {
		kind = diff.Modify
		if !info.Exists {
			kind = diff.Create
		}
	}

	change := PendingChange{Path: abs, Kind: kind, NewContent: newContent}
	if kind == diff.Modify {
		change.OldContent = info.Content
	}
	c.put(change)
	c.logger.Log("changeset: registered %s %s", kind, abs)
	return nil
}

// AddFileDeletion registers the removal of an existing file
func (c *ChangeSet) AddFileDeletion(path string) error {
	abs, err := c.resolve(path)
	if err != nil {
		return err
	}

	info, err := fileops.GetFile(c.fs, abs)
	if err != nil {
		return fmt.Errorf("failed to snapshot %s: %w", abs, err)
	}
	if !info.Exists {
		return fmt.Errorf("%w: %s", ErrNotFound, abs)
	}
	if info.IsDir {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidArgument, abs)
	}

	c.put(PendingChange{Path: abs, Kind: diff.Delete, OldContent: info.Content})
	c.logger.Log("changeset: registered delete %s", abs)
	return nil
}

// put stores a change; re-registering a path keeps its original position
func (c *ChangeSet) put(change PendingChange) {
	if _, ok := c.changes[change.Path]; !ok {
		c.order = append(c.order, change.Path)
	}
	c.changes[change.Path] = change
}

// PendingFiles returns the absolute paths of all pending changes in registration order
func (c *ChangeSet) PendingFiles() []string {
	files := make([]string, len(c.order))
	copy(files, c.order)
	return files
}

// HasPendingChanges reports whether anything is registered
func (c *ChangeSet) HasPendingChanges() bool {
	return len(c.order) > 0
}

// Change looks up the pending change for path
func (c *ChangeSet) Change(path string) (PendingChange, bool) {
	abs, err := c.resolve(path)
	if err != nil {
		return PendingChange{}, false
	}
	change, ok := c.changes[abs]
	return change, ok
}

// Changes returns every pending change in registration order
func (c *ChangeSet) Changes() []PendingChange {
	out := make([]PendingChange, 0, len(c.order))
	for _, path := range c.order {
		out = append(out, c.changes[path])
	}
	return out
}

// RemoveChange drops the pending change for path without touching the filesystem
func (c *ChangeSet) RemoveChange(path string) error {
	abs, err := c.resolve(path)
	if err != nil {
		return err
	}
	if _, ok := c.changes[abs]; !ok {
		return fmt.Errorf("%w: no pending change for %s", ErrNotFound, abs)
	}

	delete(c.changes, abs)
	for i, p := range c.order {
		if p == abs {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.logger.Log("changeset: dropped %s", abs)
	return nil
}

// DiscardChanges forgets every pending change. The filesystem is not touched.
func (c *ChangeSet) DiscardChanges() error {
	if !c.HasPendingChanges() {
		return ErrNoPendingChanges
	}
	c.logger.Log("changeset: discarded %d changes", len(c.order))
	c.clear()
	return nil
}

func (c *ChangeSet) clear() {
	c.order = nil
	c.changes = make(map[string]PendingChange)
}
