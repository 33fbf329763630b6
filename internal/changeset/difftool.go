package changeset

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/epuerta/codeguard/internal/fileops"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// snapshotPair is one old/new temp file pair handed to the diff viewer
type snapshotPair struct {
	path    string
	oldFile string
	newFile string
}

// OpenInDiffTool shows every pending change in an external diff viewer.
//
// For each file the old and new contents are written to temp files and tool is
// run as `tool <old> <new>` with the process's standard streams, once per file.
// The call blocks until the viewer exits. A nonzero exit stops the walk and is
// returned as a *ToolError. Temp files are removed in every case.
func (c *ChangeSet) OpenInDiffTool(tool string) error {
	if !c.HasPendingChanges() {
		return ErrNoPendingChanges
	}
	if tool == "" {
		tool = DefaultDiffTool
	}

	dir, err := c.scratchDir()
	if err != nil {
		return err
	}

	// The viewer reads real files, whatever filesystem the changes live on.
	osFs := afero.NewOsFs()
	var pairs []snapshotPair
	defer func() {
		for _, p := range pairs {
			_ = osFs.Remove(p.oldFile)
			_ = osFs.Remove(p.newFile)
		}
	}()

	for _, path := range c.order {
		change := c.changes[path]
		stem := filepath.Join(dir, uuid.NewString()[:8]+"-"+filepath.Base(path))
		pair := snapshotPair{path: path, oldFile: stem + ".old", newFile: stem + ".new"}
		pairs = append(pairs, pair)

		if err := fileops.WriteFile(osFs, pair.oldFile, change.OldContent); err != nil {
			return fmt.Errorf("failed to write snapshot for %s: %w", path, err)
		}
		if err := fileops.WriteFile(osFs, pair.newFile, change.NewContent); err != nil {
			return fmt.Errorf("failed to write snapshot for %s: %w", path, err)
		}
	}

	for _, p := range pairs {
		if err := c.runTool(tool, p); err != nil {
			return err
		}
	}
	return nil
}

func (c *ChangeSet) runTool(tool string, p snapshotPair) error {
	cmd := exec.Command(tool, p.oldFile, p.newFile)
	cmd.Stdin = c.opts.Stdin
	cmd.Stdout = c.opts.Stdout
	cmd.Stderr = c.opts.Stderr
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	c.logger.Log("changeset: running %s for %s", tool, p.path)
	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		c.logger.Log("changeset: %s exited with code %d", tool, exitErr.ExitCode())
		return &ToolError{Tool: tool, Path: p.path, ExitCode: exitErr.ExitCode()}
	}
	return fmt.Errorf("failed to run %s: %w", tool, err)
}

// scratchDir creates the temp directory on first use and reuses it afterwards
func (c *ChangeSet) scratchDir() (string, error) {
	if c.scratch != "" {
		return c.scratch, nil
	}
	if c.opts.ScratchDir != "" {
		if err := os.MkdirAll(c.opts.ScratchDir, fileops.DirMode); err != nil {
			return "", fmt.Errorf("failed to create scratch directory: %w", err)
		}
	}

	dir, err := os.MkdirTemp(c.opts.ScratchDir, "codeguard-diff-")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	c.scratch = dir
	return dir, nil
}

// Close removes the scratch directory, if one was created
func (c *ChangeSet) Close() error {
	if c.scratch == "" {
		return nil
	}
	err := os.RemoveAll(c.scratch)
	c.scratch = ""
	return err
}
