package changeset

import (
	"fmt"

	"github.com/epuerta/codeguard/internal/diff"
	"github.com/epuerta/codeguard/internal/fileops"
)

// FailedChange is a change that could not be applied
type FailedChange struct {
	Path  string
	Error string
}

// ApplyResult accounts for every change processed by ApplyChanges.
// Succeeded and Failed are disjoint and together cover all TotalChanges.
type ApplyResult struct {
	Succeeded    []string
	Failed       []FailedChange
	TotalChanges int
}

// OK reports whether every change was applied
func (r ApplyResult) OK() bool {
	return len(r.Failed) == 0
}

// ApplyChanges writes or deletes every pending file in registration order.
//
// A failure on one file is recorded and the batch moves on; nothing is rolled
// back. The changeset is empty afterwards whatever the outcome. With nothing
// pending it returns ErrNoPendingChanges.
func (c *ChangeSet) ApplyChanges() (ApplyResult, error) {
	if !c.HasPendingChanges() {
		return ApplyResult{}, ErrNoPendingChanges
	}

	result := ApplyResult{TotalChanges: len(c.order)}
	for _, path := range c.order {
		change := c.changes[path]
		if err := c.apply(change); err != nil {
			c.logger.Log("changeset: failed to %s %s: %v", change.Kind, path, err)
			result.Failed = append(result.Failed, FailedChange{Path: path, Error: err.Error()})
			continue
		}
		c.logger.Log("changeset: applied %s %s", change.Kind, path)
		result.Succeeded = append(result.Succeeded, path)
	}

	c.logger.Log("changeset: applied %d/%d changes", len(result.Succeeded), result.TotalChanges)
	c.clear()
	return result, nil
}

func (c *ChangeSet) apply(change PendingChange) error {
	if c.opts.VerifyBeforeApply {
		if err := c.verify(change); err != nil {
			return err
		}
	}

	if change.Kind == diff.Delete {
		return fileops.RemoveFile(c.fs, change.Path)
	}
	return fileops.WriteFile(c.fs, change.Path, change.NewContent)
}

// verify compares the file on disk with what was captured at registration
func (c *ChangeSet) verify(change PendingChange) error {
	info, err := fileops.GetFile(c.fs, change.Path)
	if err != nil {
		return err
	}

	switch {
	case change.Kind == diff.Create && info.Exists:
		return fmt.Errorf("%w: %s was created", ErrConflict, change.Path)
	case change.Kind != diff.Create && !info.Exists:
		return fmt.Errorf("%w: %s was removed", ErrConflict, change.Path)
	case change.Kind != diff.Create && info.Content != change.OldContent:
		return fmt.Errorf("%w: %s was edited", ErrConflict, change.Path)
	}
	return nil
}
