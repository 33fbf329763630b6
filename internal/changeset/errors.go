package changeset

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for unusable registration input
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned when a deletion targets a missing file
	ErrNotFound = errors.New("file not found")
	// ErrNoPendingChanges reports that there is nothing to apply, discard or open.
	// It is informational: callers usually print it and carry on.
	ErrNoPendingChanges = errors.New("no pending changes")
	// ErrConflict is recorded when VerifyBeforeApply finds a file edited since registration
	ErrConflict = errors.New("file changed since it was registered")
)

// ToolError reports an external diff viewer that exited unsuccessfully
type ToolError struct {
	Tool     string
	Path     string
	ExitCode int
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s exited with code %d while reviewing %s", e.Tool, e.ExitCode, e.Path)
}
