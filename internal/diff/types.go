package diff

// LineKind identifies how a line takes part in an edit script
type LineKind int

const (
	// Context is a line present in both the old and the new text
	Context LineKind = iota
	// Added is a line only present in the new text
	Added
	// Removed is a line only present in the old text
	Removed
)

// String returns the unified-diff prefix for the kind
func (k LineKind) String() string {
	switch k {
	case Added:
		return "+"
	case Removed:
		return "-"
	default:
		return " "
	}
}

// Line is a single entry of an edit script.
// OldNumber and NewNumber are 1-based; zero means the line has no position on that side.
type Line struct {
	Kind      LineKind
	Text      string
	OldNumber int
	NewNumber int
}

// Hunk is a contiguous block of changed lines plus surrounding context
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// ChangeKind is the type of mutation a pending change performs on a file
type ChangeKind string

const (
	// Create writes a file that does not exist yet
	Create ChangeKind = "create"
	// Modify overwrites an existing file
	Modify ChangeKind = "modify"
	// Delete removes an existing file
	Delete ChangeKind = "delete"
)

// Valid reports whether k is one of the known change kinds
func (k ChangeKind) Valid() bool {
	switch k {
	case Create, Modify, Delete:
		return true
	}
	return false
}

// Stats counts added and removed lines
type Stats struct {
	Additions int
	Deletions int
}

// FileDiff is the diff of a single pending change, ready to render
type FileDiff struct {
	Path  string
	Kind  ChangeKind
	Hunks []Hunk
	Stats Stats
}
