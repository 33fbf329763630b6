package diff

// DefaultContextLines is the number of unchanged lines kept around each change
const DefaultContextLines = 3

// BuildHunks groups an edit script into hunks.
//
// Each run of changes keeps up to contextLines unchanged lines on either side.
// Two runs separated by at most 2*contextLines unchanged lines share a hunk,
// otherwise the gap splits them. A negative contextLines selects the default.
func BuildHunks(script []Line, contextLines int) []Hunk {
	if contextLines < 0 {
		contextLines = DefaultContextLines
	}

	var changes []int
	for i, line := range script {
		if line.Kind != Context {
			changes = append(changes, i)
		}
	}
	if len(changes) == 0 {
		return nil
	}

	var hunks []Hunk
	oldSeen, newSeen := 0, 0 // lines of each side consumed before cursor
	cursor := 0

	for g := 0; g < len(changes); {
		first := changes[g]
		last := first
		g++
		for g < len(changes) && changes[g]-last-1 <= 2*contextLines {
			last = changes[g]
			g++
		}

		start := first - contextLines
		if start < cursor {
			start = cursor
		}
		end := last + contextLines + 1
		if end > len(script) {
			end = len(script)
		}

		for _, line := range script[cursor:start] {
			oldSeen, newSeen = advance(line, oldSeen, newSeen)
		}

		hunk := Hunk{Lines: script[start:end:end]}
		for _, line := range hunk.Lines {
			if line.Kind != Added {
				hunk.OldCount++
			}
			if line.Kind != Removed {
				hunk.NewCount++
			}
		}
		hunk.OldStart = startLine(oldSeen, hunk.OldCount)
		hunk.NewStart = startLine(newSeen, hunk.NewCount)
		hunks = append(hunks, hunk)

		for _, line := range hunk.Lines {
			oldSeen, newSeen = advance(line, oldSeen, newSeen)
		}
		cursor = end
	}

	return hunks
}

func advance(line Line, oldSeen, newSeen int) (int, int) {
	if line.Kind != Added {
		oldSeen++
	}
	if line.Kind != Removed {
		newSeen++
	}
	return oldSeen, newSeen
}

// startLine follows GNU diff: an empty side points at the line preceding the hunk.
func startLine(seen, count int) int {
	if count == 0 {
		return seen
	}
	return seen + 1
}

// NewFileDiff diffs the old and new content of one change and groups the result.
// Create ignores oldContent and Delete ignores newContent.
func NewFileDiff(path string, kind ChangeKind, oldContent, newContent string, contextLines int) FileDiff {
	switch kind {
	case Create:
		oldContent = ""
	case Delete:
		newContent = ""
	}

	script := ComputeText(oldContent, newContent)
	return FileDiff{
		Path:  path,
		Kind:  kind,
		Hunks: BuildHunks(script, contextLines),
		Stats: Count(script),
	}
}
