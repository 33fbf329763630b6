package diff

import "strings"

// SplitLines splits text on line feeds. Carriage returns stay part of the line,
// so CRLF content diffs like any other text. Empty text has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// JoinLines is the inverse of SplitLines
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// Compute returns the shortest edit script turning oldLines into newLines.
//
// The common prefix and suffix are emitted as context directly; the remaining
// middle segment is solved with a longest-common-subsequence table, which is
// O(n*m) in time and memory over the trimmed middle only.
func Compute(oldLines, newLines []string) []Line {
	prefix := 0
	for prefix < len(oldLines) && prefix < len(newLines) && oldLines[prefix] == newLines[prefix] {
		prefix++
	}

	suffix := 0
	for suffix < len(oldLines)-prefix && suffix < len(newLines)-prefix &&
		oldLines[len(oldLines)-1-suffix] == newLines[len(newLines)-1-suffix] {
		suffix++
	}

	script := make([]Line, 0, len(oldLines)+len(newLines)-prefix-suffix)
	for i := 0; i < prefix; i++ {
		script = append(script, Line{Kind: Context, Text: oldLines[i], OldNumber: i + 1, NewNumber: i + 1})
	}

	oldMid := oldLines[prefix : len(oldLines)-suffix]
	newMid := newLines[prefix : len(newLines)-suffix]
	script = appendMiddle(script, oldMid, newMid, prefix, prefix)

	oldTail := len(oldLines) - suffix
	newTail := len(newLines) - suffix
	for i := 0; i < suffix; i++ {
		script = append(script, Line{
			Kind:      Context,
			Text:      oldLines[oldTail+i],
			OldNumber: oldTail + i + 1,
			NewNumber: newTail + i + 1,
		})
	}

	return script
}

// ComputeText diffs two texts line by line
func ComputeText(oldText, newText string) []Line {
	return Compute(SplitLines(oldText), SplitLines(newText))
}

// appendMiddle backtracks through an LCS table built over a and b.
// table[i][j] holds the LCS length of a[i:] and b[j:], so walking forward from
// (0,0) emits lines in their original order. Ties prefer removals first.
func appendMiddle(script []Line, a, b []string, oldOffset, newOffset int) []Line {
	n, m := len(a), len(b)
	if n == 0 {
		for j := 0; j < m; j++ {
			script = append(script, Line{Kind: Added, Text: b[j], NewNumber: newOffset + j + 1})
		}
		return script
	}
	if m == 0 {
		for i := 0; i < n; i++ {
			script = append(script, Line{Kind: Removed, Text: a[i], OldNumber: oldOffset + i + 1})
		}
		return script
	}

	width := m + 1
	table := make([]int, (n+1)*width)
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				table[i*width+j] = table[(i+1)*width+j+1] + 1
			case table[(i+1)*width+j] >= table[i*width+j+1]:
				table[i*width+j] = table[(i+1)*width+j]
			default:
				table[i*width+j] = table[i*width+j+1]
			}
		}
	}

	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			script = append(script, Line{Kind: Context, Text: a[i], OldNumber: oldOffset + i + 1, NewNumber: newOffset + j + 1})
			i++
			j++
		case table[(i+1)*width+j] >= table[i*width+j+1]:
			script = append(script, Line{Kind: Removed, Text: a[i], OldNumber: oldOffset + i + 1})
			i++
		default:
			script = append(script, Line{Kind: Added, Text: b[j], NewNumber: newOffset + j + 1})
			j++
		}
	}
	for ; i < n; i++ {
		script = append(script, Line{Kind: Removed, Text: a[i], OldNumber: oldOffset + i + 1})
	}
	for ; j < m; j++ {
		script = append(script, Line{Kind: Added, Text: b[j], NewNumber: newOffset + j + 1})
	}
	return script
}

// Count tallies added and removed lines in an edit script
func Count(script []Line) Stats {
	var stats Stats
	for _, line := range script {
		switch line.Kind {
		case Added:
			stats.Additions++
		case Removed:
			stats.Deletions++
		}
	}
	return stats
}
