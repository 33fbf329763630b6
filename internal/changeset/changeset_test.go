package changeset

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/epuerta/codeguard/internal/diff"
	"github.com/epuerta/codeguard/internal/render"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingFs rejects writes and removals of selected paths
type failingFs struct {
	afero.Fs
	fail map[string]error
}

func (f *failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if err, ok := f.fail[name]; ok && flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		return nil, err
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func (f *failingFs) Remove(name string) error {
	if err, ok := f.fail[name]; ok {
		return err
	}
	return f.Fs.Remove(name)
}

func newTestSet(t *testing.T, files map[string]string) (*ChangeSet, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	return New(Options{Fs: fs, BaseDir: "/repo", ContextLines: diff.DefaultContextLines}), fs
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestAddFileChangeInfersKind(t *testing.T) {
	cs, _ := newTestSet(t, map[string]string{"/repo/existing.txt": "old"})

	require.NoError(t, cs.AddFileChange("existing.txt", "new"))
	require.NoError(t, cs.AddFileChange("fresh.txt", "hello"))

	existing, ok := cs.Change("/repo/existing.txt")
	require.True(t, ok)
	assert.Equal(t, diff.Modify, existing.Kind)
	assert.Equal(t, "old", existing.OldContent)
	assert.Equal(t, "new", existing.NewContent)

	fresh, ok := cs.Change("fresh.txt")
	require.True(t, ok)
	assert.Equal(t, diff.Create, fresh.Kind)
	assert.Equal(t, "", fresh.OldContent)

	assert.Equal(t, []string{"/repo/existing.txt", "/repo/fresh.txt"}, cs.PendingFiles())
	assert.True(t, cs.HasPendingChanges())
}

func TestAddFileChangeAsExplicitKind(t *testing.T) {
	cs, _ := newTestSet(t, map[string]string{"/repo/a.txt": "x"})

	require.NoError(t, cs.AddFileChangeAs("a.txt", "y", diff.Create))
	change, _ := cs.Change("a.txt")
	assert.Equal(t, diff.Create, change.Kind)
	assert.Equal(t, "", change.OldContent)

	err := cs.AddFileChangeAs("a.txt", "y", diff.Delete)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAddFileChangeSnapshotIsCapturedOnce(t *testing.T) {
	cs, fs := newTestSet(t, map[string]string{"/repo/a.txt": "line 1\nline 2"})
	require.NoError(t, cs.AddFileChange("a.txt", "line 1\nline 2\nline 3"))

	// An external edit after registration does not leak into the preview.
	require.NoError(t, afero.WriteFile(fs, "/repo/a.txt", []byte("something else"), 0644))

	stats := cs.Stats()
	assert.Equal(t, 1, stats.TotalAdditions)
	assert.Equal(t, 0, stats.TotalDeletions)
}

func TestAddFileChangeLastRegistrationWins(t *testing.T) {
	cs, _ := newTestSet(t, map[string]string{"/repo/a.txt": "a", "/repo/b.txt": "b"})

	require.NoError(t, cs.AddFileChange("a.txt", "first"))
	require.NoError(t, cs.AddFileChange("b.txt", "bee"))
	require.NoError(t, cs.AddFileChange("a.txt", "second"))

	assert.Equal(t, []string{"/repo/a.txt", "/repo/b.txt"}, cs.PendingFiles())
	change, _ := cs.Change("a.txt")
	assert.Equal(t, "second", change.NewContent)
}

func TestAddFileChangeInvalidArguments(t *testing.T) {
	cs, fs := newTestSet(t, nil)
	require.NoError(t, fs.MkdirAll("/repo/dir", 0755))

	assert.ErrorIs(t, cs.AddFileChange("", "x"), ErrInvalidArgument)
	assert.ErrorIs(t, cs.AddFileChange("dir", "x"), ErrInvalidArgument)
	assert.ErrorIs(t, cs.AddFileDeletion(""), ErrInvalidArgument)
	assert.ErrorIs(t, cs.AddFileDeletion("dir"), ErrInvalidArgument)
	assert.False(t, cs.HasPendingChanges())
}

func TestAddFileDeletionMissingFile(t *testing.T) {
	cs, _ := newTestSet(t, map[string]string{"/repo/keep.txt": "k"})
	require.NoError(t, cs.AddFileChange("keep.txt", "changed"))
	before := cs.PendingFiles()

	err := cs.AddFileDeletion("missing.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "/repo/missing.txt")
	assert.Equal(t, before, cs.PendingFiles())
}

func TestAddFileDeletionSnapshotsContent(t *testing.T) {
	cs, _ := newTestSet(t, map[string]string{"/repo/gone.txt": "a\nb"})
	require.NoError(t, cs.AddFileDeletion("gone.txt"))

	change, ok := cs.Change("gone.txt")
	require.True(t, ok)
	assert.Equal(t, diff.Delete, change.Kind)
	assert.Equal(t, "a\nb", change.OldContent)

	stats := cs.Stats()
	assert.Equal(t, 2, stats.TotalDeletions)
}

func TestStatsCounts(t *testing.T) {
	tests := []struct {
		name      string
		old, new  string
		additions int
		deletions int
	}{
		{"lines appended", "line 1\nline 2", "line 1\nline 2\nline 3\nline 4", 2, 0},
		{"lines removed", "line 1\nline 2\nline 3", "line 1", 0, 2},
		{"line modified", "line 1\nline 2\nline 3", "line 1\nmodified line\nline 3", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, _ := newTestSet(t, map[string]string{"/repo/f.txt": tt.old})
			require.NoError(t, cs.AddFileChange("f.txt", tt.new))

			stats := cs.Stats()
			require.Len(t, stats.Files, 1)
			assert.Equal(t, tt.additions, stats.Files[0].Additions)
			assert.Equal(t, tt.deletions, stats.Files[0].Deletions)
			assert.Equal(t, tt.additions, stats.TotalAdditions)
			assert.Equal(t, tt.deletions, stats.TotalDeletions)
		})
	}
}

func TestStatsMatchDiffEntries(t *testing.T) {
	cs, _ := newTestSet(t, map[string]string{
		"/repo/a.txt": "1\n2\n3\n4\n5\n6\n7\n8\n9\n10",
		"/repo/b.txt": "gone\nsoon",
	})
	require.NoError(t, cs.AddFileChange("a.txt", "1\ntwo\n3\n4\n5\n6\n7\n8\nnine\n10\n11"))
	require.NoError(t, cs.AddFileDeletion("b.txt"))
	require.NoError(t, cs.AddFileChange("c.txt", "new\nfile"))

	added, removed := 0, 0
	for _, d := range cs.Diffs() {
		for _, h := range d.Hunks {
			for _, line := range h.Lines {
				switch line.Kind {
				case diff.Added:
					added++
				case diff.Removed:
					removed++
				}
			}
		}
	}

	stats := cs.Stats()
	assert.Equal(t, 3, stats.TotalFiles)
	assert.Equal(t, added, stats.TotalAdditions)
	assert.Equal(t, removed, stats.TotalDeletions)
}

func TestPreview(t *testing.T) {
	cs, _ := newTestSet(t, map[string]string{"/repo/a.txt": "line 1\nline 2\nline 3"})
	assert.Equal(t, render.NoChangesMessage, cs.Preview(render.DefaultOptions()))

	require.NoError(t, cs.AddFileChange("a.txt", "line 1\nmodified line\nline 3"))
	require.NoError(t, cs.AddFileChange("b.txt", "hello"))

	out := cs.Preview(render.DefaultOptions().Plain())
	assert.Contains(t, out, "--- /repo/a.txt\n+++ /repo/a.txt\n@@ -1,3 +1,3 @@")
	assert.Contains(t, out, "+++ /repo/b.txt (new file)")
	assert.Contains(t, out, "Changes: +1 -1\n\n--- /repo/b.txt")
}

func TestContextLines(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/a.txt", []byte("1\n2\n3\n4\n5\n6\n7\n8\n9"), 0644))

	tests := []struct {
		name    string
		context int
		header  string
	}{
		{"zero keeps only changed lines", 0, "@@ -5,1 +5,1 @@\n-5\n+five\nChanges"},
		{"negative selects the default", -1, "@@ -2,7 +2,7 @@\n 2\n 3\n 4\n-5\n+five\n 6\n 7\n 8\nChanges"},
		{"explicit width", 1, "@@ -4,3 +4,3 @@\n 4\n-5\n+five\n 6\nChanges"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := New(Options{Fs: fs, BaseDir: "/repo", ContextLines: tt.context})
			require.NoError(t, cs.AddFileChange("a.txt", "1\n2\n3\n4\nfive\n6\n7\n8\n9"))
			assert.Contains(t, cs.Preview(render.DefaultOptions().Plain()), tt.header)
		})
	}
}

func TestSavePreviewIsPlainText(t *testing.T) {
	cs, fs := newTestSet(t, map[string]string{"/repo/a.txt": "line 1\nline 2"})
	require.NoError(t, cs.AddFileChange("a.txt", "line 1\nline two"))

	opts := render.DefaultOptions()
	require.True(t, opts.Colorize)
	require.NoError(t, cs.SavePreview("out/preview.diff", opts))

	saved := readFile(t, fs, "/repo/out/preview.diff")
	assert.NotContains(t, saved, "\x1b")
	assert.Equal(t, cs.Preview(opts.Plain()), saved)

	for _, format := range []render.Format{render.FormatSideBySide, render.FormatSimple} {
		opts.Format = format
		require.NoError(t, cs.SavePreview("out/preview.diff", opts))
		assert.NotContains(t, readFile(t, fs, "/repo/out/preview.diff"), "\x1b")
	}
	assert.True(t, cs.HasPendingChanges())
}

func TestApplyChanges(t *testing.T) {
	cs, fs := newTestSet(t, map[string]string{
		"/repo/modify.txt": "before",
		"/repo/delete.txt": "bye",
	})
	require.NoError(t, cs.AddFileChange("modify.txt", "after"))
	require.NoError(t, cs.AddFileChange("deep/nested/create.txt", "made"))
	require.NoError(t, cs.AddFileDeletion("delete.txt"))

	result, err := cs.ApplyChanges()
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, 3, result.TotalChanges)
	assert.Equal(t, []string{"/repo/modify.txt", "/repo/deep/nested/create.txt", "/repo/delete.txt"}, result.Succeeded)

	assert.Equal(t, "after", readFile(t, fs, "/repo/modify.txt"))
	assert.Equal(t, "made", readFile(t, fs, "/repo/deep/nested/create.txt"))
	exists, err := afero.Exists(fs, "/repo/delete.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.False(t, cs.HasPendingChanges())
	assert.Empty(t, cs.PendingFiles())
}

func TestApplyChangesIsolatesFailures(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/repo/a.txt", []byte("a"), 0644))
	fs := &failingFs{Fs: mem, fail: map[string]error{"/repo/a.txt": errors.New("Permission denied")}}
	cs := New(Options{Fs: fs, BaseDir: "/repo"})

	require.NoError(t, cs.AddFileChange("a.txt", "new a"))
	require.NoError(t, cs.AddFileChange("b.txt", "new b"))

	result, err := cs.ApplyChanges()
	require.NoError(t, err)
	assert.Equal(t, ApplyResult{
		Succeeded:    []string{"/repo/b.txt"},
		Failed:       []FailedChange{{Path: "/repo/a.txt", Error: "Permission denied"}},
		TotalChanges: 2,
	}, result)
	assert.False(t, result.OK())
	assert.False(t, cs.HasPendingChanges())

	assert.Equal(t, "a", readFile(t, mem, "/repo/a.txt"))
	assert.Equal(t, "new b", readFile(t, mem, "/repo/b.txt"))
}

func TestApplyChangesDeleteFailure(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/repo/locked.txt", []byte("x"), 0644))
	fs := &failingFs{Fs: mem, fail: map[string]error{"/repo/locked.txt": errors.New("Operation not permitted")}}
	cs := New(Options{Fs: fs, BaseDir: "/repo"})

	require.NoError(t, cs.AddFileDeletion("locked.txt"))
	result, err := cs.ApplyChanges()
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "Operation not permitted", result.Failed[0].Error)
	assert.Empty(t, result.Succeeded)
}

func TestApplyChangesVerifyBeforeApply(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/a.txt", []byte("one"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/repo/b.txt", []byte("two"), 0644))
	cs := New(Options{Fs: fs, BaseDir: "/repo", VerifyBeforeApply: true})

	require.NoError(t, cs.AddFileChange("a.txt", "ONE"))
	require.NoError(t, cs.AddFileChange("b.txt", "TWO"))
	require.NoError(t, afero.WriteFile(fs, "/repo/a.txt", []byte("edited elsewhere"), 0644))

	result, err := cs.ApplyChanges()
	require.NoError(t, err)
	assert.Equal(t, []string{"/repo/b.txt"}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "/repo/a.txt", result.Failed[0].Path)
	assert.True(t, strings.HasPrefix(result.Failed[0].Error, ErrConflict.Error()))
	assert.Equal(t, "edited elsewhere", readFile(t, fs, "/repo/a.txt"))
}

func TestEmptyChangeSetIsNothingToDo(t *testing.T) {
	cs, _ := newTestSet(t, nil)

	result, err := cs.ApplyChanges()
	assert.ErrorIs(t, err, ErrNoPendingChanges)
	assert.Equal(t, 0, result.TotalChanges)

	assert.ErrorIs(t, cs.DiscardChanges(), ErrNoPendingChanges)
	assert.ErrorIs(t, cs.OpenInDiffTool(""), ErrNoPendingChanges)
}

func TestDiscardChanges(t *testing.T) {
	cs, fs := newTestSet(t, map[string]string{"/repo/a.txt": "a"})
	require.NoError(t, cs.AddFileChange("a.txt", "changed"))
	require.NoError(t, cs.AddFileDeletion("a.txt"))

	require.NoError(t, cs.DiscardChanges())
	assert.False(t, cs.HasPendingChanges())
	assert.Empty(t, cs.PendingFiles())
	assert.Equal(t, "a", readFile(t, fs, "/repo/a.txt"))
}

func TestRemoveChange(t *testing.T) {
	cs, _ := newTestSet(t, nil)
	require.NoError(t, cs.AddFileChange("a.txt", "a"))
	require.NoError(t, cs.AddFileChange("b.txt", "b"))
	require.NoError(t, cs.AddFileChange("c.txt", "c"))

	require.NoError(t, cs.RemoveChange("b.txt"))
	assert.Equal(t, []string{"/repo/a.txt", "/repo/c.txt"}, cs.PendingFiles())
	assert.ErrorIs(t, cs.RemoveChange("b.txt"), ErrNotFound)

	changes := cs.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, "c", changes[1].NewContent)
}
