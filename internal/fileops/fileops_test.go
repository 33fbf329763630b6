package fileops

import (
	"testing"

	"github.com/spf13/afero"
)

func TestGetFileMissing(t *testing.T) {
	fs := afero.NewMemMapFs()

	info, err := GetFile(fs, "/nope.txt")
	if err != nil {
		t.Fatalf("GetFile() failed: %v", err)
	}
	if info.Exists {
		t.Errorf("Expected Exists=false for missing file")
	}
	if info.Content != "" {
		t.Errorf("Expected empty content, got %q", info.Content)
	}
}

func TestWriteAndGetFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/project/nested/dir/file.txt"

	if err := WriteFile(fs, path, "hello\nworld"); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	if !IsFile(fs, path) {
		t.Fatalf("Expected %s to be a file", path)
	}
	if IsFile(fs, "/project/nested") {
		t.Errorf("Expected directory not to be reported as a file")
	}

	info, err := GetFile(fs, path)
	if err != nil {
		t.Fatalf("GetFile() failed: %v", err)
	}
	if !info.Exists || info.Content != "hello\nworld" {
		t.Errorf("Unexpected file info: %+v", info)
	}
}

func TestWriteFileKeepsMode(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/script.sh"
	if err := afero.WriteFile(fs, path, []byte("#!/bin/sh"), 0755); err != nil {
		t.Fatalf("Failed to seed file: %v", err)
	}

	if err := WriteFile(fs, path, "#!/bin/sh\necho hi"); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	info, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("Stat() failed: %v", err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("Expected mode 0755, got %v", info.Mode().Perm())
	}
}

func TestRemoveFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := WriteFile(fs, "/a.txt", "x"); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	if err := RemoveFile(fs, "/a.txt"); err != nil {
		t.Fatalf("RemoveFile() failed: %v", err)
	}
	if Exists(fs, "/a.txt") {
		t.Errorf("Expected file to be removed")
	}
	if err := RemoveFile(fs, "/a.txt"); err == nil {
		t.Errorf("Expected error removing a missing file")
	}
}
