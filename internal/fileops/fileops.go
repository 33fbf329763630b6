package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	// DirMode is used for directories created on the way to a written file
	DirMode os.FileMode = 0755
	// FileMode is used for files that did not exist before
	FileMode os.FileMode = 0644
)

// FileInfo represents information about a file
type FileInfo struct {
	Path    string
	Content string
	Mode    os.FileMode
	Exists  bool
	IsDir   bool
}

// GetFile reads a file and returns its contents.
// A missing file is not an error: the returned info has Exists set to false.
func GetFile(fs afero.Fs, path string) (*FileInfo, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &FileInfo{Path: path}, nil
		}
		return nil, fmt.Errorf("error getting file info: %w", err)
	}

	fileInfo := &FileInfo{
		Path:   path,
		Mode:   info.Mode(),
		Exists: true,
		IsDir:  info.IsDir(),
	}

	// If it's a directory, don't read the content
	if fileInfo.IsDir {
		return fileInfo, nil
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	fileInfo.Content = string(content)

	return fileInfo, nil
}

// WriteFile writes content to a file, creating parent directories as needed.
// Existing files keep their permission bits. Filesystem errors are returned
// as-is; they already carry the operation and path.
func WriteFile(fs afero.Fs, path string, content string) error {
	if err := fs.MkdirAll(filepath.Dir(path), DirMode); err != nil {
		return err
	}

	mode := FileMode
	if info, err := fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	return afero.WriteFile(fs, path, []byte(content), mode)
}

// RemoveFile deletes a single file
func RemoveFile(fs afero.Fs, path string) error {
	return fs.Remove(path)
}

// Exists checks if a file or directory exists
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// IsFile checks if a path is a regular file rather than a directory
func IsFile(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && !info.IsDir()
}
