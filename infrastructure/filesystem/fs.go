package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"chaptercut/domain/video"
)

// FS implements video.FileSystem using the os package
type FS struct{}

// NewFS creates a new filesystem adapter
func NewFS() *FS {
	return &FS{}
}

// Exists returns true if the file exists
func (f *FS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes a file; a file that is already gone is not an error
func (f *FS) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Rename moves a file into place
func (f *FS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// AllocateDir creates root/name. When it already exists and reuse is false, the
// first free root/name_1, root/name_2, ... is created instead.
func (f *FS) AllocateDir(root, name string, reuse bool) (string, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", fmt.Errorf("failed to create output root: %w", err)
	}

	base := filepath.Join(root, name)
	if reuse {
		if err := os.MkdirAll(base, 0755); err != nil {
			return "", err
		}
		return base, nil
	}

	candidate := base
	for n := 1; ; n++ {
		err := os.Mkdir(candidate, 0755)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		candidate = fmt.Sprintf("%s_%d", base, n)
	}
}

// Ensure FS implements video.FileSystem
var _ video.FileSystem = (*FS)(nil)
