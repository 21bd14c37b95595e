package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// File is an output file that only appears at its final path on Commit.
// Records go to a temp file in the same directory, so a failed or aborted
// run never leaves a partial listing behind.
type File struct {
	*os.File
	path string
	done bool
}

// CreateFile opens a temp file next to path.
func CreateFile(path string) (*File, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".treezy-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("cannot create output file: %w", err)
	}
	return &File{File: tmp, path: path}, nil
}

// Commit closes the temp file and renames it over path.
func (f *File) Commit() error {
	if f.done {
		return nil
	}
	f.done = true
	tmpPath := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		// Windows cannot rename over an existing file.
		if runtime.GOOS != "windows" {
			_ = os.Remove(tmpPath)
			return err
		}
		if rmErr := os.Remove(f.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("cannot replace output file %s: %w", f.path, err)
		}
		if err := os.Rename(tmpPath, f.path); err != nil {
			_ = os.Remove(tmpPath)
			return err
		}
	}
	return nil
}

// Abort discards the temp file. It is a no-op after Commit.
func (f *File) Abort() {
	if f.done {
		return
	}
	f.done = true
	tmpPath := f.Name()
	_ = f.Close()
	_ = os.Remove(tmpPath)
}
