package walker

import (
	"os"

	"github.com/sadopc/treezy/internal/model"
)

// FS is the filesystem capability the walker runs against.
//
// Local backends are selected at build time (fs_linux.go, fs_other.go); the
// remote package provides an SFTP implementation.
type FS interface {
	// OpenDir opens path for listing. The returned handle must be closed.
	OpenDir(path string) (DirHandle, error)
	// Lstat queries path without following a final symlink.
	Lstat(path string) (model.Status, error)
	// Separator is the byte placed between a directory path and an entry name.
	Separator() byte
}

// DirHandle is an open directory listing.
type DirHandle interface {
	// ReadBatch returns the next batch of entries, or io.EOF once the listing
	// is exhausted. Entries returned alongside a non-EOF error are still
	// valid. Batches may include "." and "..".
	ReadBatch() ([]DirEntry, error)
	Close() error
}

// DirEntry is what a listing reports about one name, before any stat.
type DirEntry struct {
	Name string
	// Ino comes from the listing itself; 0 when the backend has none.
	Ino  uint64
	Hint model.Hint
}

// lstatLocal is the local non-following status query shared by the local
// backends. Platform details live in stat_unix.go and stat_windows.go.
func lstatLocal(path string) (model.Status, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return model.Status{}, err
	}
	return statusFromInfo(info), nil
}
