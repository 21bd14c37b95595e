package model

import (
	"io/fs"
	"time"
)

// Status is the result of a non-following status query.
type Status struct {
	Dev   uint64
	Ino   uint64
	Mode  fs.FileMode
	Size  int64
	Nlink uint64
	Mtime time.Time
	UID   uint32
	GID   uint32
	// HasOwner is false on platforms or backends without uid/gid.
	HasOwner bool
}

// Entry is one visited directory entry, ready for output.
type Entry struct {
	Path string
	Ino  uint64
	Hint Hint
	Type EntryType
	// Stat is nil when the status query failed or was not attempted.
	Stat *Status
}

// Degraded reports whether the entry is missing its status result.
func (e Entry) Degraded() bool {
	return e.Stat == nil
}
