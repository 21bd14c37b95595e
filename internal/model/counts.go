package model

import "fmt"

// Counts is the per-walk result accumulator. Each directory visit returns its
// own Counts and the caller merges them.
type Counts struct {
	Files    int64 `json:"files"`
	Dirs     int64 `json:"dirs"`
	Symlinks int64 `json:"symlinks"`
	Errors   int64 `json:"errors"`
}

// Add merges other into c.
func (c *Counts) Add(other Counts) {
	c.Files += other.Files
	c.Dirs += other.Dirs
	c.Symlinks += other.Symlinks
	c.Errors += other.Errors
}

// Record counts one classified entry. TypeOther and TypeUnknown are not counted.
func (c *Counts) Record(t EntryType) {
	switch t {
	case TypeRegular:
		c.Files++
	case TypeDirectory:
		c.Dirs++
	case TypeSymlink:
		c.Symlinks++
	}
}

// Total returns the number of counted entries.
func (c Counts) Total() int64 {
	return c.Files + c.Dirs + c.Symlinks
}

// OK reports whether the walk finished without errors.
func (c Counts) OK() bool {
	return c.Errors == 0
}

func (c Counts) String() string {
	return fmt.Sprintf("files %d, dirs %d, symlinks %d, errors %d", c.Files, c.Dirs, c.Symlinks, c.Errors)
}
