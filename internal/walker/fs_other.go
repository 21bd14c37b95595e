//go:build !linux

package walker

import (
	"io"
	"os"

	"github.com/sadopc/treezy/internal/model"
)

const readDirBatchSize = 1024

type localFS struct{}

// Local returns the local filesystem backend. Outside Linux the listing goes
// through (*os.File).ReadDir; the hint comes from the entry's type bits.
func Local() FS {
	return localFS{}
}

func (localFS) Separator() byte { return os.PathSeparator }

func (localFS) Lstat(path string) (model.Status, error) {
	return lstatLocal(path)
}

func (localFS) OpenDir(path string) (DirHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &fileDir{f: f}, nil
}

type fileDir struct {
	f *os.File
}

func (d *fileDir) ReadBatch() ([]DirEntry, error) {
	des, err := d.f.ReadDir(readDirBatchSize)
	if len(des) == 0 {
		if err == nil {
			err = io.EOF
		}
		return nil, err
	}

	entries := make([]DirEntry, 0, len(des))
	for _, de := range des {
		e := DirEntry{
			Name: de.Name(),
			Hint: model.HintFromMode(de.Type()),
		}
		// The portable listing has no inode; take it from the entry's
		// lstat-backed info when the platform provides one.
		if info, infoErr := de.Info(); infoErr == nil {
			e.Ino = statusFromInfo(info).Ino
		}
		entries = append(entries, e)
	}
	return entries, err
}

func (d *fileDir) Close() error {
	return d.f.Close()
}
