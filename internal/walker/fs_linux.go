//go:build linux

package walker

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/sadopc/treezy/internal/model"
)

// linux_dirent64 layout (linux/dirent.h):
//
//	struct linux_dirent64 {
//	    ino64_t        d_ino;    // offset 0
//	    off64_t        d_off;    // offset 8
//	    unsigned short d_reclen; // offset 16
//	    unsigned char  d_type;   // offset 18
//	    char           d_name[]; // offset 19
//	};
const (
	direntInoOffset    = 0
	direntReclenOffset = 16
	direntTypeOffset   = 18
	direntNameOffset   = 19

	direntBufSize = 32 * 1024
)

var errInvalidDirent = errors.New("invalid dirent")

type localFS struct{}

// Local returns the local filesystem backend. On Linux the listing is read
// with getdents64, so every entry carries d_ino and d_type straight from the
// kernel.
func Local() FS {
	return localFS{}
}

func (localFS) Separator() byte { return os.PathSeparator }

func (localFS) Lstat(path string) (model.Status, error) {
	return lstatLocal(path)
}

func (localFS) OpenDir(path string) (DirHandle, error) {
	for {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, &os.PathError{Op: "open", Path: path, Err: err}
		}
		return &direntDir{fd: fd, path: path, buf: make([]byte, direntBufSize)}, nil
	}
}

type direntDir struct {
	fd   int
	path string
	buf  []byte
}

func (d *direntDir) ReadBatch() ([]DirEntry, error) {
	var (
		n   int
		err error
	)
	for {
		n, err = unix.ReadDirent(d.fd, d.buf)
		if err == unix.EINTR {
			continue
		}
		break
	}
	if err != nil {
		return nil, &os.PathError{Op: "readdirent", Path: d.path, Err: err}
	}
	if n <= 0 {
		return nil, io.EOF
	}
	entries, err := parseDirents(d.buf[:n], nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.path, err)
	}
	return entries, nil
}

func (d *direntDir) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	if err != nil {
		return &os.PathError{Op: "close", Path: d.path, Err: err}
	}
	return nil
}

// parseDirents decodes raw getdents64 records and appends them to dst.
// Names are copied out of data, which the caller reuses.
func parseDirents(data []byte, dst []DirEntry) ([]DirEntry, error) {
	for len(data) > 0 {
		if len(data) < direntNameOffset {
			return dst, errInvalidDirent
		}
		reclen := int(binary.NativeEndian.Uint16(data[direntReclenOffset:]))
		if reclen < direntNameOffset || reclen > len(data) {
			return dst, errInvalidDirent
		}

		rec := data[:reclen]
		data = data[reclen:]

		name := rec[direntNameOffset:]
		for i, b := range name {
			if b == 0 {
				name = name[:i]
				break
			}
		}
		if len(name) == 0 {
			continue
		}

		dst = append(dst, DirEntry{
			Name: string(name),
			Ino:  binary.NativeEndian.Uint64(rec[direntInoOffset:]),
			Hint: model.Hint(rec[direntTypeOffset]),
		})
	}
	return dst, nil
}
