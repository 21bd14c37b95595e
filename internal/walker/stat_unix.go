//go:build !windows

package walker

import (
	"os"
	"syscall"

	"github.com/sadopc/treezy/internal/model"
)

// statusFromInfo extracts device, inode, link count and ownership from the
// platform stat structure behind info.
func statusFromInfo(info os.FileInfo) model.Status {
	st := model.Status{
		Mode:  info.Mode(),
		Size:  info.Size(),
		Mtime: info.ModTime(),
		Nlink: 1,
	}
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return st
	}
	st.Dev = uint64(sys.Dev)
	st.Ino = uint64(sys.Ino)
	st.Nlink = uint64(sys.Nlink)
	st.UID = sys.Uid
	st.GID = sys.Gid
	st.HasOwner = true
	return st
}
