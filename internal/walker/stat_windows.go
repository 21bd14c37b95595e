//go:build windows

package walker

import (
	"os"

	"github.com/sadopc/treezy/internal/model"
)

// statusFromInfo on Windows carries only what os.FileInfo exposes.
// Inode, device and ownership are not reported.
func statusFromInfo(info os.FileInfo) model.Status {
	return model.Status{
		Mode:  info.Mode(),
		Size:  info.Size(),
		Mtime: info.ModTime(),
		Nlink: 1,
	}
}
