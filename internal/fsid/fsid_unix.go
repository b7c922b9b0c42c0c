//go:build unix

package fsid

import (
	"os"
	"syscall"
)

func idFromFileInfo(info os.FileInfo) (ID, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return ID{}, false
	}
	return ID{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true
}
