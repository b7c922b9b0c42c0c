//go:build !unix

package fsid

import "os"

// idFromFileInfo falls back to (size, modtime) composition on platforms
// without a stable inode-like identity exposed through os.FileInfo. This is
// weaker than a true file index (it cannot survive a content-preserving
// rename that also touches mtime on some filesystems) but keeps the
// identity-pair grouping functional without a cgo dependency on
// GetFileInformationByHandle.
func idFromFileInfo(info os.FileInfo) (ID, bool) {
	return ID{dev: uint64(info.Size()), ino: uint64(info.ModTime().UnixNano())}, true
}
