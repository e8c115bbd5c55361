//go:build linux

package logfinder

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// creationTime returns the file birth time via statx, falling back to the
// modification time when the file system does not record it.
func creationTime(path string, info os.FileInfo) time.Time {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx)
	if err != nil || stx.Mask&unix.STATX_BTIME == 0 {
		return info.ModTime()
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
}
