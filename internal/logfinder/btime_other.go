//go:build !linux && !windows

package logfinder

import (
	"os"
	"time"
)

// creationTime falls back to the modification time; birth time is not
// exposed portably on these platforms.
func creationTime(_ string, info os.FileInfo) time.Time {
	return info.ModTime()
}
