//go:build windows

package logfinder

import (
	"os"
	"syscall"
	"time"
)

func creationTime(_ string, info os.FileInfo) time.Time {
	if attr, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return time.Unix(0, attr.CreationTime.Nanoseconds())
	}
	return info.ModTime()
}
