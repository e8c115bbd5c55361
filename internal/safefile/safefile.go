// Package safefile opens log files only when they are regular files.
package safefile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotRegularFile is returned for symlinks, FIFOs, devices, sockets and
// directories. A FIFO named like a log file would otherwise block a reader
// forever.
var ErrNotRegularFile = errors.New("not a regular file")

// ErrTooLarge is returned by ReadFrom when the requested range exceeds the
// caller's limit.
var ErrTooLarge = errors.New("file range exceeds read limit")

// OpenRegular opens path after checking, without following symlinks, that it
// is a regular file, and re-checks the opened descriptor.
//
// The caller must close the returned file.
func OpenRegular(path string) (*os.File, os.FileInfo, error) {
	linkInfo, err := os.Lstat(path)
	if err != nil {
		return nil, nil, err
	}
	if !linkInfo.Mode().IsRegular() {
		return nil, nil, ErrNotRegularFile
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotRegularFile
	}
	return f, info, nil
}

// ReadFrom reads the bytes of f from offset to the size reported by info.
// Data appended after the stat is left for the next read. max > 0 bounds the
// number of bytes returned.
func ReadFrom(f *os.File, info os.FileInfo, offset, max int64) ([]byte, error) {
	size := info.Size()
	if offset > size {
		return nil, fmt.Errorf("offset %d beyond end of file (%d bytes)", offset, size)
	}
	n := size - offset
	if max > 0 && n > max {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, n, max)
	}
	buf := make([]byte, n)
	read, err := f.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	// Truncated between stat and read.
	return buf[:read], nil
}

// ReadAt returns exactly n bytes at offset, or an error.
func ReadAt(f *os.File, offset int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, err
	}
	return buf, nil
}
