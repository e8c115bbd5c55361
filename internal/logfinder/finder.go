// Package logfinder locates the active SCUM server log file for a category.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

// LogSubdir is where the dedicated server writes its logs, relative to the
// server installation directory.
var LogSubdir = filepath.Join("SCUM", "Saved", "SaveFiles", "Logs")

// Sentinel errors.
var (
	ErrLogDirNotFound = errors.New("log directory not found")
	ErrNoLogFiles     = errors.New("no log files found")
)

// filePrefixes holds the log file name prefixes that differ from the
// category name.
var filePrefixes = map[event.Category]string{
	event.CategoryVehicle: "vehicle_destruction",
	event.CategoryChest:   "chest_ownership",
}

// DefaultPattern returns the file name pattern the server uses for a
// category, e.g. "kill_*.log".
func DefaultPattern(c event.Category) string {
	prefix, ok := filePrefixes[c]
	if !ok {
		prefix = string(c)
	}
	return prefix + "_*.log"
}

// LogDir returns the log directory of a server installation.
func LogDir(serverDir string) string {
	return filepath.Join(serverDir, LogSubdir)
}

// ValidateDir checks that dir exists and is a directory.
// The returned path has symlinks resolved.
func ValidateDir(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLogDirNotFound, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrLogDirNotFound, dir)
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLogDirNotFound, err)
	}
	return resolved, nil
}

// logCandidate holds a log file path and its cached creation time.
// Stat results are cached so files deleted between stat and sort cannot
// break the ordering.
type logCandidate struct {
	path    string
	name    string
	created int64
}

// FindLatest returns the matching file in dir with the most recent
// creation time. Log files are append-only, so creation time identifies the
// server session; modification time would flip between categories written
// concurrently.
//
// pattern is a doublestar glob matched against file names in dir (not
// recursive). Returns ErrNoLogFiles if nothing matches.
func FindLatest(dir, pattern string) (string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return "", fmt.Errorf("invalid log file pattern %q", pattern)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrLogDirNotFound, dir)
		}
		return "", fmt.Errorf("reading log directory: %w", err)
	}

	candidates := make([]logCandidate, 0, len(entries))
	for _, e := range entries {
		if ok, _ := doublestar.Match(pattern, e.Name()); !ok {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := os.Lstat(path)
		if err != nil {
			// Deleted or unreadable since ReadDir.
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, logCandidate{
			path:    path,
			name:    e.Name(),
			created: creationTime(path, info).UnixNano(),
		})
	}

	if len(candidates) == 0 {
		return "", ErrNoLogFiles
	}

	// Newest first; SCUM puts a timestamp in the name, so the name breaks ties
	// on file systems with coarse or missing birth times.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].created != candidates[j].created {
			return candidates[i].created > candidates[j].created
		}
		return candidates[i].name > candidates[j].name
	})

	return candidates[0].path, nil
}
