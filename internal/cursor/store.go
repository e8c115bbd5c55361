// Package cursor persists per-source read positions across restarts.
package cursor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const fileExt = ".json"

// Cursor is the persisted read position of one source.
type Cursor struct {
	Source         string    `json:"-"`
	CurrentFile    string    `json:"CurrentFile"`
	LastLineNumber int       `json:"LastLineNumber"`
	LastUpdate     time.Time `json:"LastUpdate"`
}

// Tracking reports whether the cursor follows a file.
func (c Cursor) Tracking() bool {
	return c.CurrentFile != ""
}

// Reset clears the tracked file and line count.
func (c Cursor) Reset() Cursor {
	c.CurrentFile = ""
	c.LastLineNumber = 0
	return c
}

// Store keeps one JSON record per source in a directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("cursor directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cursor directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the record path for a source.
func (s *Store) Path(source string) string {
	return filepath.Join(s.dir, RecordName(source)+fileExt)
}

// Load returns the cursor for source.
//
// A missing record yields a zero cursor and found=false; callers use that to
// start at the end of the current file instead of replaying history. If the
// tracked file has been deleted since the record was written, the cursor is
// reset but found stays true, so the next file is read from its start.
func (s *Store) Load(source string) (cur Cursor, found bool, err error) {
	cur = Cursor{Source: source}

	data, err := os.ReadFile(s.Path(source))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cur, false, nil
		}
		return cur, false, fmt.Errorf("reading cursor: %w", err)
	}

	if err := json.Unmarshal(data, &cur); err != nil {
		return Cursor{Source: source}, false, fmt.Errorf("decoding cursor %s: %w", source, err)
	}
	cur.Source = source
	if cur.LastLineNumber < 0 {
		cur.LastLineNumber = 0
	}

	if cur.Tracking() {
		if _, err := os.Stat(cur.CurrentFile); errors.Is(err, os.ErrNotExist) {
			cur = cur.Reset()
		}
	}
	return cur, true, nil
}

// Save writes the cursor using a temp-file-then-rename so a crash never
// leaves a half-written record.
func (s *Store) Save(cur Cursor) error {
	if cur.Source == "" {
		return errors.New("cursor has no source")
	}
	if cur.LastUpdate.IsZero() {
		cur.LastUpdate = time.Now().UTC()
	}

	data, err := json.MarshalIndent(cur, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cursor: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+RecordName(cur.Source)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp cursor: %w", err)
	}
	tmpPath := tmp.Name()
	ok := false
	defer func() {
		if !ok {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cursor: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing cursor: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cursor: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path(cur.Source)); err != nil {
		return fmt.Errorf("renaming cursor: %w", err)
	}
	ok = true
	return nil
}

// List returns all stored cursors sorted by source. Unreadable records are
// skipped.
func (s *Store) List() ([]Cursor, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing cursors: %w", err)
	}

	var out []Cursor
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		var cur Cursor
		if err := json.Unmarshal(data, &cur); err != nil {
			continue
		}
		cur.Source = strings.TrimSuffix(name, fileExt)
		out = append(out, cur)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out, nil
}

// RecordName maps a source name onto its record file name, without the
// extension. Distinct names may share a record name.
func RecordName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	s := strings.Trim(sb.String(), ".")
	if s == "" {
		return "_"
	}
	return s
}
