// Package reader incrementally reads newly appended lines of a log file.
package reader

import (
	"bytes"
	"fmt"
	"os"

	"github.com/scumlog/scumlog-go/internal/cursor"
	"github.com/scumlog/scumlog-go/internal/safefile"
)

const (
	// DefaultMaxBytes bounds a single read batch.
	DefaultMaxBytes = 256 * 1024 * 1024

	// fingerprintSize is how many bytes before the remembered offset are
	// compared before trusting a seek.
	fingerprintSize = 64
)

// Line is one decoded log line.
type Line struct {
	Number int // 1-based position in the file
	Text   string
}

// Batch is the result of one Read.
type Batch struct {
	Lines  []Line
	Cursor cursor.Cursor
	// Rotated is set when the cursor was reset to the start of a file.
	Rotated bool
	// Skipped is the number of existing lines jumped over on first
	// initialisation.
	Skipped int
}

// Option configures a Reader.
type Option func(*Reader)

// WithMaxBytes bounds how many bytes one Read may load. 0 disables the limit.
func WithMaxBytes(n int64) Option {
	return func(r *Reader) { r.maxBytes = n }
}

// Reader reads the lines appended to a file since a cursor.
//
// A Reader is owned by a single pipeline and is not safe for concurrent use.
type Reader struct {
	enc      Encoding
	maxBytes int64
	memo     memo
}

// memo remembers where the previous read ended so the next one can read only
// the appended bytes.
type memo struct {
	path        string
	enc         Encoding
	lines       int
	offset      int64
	fingerprint []byte
}

// New returns a Reader for files in the given encoding.
func New(enc Encoding, opts ...Option) *Reader {
	r := &Reader{enc: enc, maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Read returns the complete lines of path that cur has not consumed.
//
// When path differs from the cursor's file (rotation, or no file yet) the
// whole file is new; if fromEnd is set instead, the cursor jumps to the
// current end and no lines are returned. A file that now has fewer lines than
// the cursor was truncated and rewritten and is also read from the start.
//
// Errors mean nothing was consumed; the cursor passed in is still valid.
func (r *Reader) Read(path string, cur cursor.Cursor, fromEnd bool) (Batch, error) {
	f, info, err := safefile.OpenRegular(path)
	if err != nil {
		return Batch{Cursor: cur}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sameFile := cur.CurrentFile == path
	if sameFile {
		if batch, ok := r.readTail(f, info, path, cur); ok {
			return batch, nil
		}
	}

	data, err := safefile.ReadFrom(f, info, 0, r.maxBytes)
	if err != nil {
		return Batch{Cursor: cur}, fmt.Errorf("reading %s: %w", path, err)
	}

	enc, bom := detectBOM(data, r.enc)
	ends := enc.lineEnds(data, bom)
	total := len(ends)

	batch := Batch{Cursor: cur}
	batch.Cursor.CurrentFile = path
	skip := 0
	switch {
	case sameFile && total >= cur.LastLineNumber:
		skip = cur.LastLineNumber
	case sameFile:
		batch.Rotated = true
	case fromEnd:
		skip = total
		batch.Skipped = total
	default:
		batch.Rotated = true
	}

	start := bom
	if skip > 0 {
		start = ends[skip-1]
	}
	batch.Lines = decodeLines(enc, data, start, ends[skip:], skip)
	batch.Cursor.LastLineNumber = total

	r.remember(path, enc, data, total, ends, bom)
	return batch, nil
}

// readTail serves a same-file read from the remembered offset. It reports
// false when the memo is missing or the file no longer starts with the bytes
// it was computed from.
func (r *Reader) readTail(f *os.File, info os.FileInfo, path string, cur cursor.Cursor) (Batch, bool) {
	m := r.memo
	if m.path != path || m.lines != cur.LastLineNumber || info.Size() < m.offset {
		return Batch{}, false
	}
	if n := len(m.fingerprint); n > 0 {
		got, err := safefile.ReadAt(f, m.offset-int64(n), n)
		if err != nil || !bytes.Equal(got, m.fingerprint) {
			return Batch{}, false
		}
	}

	tail, err := safefile.ReadFrom(f, info, m.offset, r.maxBytes)
	if err != nil {
		return Batch{}, false
	}

	ends := m.enc.lineEnds(tail, 0)
	batch := Batch{Cursor: cur}
	batch.Lines = decodeLines(m.enc, tail, 0, ends, m.lines)
	batch.Cursor.LastLineNumber = m.lines + len(ends)

	if len(ends) > 0 {
		last := ends[len(ends)-1]
		r.memo.lines = batch.Cursor.LastLineNumber
		r.memo.offset = m.offset + int64(last)
		r.memo.fingerprint = fingerprint(tail[:last], m.fingerprint)
	}
	return batch, true
}

func (r *Reader) remember(path string, enc Encoding, data []byte, total int, ends []int, bom int) {
	end := bom
	if total > 0 {
		end = ends[total-1]
	}
	r.memo = memo{
		path:        path,
		enc:         enc,
		lines:       total,
		offset:      int64(end),
		fingerprint: fingerprint(data[:end], nil),
	}
}

// fingerprint returns the last fingerprintSize bytes of prev+data.
func fingerprint(data, prev []byte) []byte {
	if len(data) >= fingerprintSize {
		return bytes.Clone(data[len(data)-fingerprintSize:])
	}
	joined := append(bytes.Clone(prev), data...)
	if len(joined) > fingerprintSize {
		joined = joined[len(joined)-fingerprintSize:]
	}
	return joined
}

// decodeLines decodes data[start:ends[i]] line by line. Line numbers start
// after the given count.
func decodeLines(enc Encoding, data []byte, start int, ends []int, after int) []Line {
	if len(ends) == 0 {
		return nil
	}
	dec := enc.codec().NewDecoder()
	lines := make([]Line, 0, len(ends))
	for i, end := range ends {
		lines = append(lines, Line{
			Number: after + i + 1,
			Text:   enc.decodeLine(dec, data[start:end]),
		})
		start = end
	}
	return lines
}

// ReadAll decodes every complete line of path. It is used for offline
// parsing, outside any cursor.
func ReadAll(path string, enc Encoding) ([]Line, error) {
	batch, err := New(enc, WithMaxBytes(0)).Read(path, cursor.Cursor{}, false)
	if err != nil {
		return nil, err
	}
	return batch.Lines, nil
}
