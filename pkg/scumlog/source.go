package scumlog

import (
	"github.com/scumlog/scumlog-go/internal/logfinder"
	"github.com/scumlog/scumlog-go/internal/notify"
	"github.com/scumlog/scumlog-go/internal/reader"
	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

// Channel addresses a sink destination (for Discord, a webhook id and token).
type Channel = notify.Channel

// Encoding is the text encoding of a log file.
type Encoding = reader.Encoding

// Supported encodings. SCUM writes UTF-16LE.
const (
	UTF16LE = reader.UTF16LE
	UTF16BE = reader.UTF16BE
	UTF8    = reader.UTF8
)

// Source describes one log category to relay. It is not modified after a
// pipeline is built from it.
type Source struct {
	// Name keys the cursor record. Defaults to the category.
	Name     string
	Category event.Category
	// Dir is the directory holding the log files.
	Dir string
	// Pattern is a doublestar glob matched against file names in Dir.
	Pattern  string
	Encoding Encoding
	Enabled  bool
	Channel  Channel
}

func (s Source) withDefaults() Source {
	if s.Name == "" {
		s.Name = string(s.Category)
	}
	if s.Pattern == "" {
		s.Pattern = logfinder.DefaultPattern(s.Category)
	}
	if s.Encoding == "" {
		s.Encoding = UTF16LE
	}
	return s
}
