package reader

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is the fixed text encoding of a log source.
type Encoding string

// Supported encodings. The dedicated server writes UTF-16LE with a BOM.
const (
	UTF16LE Encoding = "utf-16le"
	UTF16BE Encoding = "utf-16be"
	UTF8    Encoding = "utf-8"
)

// ParseEncoding normalises an encoding name. Empty means UTF16LE.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "utf-16le", "utf16le", "utf-16", "utf16", "unicode":
		return UTF16LE, nil
	case "utf-16be", "utf16be":
		return UTF16BE, nil
	case "utf-8", "utf8":
		return UTF8, nil
	}
	return "", fmt.Errorf("unsupported encoding %q", name)
}

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
)

// detectBOM returns the effective encoding of data and the length of its
// byte order mark. A UTF-16 BOM overrides the configured byte order.
func detectBOM(data []byte, enc Encoding) (Encoding, int) {
	switch {
	case bytes.HasPrefix(data, bomUTF8) && enc == UTF8:
		return UTF8, len(bomUTF8)
	case bytes.HasPrefix(data, bomUTF16LE) && enc != UTF8:
		return UTF16LE, len(bomUTF16LE)
	case bytes.HasPrefix(data, bomUTF16BE) && enc != UTF8:
		return UTF16BE, len(bomUTF16BE)
	}
	return enc, 0
}

// unitSize is the width in bytes of one code unit.
func (e Encoding) unitSize() int {
	if e == UTF8 {
		return 1
	}
	return 2
}

// isNewline reports whether the code unit at b[i:] is '\n'.
func (e Encoding) isNewline(b []byte, i int) bool {
	switch e {
	case UTF16LE:
		return b[i] == '\n' && b[i+1] == 0
	case UTF16BE:
		return b[i] == 0 && b[i+1] == '\n'
	default:
		return b[i] == '\n'
	}
}

// codec returns the x/text encoding. BOMs are stripped by the reader before
// decoding, so the UTF-16 codecs ignore them.
func (e Encoding) codec() encoding.Encoding {
	switch e {
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case UTF8:
		return unicode.UTF8
	default:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	}
}

// lineEnds returns the offsets just past every newline unit in data[start:].
// Bytes after the last newline form an incomplete line and are not counted.
func (e Encoding) lineEnds(data []byte, start int) []int {
	unit := e.unitSize()
	var ends []int
	for i := start; i+unit <= len(data); i += unit {
		if e.isNewline(data, i) {
			ends = append(ends, i+unit)
		}
	}
	return ends
}

// decodeLine decodes one line, without its newline unit, and strips a
// trailing carriage return. Malformed sequences decode to U+FFFD.
func (e Encoding) decodeLine(dec *encoding.Decoder, raw []byte) string {
	unit := e.unitSize()
	if len(raw) >= unit {
		raw = raw[:len(raw)-unit]
	}
	out, err := dec.Bytes(raw)
	if err != nil {
		// Transformer errors only occur on internal limits; fall back to a
		// lossy conversion rather than dropping the line.
		out = bytes.ToValidUTF8(raw, []byte("�"))
	}
	return strings.TrimRight(string(out), "\r")
}
