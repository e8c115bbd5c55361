package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/scumlog/scumlog-go/internal/notify"
	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

// validFormats lists all valid output formats.
var validFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

var formatters = notify.DefaultFormatters()

// jsonLine is one JSON Lines record.
type jsonLine struct {
	Kind  string      `json:"kind"`
	Event event.Event `json:"event"`
}

// OutputEvent writes an event in the specified format to the writer.
func OutputEvent(format string, ev event.Event, out io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(ev, out)
	case "pretty":
		return OutputPretty(ev, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes an event as JSON Lines format.
func OutputJSON(ev event.Event, out io.Writer) error {
	data, err := json.Marshal(jsonLine{Kind: ev.Kind(), Event: ev})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes an event as one human-readable line: timestamp,
// category, summary and the fields a Discord message would carry.
func OutputPretty(ev event.Event, out io.Writer) error {
	h := ev.Head()
	line := fmt.Sprintf("[%s] %-15s %s", h.Time.Format("2006-01-02 15:04:05"), h.Category, h.Summary)
	if f, ok := formatters[h.Category]; ok {
		if msg, ok := f(ev); ok && len(msg.Fields) > 0 {
			line += "  " + formatFields(msg.Fields)
		}
	}
	_, err := fmt.Fprintln(out, line)
	return err
}

// formatFields formats fields as key=value pairs in message order.
func formatFields(fields []notify.Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%s", quoteIfNeeded(f.Name), quoteIfNeeded(f.Value)))
	}
	return strings.Join(parts, " ")
}

// quoteIfNeeded quotes a value if it contains spaces, equals signs, quotes
// or control characters.
func quoteIfNeeded(v string) string {
	if v == "" {
		return `""`
	}

	needsQuote := false
	for _, c := range v {
		if c == ' ' || c == '=' || c == '"' || c == '\\' || c < 0x20 || c == 0x7F {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return v
	}

	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range v {
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '"':
			sb.WriteString(`\"`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c < 0x20 || c == 0x7F:
			fmt.Fprintf(&sb, `\x%02x`, c)
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
