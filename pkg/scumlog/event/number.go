package event

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric log field. When the text cannot be converted, Valid is
// false and Raw keeps the original text so the event is not lost.
type Number struct {
	Value float64
	Raw   string
	Valid bool
}

// ParseNumber converts s, tolerating surrounding spaces and thousands
// separators. An empty string yields the zero Number. NaN and infinities
// are kept as raw text only.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || !finite(v) {
		return Number{Raw: s}
	}
	return Number{Value: v, Raw: s, Valid: true}
}

// Num returns a Number holding v. It is valid unless v is NaN or infinite.
func Num(v float64) Number {
	raw := strconv.FormatFloat(v, 'f', -1, 64)
	if !finite(v) {
		return Number{Raw: raw}
	}
	return Number{Value: v, Raw: raw, Valid: true}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsZero reports whether n carries no text at all.
func (n Number) IsZero() bool {
	return !n.Valid && n.Raw == ""
}

// String returns the raw text, or the formatted value if there is none.
func (n Number) String() string {
	if n.Raw != "" {
		return n.Raw
	}
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// MarshalJSON encodes valid numbers as JSON numbers and unparsed ones as
// their raw string.
func (n Number) MarshalJSON() ([]byte, error) {
	switch {
	case n.Valid && finite(n.Value):
		return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
	case n.Raw != "":
		return json.Marshal(n.Raw)
	default:
		return []byte("null"), nil
	}
}

// Vector is a world position in centimetres.
type Vector struct {
	X Number `json:"x"`
	Y Number `json:"y"`
	Z Number `json:"z"`
}

// ParseVector builds a Vector from three coordinate strings.
func ParseVector(x, y, z string) Vector {
	return Vector{X: ParseNumber(x), Y: ParseNumber(y), Z: ParseNumber(z)}
}

// IsZero reports whether no coordinate was present.
func (v Vector) IsZero() bool {
	return v.X.IsZero() && v.Y.IsZero() && v.Z.IsZero()
}

func (v Vector) String() string {
	if v.IsZero() {
		return ""
	}
	return fmt.Sprintf("X=%s Y=%s Z=%s", v.X, v.Y, v.Z)
}
