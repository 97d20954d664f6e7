package shroud

import (
	"strconv"
	"strings"
)

// The masking encoder produces a codec-neutral tree that codec providers render.
// Nodes are one of:
//
//	nil        - null
//	*Document  - ordered object
//	[]any      - array
//	Number     - decimal amount, emitted with a numeric wire type
//	Redacted   - masked value, always emitted as text
//	any other  - ordinary Go value, encoded natively by the codec

// Number is the canonical text of an unmasked decimal amount.
type Number string

// IsInteger reports whether the number has no fractional part or exponent.
func (n Number) IsInteger() bool {
	return !strings.ContainsAny(string(n), ".eE")
}

// Int64 parses the number as an integer.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Float64 parses the number as a float. Precision beyond float64 is lost.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Redacted is a masked value. Codecs must emit it as a string so the
// redaction glyphs survive, even where the original was numeric.
type Redacted string

// Entry is one key/value pair of a Document.
type Entry struct {
	Key   string
	Value any
}

// Document is an ordered object. Name carries the source type name for
// formats that need an element name.
type Document struct {
	name    string
	entries []Entry
}

// NewDocument creates an empty document.
func NewDocument(name string) *Document {
	return &Document{name: name}
}

// Name returns the source type name, empty for maps.
func (d *Document) Name() string { return d.name }

// Len returns the number of entries.
func (d *Document) Len() int { return len(d.entries) }

// Entries returns the entries in order. The slice must not be modified.
func (d *Document) Entries() []Entry { return d.entries }

// Set appends key, or replaces its value if already present.
func (d *Document) Set(key string, value any) {
	for i := range d.entries {
		if d.entries[i].Key == key {
			d.entries[i].Value = value
			return
		}
	}
	d.entries = append(d.entries, Entry{Key: key, Value: value})
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	for _, e := range d.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}
