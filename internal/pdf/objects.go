package pdf

import (
	"fmt"
	"strings"
)

// Object is the generic interface for all PDF objects.
type Object interface {
	String() string
}

// Null represents the PDF 'null' value.
type Null struct{}

func (Null) String() string { return "null" }

// Boolean represents PDF 'true' or 'false'.
type Boolean bool

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Number represents integer or float values.
type Number float64

func (n Number) String() string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", float64(n)), "0"), ".")
}

// Name represents PDF names (e.g., /Type).
type Name string

func (n Name) String() string { return "/" + string(n) }

// String_ represents literal and hex strings. Raw holds the decoded
// bytes; their text interpretation depends on context (PDFDocEncoding
// or UTF-16BE for text strings, font code bytes in content streams).
type String_ []byte

func (s String_) String() string { return fmt.Sprintf("(%s)", string(s)) }

// Array represents PDF arrays (e.g., [1 2 R]).
type Array []Object

func (a Array) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, obj := range a {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(obj.String())
	}
	sb.WriteString("]")
	return sb.String()
}

// Dict represents PDF dictionaries (e.g., << /Type /Page >>), keyed by
// name without the leading slash.
type Dict map[Name]Object

func (d Dict) String() string {
	var sb strings.Builder
	sb.WriteString("<<")
	for k, v := range d {
		sb.WriteString(fmt.Sprintf(" /%s %s", string(k), v.String()))
	}
	sb.WriteString(" >>")
	return sb.String()
}

// Ref represents an indirect reference (e.g., 12 0 R).
type Ref struct {
	Num int
	Gen int
}

func (r Ref) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Stream represents a dictionary followed by raw (still encoded)
// stream data. Use Document.StreamData to apply the filter chain.
type Stream struct {
	Header Dict
	Raw    []byte
}

func (s Stream) String() string { return fmt.Sprintf("stream(len=%d)", len(s.Raw)) }

// Keyword represents bare keywords (e.g., obj, endstream, Tj).
type Keyword string

func (k Keyword) String() string { return string(k) }

// Convenience accessors. They return zero values rather than errors so
// traversal code stays linear; absence checks use the ok form.

func toInt(obj Object) (int, bool) {
	n, ok := obj.(Number)
	return int(n), ok
}

func toName(obj Object) (Name, bool) {
	n, ok := obj.(Name)
	return n, ok
}

func toDict(obj Object) (Dict, bool) {
	d, ok := obj.(Dict)
	return d, ok
}

func toArray(obj Object) (Array, bool) {
	a, ok := obj.(Array)
	return a, ok
}
