package validation

import (
	"encoding/json"
	"strconv"
	"strings"
)

// PathSegment is either a field name or a list index.
type PathSegment struct {
	name    string
	index   int
	isIndex bool
}

// Field returns a segment naming an input field.
func Field(name string) PathSegment {
	return PathSegment{name: name}
}

// Index returns a segment addressing a list element.
func Index(i int) PathSegment {
	return PathSegment{index: i, isIndex: true}
}

// IsIndex reports whether s addresses a list element.
func (s PathSegment) IsIndex() bool { return s.isIndex }

// Name returns the field name, or "" for index segments.
func (s PathSegment) Name() string { return s.name }

// Position returns the list index, or -1 for field segments.
func (s PathSegment) Position() int {
	if !s.isIndex {
		return -1
	}
	return s.index
}

// Value returns the segment as it appears in a GraphQL error path: a string
// for fields and an int for indices.
func (s PathSegment) Value() any {
	if s.isIndex {
		return s.index
	}
	return s.name
}

func (s PathSegment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.name
}

func (s PathSegment) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value())
}

// Path locates a value inside an input tree. The root is the empty path.
type Path []PathSegment

// Append returns a new path; p is never modified.
func (p Path) Append(segments ...PathSegment) Path {
	out := make(Path, 0, len(p)+len(segments))
	out = append(out, p...)
	return append(out, segments...)
}

// Values returns p in the GraphQL response form, e.g. ["people", 0, "theName"].
func (p Path) Values() []any {
	if len(p) == 0 {
		return nil
	}
	out := make([]any, len(p))
	for i, s := range p {
		out[i] = s.Value()
	}
	return out
}

// String renders p as people[0].theName.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if s.isIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.name)
	}
	return b.String()
}
