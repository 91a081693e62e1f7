package validation

import (
	"fmt"
	"strings"
)

// Entry is one accumulated failure. Object is set for errors raised by a
// whole-object validator.
type Entry struct {
	Path   Path
	Detail Detail
	Object bool
}

// AggregateError holds every failure collected during one validation run, in
// traversal order.
type AggregateError struct {
	Entries []Entry
}

func (e *AggregateError) Error() string {
	parts := make([]string, 0, len(e.Entries))
	for _, entry := range e.Entries {
		if len(entry.Path) == 0 {
			parts = append(parts, entry.Detail.Code)
			continue
		}
		parts = append(parts, entry.Path.String()+": "+entry.Detail.Code)
	}
	return fmt.Sprintf("validation failed with %d error(s): %s", len(e.Entries), strings.Join(parts, "; "))
}

// Len returns the number of entries.
func (e *AggregateError) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Entries)
}

// Codes returns the code of every entry in order.
func (e *AggregateError) Codes() []string {
	codes := make([]string, len(e.Entries))
	for i, entry := range e.Entries {
		codes[i] = entry.Detail.Code
	}
	return codes
}

// add records every detail of err at path. An Error without details is
// recorded once using its message as the code.
func (e *AggregateError) add(path Path, err Error, object bool) {
	details := err.Details()
	if len(details) == 0 {
		details = []Detail{{Code: err.Error()}}
	}
	for _, d := range details {
		full := path.Append(d.Path...)
		d.Path = nil
		e.Entries = append(e.Entries, Entry{Path: full, Detail: d, Object: object})
	}
}
