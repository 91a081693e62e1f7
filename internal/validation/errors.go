package validation

import (
	"strings"
)

// Built-in error codes. Codes are machine-readable identifiers; turning them
// into human-readable text is left to clients.
const (
	CodeEmptyString        = "EmptyString"
	CodeInvalidEmailFormat = "InvalidEmailFormat"
	CodeNegativeValue      = "NegativeValue"
	CodeNotInRange         = "NotInRange"
	CodeLengthNotInRange   = "LengthNotInRange"
)

var builtinCodes = []string{
	CodeEmptyString,
	CodeInvalidEmailFormat,
	CodeNegativeValue,
	CodeNotInRange,
	CodeLengthNotInRange,
}

var (
	ErrEmptyString        = NewError(CodeEmptyString)
	ErrInvalidEmailFormat = NewError(CodeInvalidEmailFormat)
	ErrNegativeValue      = NewError(CodeNegativeValue)
)

// Detail describes one validation failure.
//
// Code is required. Meta carries constraint metadata such as {min, max}.
// Extensions holds any additional keys that should be reported next to code
// and meta. Path is relative to the object the error was raised for; the
// engine prefixes it with that object's location.
type Detail struct {
	Code       string         `json:"code"`
	Meta       map[string]any `json:"meta,omitempty"`
	Extensions map[string]any `json:"-"`
	Path       Path           `json:"path,omitempty"`
}

// Error is implemented by every error a validator may return to mark a value
// as invalid. Any other error returned by a validator aborts validation.
type Error interface {
	error
	Details() []Detail
}

// SingleError is an Error with exactly one detail.
type SingleError struct {
	Code string
	Meta map[string]any
}

// NewError returns a SingleError for code without metadata.
func NewError(code string) *SingleError {
	return &SingleError{Code: code}
}

// WithMeta returns a copy of e carrying meta.
func (e *SingleError) WithMeta(meta map[string]any) *SingleError {
	return &SingleError{Code: e.Code, Meta: meta}
}

func (e *SingleError) Error() string {
	return e.Code
}

// Details implements Error.
func (e *SingleError) Details() []Detail {
	return []Detail{{Code: e.Code, Meta: e.Meta}}
}

// Is reports whether target is a SingleError with the same code, so that
// errors.Is(err, ErrEmptyString) matches copies made with WithMeta.
func (e *SingleError) Is(target error) bool {
	t, ok := target.(*SingleError)
	return ok && t.Code == e.Code
}

// NotInRange reports a value outside [min, max]. Either bound may be nil.
func NotInRange(min, max any) *SingleError {
	return &SingleError{Code: CodeNotInRange, Meta: rangeMeta(min, max)}
}

// LengthNotInRange reports a length outside [min, max]. Either bound may be nil.
func LengthNotInRange(min, max any) *SingleError {
	return &SingleError{Code: CodeLengthNotInRange, Meta: rangeMeta(min, max)}
}

func rangeMeta(min, max any) map[string]any {
	return map[string]any{"min": min, "max": max}
}

type pathError struct {
	err  Error
	path Path
}

// WithPath returns an Error whose details point at segments below the object
// being validated. Whole-object validators use it to attribute a cross-field
// failure to one of their fields.
func WithPath(err Error, segments ...PathSegment) Error {
	return &pathError{err: err, path: Path(segments)}
}

func (e *pathError) Error() string { return e.err.Error() }

func (e *pathError) Unwrap() error { return e.err }

func (e *pathError) Details() []Detail {
	details := e.err.Details()
	out := make([]Detail, len(details))
	for i, d := range details {
		d.Path = e.path.Append(d.Path...)
		out[i] = d
	}
	return out
}

type multiError []Error

// Multi combines several errors into one. Their details are reported in order.
// Nil errors are dropped; Multi returns nil when none are left, so a validator
// may return its result directly.
func Multi(errs ...Error) Error {
	var out multiError
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (m multiError) Error() string {
	codes := make([]string, 0, len(m))
	for _, err := range m {
		codes = append(codes, err.Error())
	}
	return strings.Join(codes, ", ")
}

func (m multiError) Details() []Detail {
	var out []Detail
	for _, err := range m {
		out = append(out, err.Details()...)
	}
	return out
}

func (m multiError) Unwrap() []error {
	out := make([]error, len(m))
	for i, err := range m {
		out[i] = err
	}
	return out
}
