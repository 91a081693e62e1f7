package validation

import (
	"github.com/graphql-go/graphql/gqlerrors"
)

const (
	// ErrorMessage is the message of every boundary validation error, so
	// clients can tell validation failures apart from other errors.
	ErrorMessage = "ValidationError"

	// DefaultExtensionKey holds the entry list in the error extensions.
	DefaultExtensionKey = "validationErrors"
)

// BoundaryError is returned from a decorated resolver when validation fails.
// graphql-go copies Extensions into the formatted error.
type BoundaryError struct {
	agg *AggregateError
	key string
}

var _ gqlerrors.ExtendedError = (*BoundaryError)(nil)

// NewBoundaryError converts agg into its response representation.
func NewBoundaryError(agg *AggregateError, extensionKey string) *BoundaryError {
	if extensionKey == "" {
		extensionKey = DefaultExtensionKey
	}
	return &BoundaryError{agg: agg, key: extensionKey}
}

func (e *BoundaryError) Error() string { return ErrorMessage }

func (e *BoundaryError) Unwrap() error { return e.agg }

// Entries returns the underlying failures.
func (e *BoundaryError) Entries() []Entry { return e.agg.Entries }

// Extensions implements gqlerrors.ExtendedError.
func (e *BoundaryError) Extensions() map[string]interface{} {
	return map[string]interface{}{e.key: Payload(e.agg.Entries)}
}

// Payload renders entries as {code, meta?, ...extensions, path?}. Entries
// with an empty path, such as root whole-object errors, carry no path key.
func Payload(entries []Entry) []map[string]interface{} {
	out := make([]map[string]interface{}, len(entries))
	for i, entry := range entries {
		item := make(map[string]interface{}, len(entry.Detail.Extensions)+3)
		for k, v := range entry.Detail.Extensions {
			item[k] = v
		}
		item["code"] = entry.Detail.Code
		if entry.Detail.Meta != nil {
			item["meta"] = entry.Detail.Meta
		}
		if len(entry.Path) > 0 {
			item["path"] = entry.Path.Values()
		}
		out[i] = item
	}
	return out
}

// IsValidationError reports whether a formatted graphql-go error came from
// a failed validation run.
func IsValidationError(err gqlerrors.FormattedError) bool {
	return err.Message == ErrorMessage && len(err.Extensions) > 0
}

// FormattedEntries returns the entry list stored under key in a formatted
// validation error, or nil when there is none. An empty key means
// DefaultExtensionKey.
func FormattedEntries(err gqlerrors.FormattedError, key string) []map[string]interface{} {
	if key == "" {
		key = DefaultExtensionKey
	}
	entries, _ := err.Extensions[key].([]map[string]interface{})
	return entries
}
