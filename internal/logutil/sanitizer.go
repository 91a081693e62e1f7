// Package logutil provides logging setup and sanitization of logged input
package logutil

import (
	"regexp"
	"strings"
)

// Redacted replaces sensitive values in logs.
const Redacted = "<redacted>"

var (
	blockStringPattern = regexp.MustCompile(`"""(?s:.*?)"""`)
	stringPattern      = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)
	numericPattern     = regexp.MustCompile(`\b\d+(?:\.\d+)?(?:[eE][+-]?\d+)?\b`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	emailPattern       = regexp.MustCompile(`[^\s@]+@[^\s@]+`)
)

// sensitiveKeys are matched case-insensitively as substrings of input field
// names.
var sensitiveKeys = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"apikey",
	"api_key",
	"authorization",
	"credential",
	"ssn",
}

// SanitizeQuery removes literal values from a GraphQL document so it can be
// logged. Variables are not part of the document and are not touched.
//
// Replacements:
// - String and block string literals: "<redacted>"
// - Numeric literals: <num>
// - Runs of whitespace: a single space
//
// Example:
//
//	mutation { testMutation(input: {email: "jo@x.com", numbers: [1, 2]}) { email } }
//	=> mutation { testMutation(input: {email: "<redacted>", numbers: [<num>, <num>]}) { email } }
func SanitizeQuery(query string) string {
	// Block strings first, otherwise their quotes pair up as plain strings.
	query = blockStringPattern.ReplaceAllString(query, `"`+Redacted+`"`)
	query = stringPattern.ReplaceAllString(query, `"`+Redacted+`"`)
	query = numericPattern.ReplaceAllString(query, "<num>")
	query = whitespacePattern.ReplaceAllString(query, " ")
	return strings.TrimSpace(query)
}

// IsSensitiveKey reports whether values stored under key should never be
// logged.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range sensitiveKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// RedactValue returns a copy of an input value safe for logging. Values under
// sensitive keys are replaced with Redacted and e-mail addresses are masked
// down to their domain. v is not modified.
func RedactValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if IsSensitiveKey(k) {
				out[k] = Redacted
				continue
			}
			out[k] = RedactValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = RedactValue(item)
		}
		return out
	case string:
		return maskEmails(val)
	default:
		return v
	}
}

func maskEmails(s string) string {
	return emailPattern.ReplaceAllStringFunc(s, func(addr string) string {
		at := strings.LastIndex(addr, "@")
		return "***" + addr[at:]
	})
}
