package logutil

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "string literal",
			input:    `mutation { testMutation(input: {email: "jo@x.com"}) { email } }`,
			expected: `mutation { testMutation(input: {email: "<redacted>"}) { email } }`,
		},
		{
			name:     "escaped quotes in string",
			input:    `{ search(q: "say \"hi\"") }`,
			expected: `{ search(q: "<redacted>") }`,
		},
		{
			name:     "block string",
			input:    "{ note(text: \"\"\"multi\nline \"quoted\" text\"\"\") }",
			expected: `{ note(text: "<redacted>") }`,
		},
		{
			name:     "numeric literals",
			input:    `{ list(numbers: [1, 20, 3.5, 1e3]) }`,
			expected: `{ list(numbers: [<num>, <num>, <num>, <num>]) }`,
		},
		{
			name:     "field names with digits are kept",
			input:    `{ field1 address2 }`,
			expected: `{ field1 address2 }`,
		},
		{
			name:     "variables are kept",
			input:    "mutation Test($input: InputForTests) {\n  testMutation(input: $input) {\n    email\n  }\n}",
			expected: `mutation Test($input: InputForTests) { testMutation(input: $input) { email } }`,
		},
		{
			name:     "empty document",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeQuery(tt.input))
		})
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key      string
		expected bool
	}{
		{"password", true},
		{"newPassword", true},
		{"api_key", true},
		{"accessToken", true},
		{"clientSecret", true},
		{"email", false},
		{"theName", false},
		{"numbers", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSensitiveKey(tt.key))
		})
	}
}

func TestRedactValue(t *testing.T) {
	t.Run("masks nested sensitive keys and e-mails", func(t *testing.T) {
		input := map[string]any{
			"email":    "jo30@x.com",
			"password": "hunter2",
			"people": []any{
				map[string]any{"theName": "Jo", "theAge": 30, "authToken": "abc"},
				nil,
			},
		}

		out := RedactValue(input)

		assert.Equal(t, map[string]any{
			"email":    "***@x.com",
			"password": Redacted,
			"people": []any{
				map[string]any{"theName": "Jo", "theAge": 30, "authToken": Redacted},
				nil,
			},
		}, out)
	})

	t.Run("does not modify the input", func(t *testing.T) {
		input := map[string]any{"secret": "s3cr3t"}

		_ = RedactValue(input)

		assert.Equal(t, "s3cr3t", input["secret"])
	})

	t.Run("scalars pass through", func(t *testing.T) {
		assert.Equal(t, 42, RedactValue(42))
		assert.Nil(t, RedactValue(nil))
		assert.Equal(t, "plain", RedactValue("plain"))
	})
}

func TestSetup(t *testing.T) {
	defer func(level zerolog.Level, logger zerolog.Logger) {
		zerolog.SetGlobalLevel(level)
		log.Logger = logger
	}(zerolog.GlobalLevel(), log.Logger)

	t.Run("json output at the given level", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Setup("warn", "json", &buf))

		log.Info().Msg("hidden")
		log.Warn().Str("mutation", "testMutation").Msg("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"mutation":"testMutation"`)
		assert.Contains(t, buf.String(), `"level":"warn"`)
	})

	t.Run("console output", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Setup("debug", "console", &buf))

		log.Debug().Msg("console line")

		assert.Contains(t, buf.String(), "console line")
		assert.NotContains(t, buf.String(), `"message"`)
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := Setup("loud", "json", &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		err := Setup("info", "xml", &bytes.Buffer{})
		assert.Error(t, err)
	})
}
