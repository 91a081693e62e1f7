package validation

import (
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Codes(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCode("NameEqualsAge", CodeEmptyString)

	assert.Equal(t, []string{
		"EmptyString",
		"InvalidEmailFormat",
		"LengthNotInRange",
		"NameEqualsAge",
		"NegativeValue",
		"NotInRange",
	}, reg.Codes())
}

func TestErrorsQueryField(t *testing.T) {
	h := newMutationHarness(t)
	h.reg.RegisterCode("NameAndAgeInEmail")

	result := graphql.Do(graphql.Params{
		Schema:        h.schema,
		RequestString: `{ allErrors { code } }`,
	})

	require.Empty(t, result.Errors)
	data := result.Data.(map[string]interface{})
	list := data["allErrors"].([]interface{})
	codes := make([]string, len(list))
	for i, item := range list {
		codes[i] = item.(map[string]interface{})["code"].(string)
	}
	assert.Contains(t, codes, "NameAndAgeInEmail")
	assert.Contains(t, codes, CodeInvalidEmailFormat)
	assert.Len(t, codes, len(builtinCodes)+1)
}
