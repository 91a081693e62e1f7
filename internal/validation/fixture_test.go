package validation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/require"
)

var errMismatch = NewError("NameAndAgeInEmail")

// fixture mirrors the sample schema: a person input nested in a form input,
// both with field and whole-object validators.
type fixture struct {
	reg         *Registry
	person      *graphql.InputObject
	form        *graphql.InputObject
	personCalls int
	formCalls   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{reg: NewRegistry()}

	f.person = f.reg.InputObject(InputObjectConfig{
		Name: "PersonInput",
		Fields: []InputField{
			{Name: "theName", Type: graphql.String, Validate: trimNonEmpty},
			{Name: "theAge", Type: graphql.Int, Validate: nonNegative},
		},
		Validate: func(_ context.Context, input map[string]any) (map[string]any, error) {
			f.personCalls++
			if input["theName"] != nil && fmt.Sprint(input["theName"]) == fmt.Sprint(input["theAge"]) {
				return nil, WithPath(NewError("NameEqualsAge"), Field("theName"))
			}
			return input, nil
		},
	})

	f.form = f.reg.InputObject(InputObjectConfig{
		Name: "FormInput",
		Fields: []InputField{
			{Name: "email", Type: graphql.String, Validate: email},
			{Name: "people", Type: graphql.NewList(f.person)},
			{Name: "numbers", Type: graphql.NewList(graphql.Int), Validate: digits},
			{Name: "thePerson", Type: f.person},
		},
		Validate: func(_ context.Context, input map[string]any) (map[string]any, error) {
			f.formCalls++
			people, _ := input["people"].([]any)
			addr, _ := input["email"].(string)
			if len(people) == 0 || addr == "" {
				return input, nil
			}
			first := people[0].(map[string]any)
			local, _, _ := strings.Cut(addr, "@")
			if local != fmt.Sprint(first["theName"])+fmt.Sprint(first["theAge"]) {
				return nil, errMismatch
			}
			return input, nil
		},
	})

	return f
}

func (f *fixture) validate(t *testing.T, input map[string]any) (map[string]any, *AggregateError) {
	t.Helper()
	out, err := f.reg.Validate(context.Background(), f.form, input)
	if err == nil {
		return out, nil
	}
	agg, ok := err.(*AggregateError)
	require.True(t, ok, "unexpected error: %v", err)
	return out, agg
}

func trimNonEmpty(_ context.Context, value any, _ map[string]any) (any, error) {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyString
	}
	return s, nil
}

func nonNegative(_ context.Context, value any, _ map[string]any) (any, error) {
	if n, ok := value.(int); ok && n < 0 {
		return nil, ErrNegativeValue
	}
	return value, nil
}

func email(_ context.Context, value any, _ map[string]any) (any, error) {
	s, _ := value.(string)
	if !strings.Contains(s, "@") {
		return nil, ErrInvalidEmailFormat
	}
	return strings.TrimSpace(s), nil
}

func digits(_ context.Context, value any, _ map[string]any) (any, error) {
	items, _ := value.([]any)
	if len(items) < 2 {
		return nil, LengthNotInRange(2, nil)
	}
	for _, item := range items {
		if n, ok := item.(int); ok && (n < 0 || n > 9) {
			return nil, NotInRange(0, 9)
		}
	}
	return items, nil
}

func entryPaths(agg *AggregateError) []string {
	out := make([]string, len(agg.Entries))
	for i, e := range agg.Entries {
		out[i] = e.Path.String()
	}
	return out
}
