// Package demo provides a sample schema with validated mutations. It backs
// the CLI and the end-to-end tests.
package demo

import (
	"context"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/fluxbase-eu/gqlvalidate/internal/validation"
)

// Error codes raised by the sample whole-object validators.
const (
	CodeNameEqualsAge     = "NameEqualsAge"
	CodeNameAndAgeInEmail = "NameAndAgeInEmail"
)

var (
	ErrNameEqualsAge     = validation.NewError(CodeNameEqualsAge)
	ErrNameAndAgeInEmail = validation.NewError(CodeNameAndAgeInEmail)
)

// TestMutation is the document used by the CLI when no query is given.
const TestMutation = `
mutation Test($input: InputForTests) {
  testMutation(input: $input) {
    email
    thePerson {
      theName
    }
  }
}`

// Schema bundles the executable schema with the registry that validates it.
type Schema struct {
	graphql.Schema
	Registry *validation.Registry
	Input    *graphql.InputObject
	Person   *graphql.InputObject
}

// NewSchema builds the sample schema. opts are applied to every validated
// mutation.
func NewSchema(opts ...validation.Option) (*Schema, error) {
	reg := validation.NewRegistry()
	reg.RegisterCode(CodeNameEqualsAge, CodeNameAndAgeInEmail)

	person := reg.InputObject(validation.InputObjectConfig{
		Name: "PersonalDataInput",
		Fields: []validation.InputField{
			{Name: "theName", Type: graphql.String, Validate: validateName},
			{Name: "theAge", Type: graphql.Int, Validate: validateAge},
			{Name: "email", Type: graphql.String},
		},
		Validate: validatePerson,
	})

	input := reg.InputObject(validation.InputObjectConfig{
		Name: "InputForTests",
		Fields: []validation.InputField{
			{Name: "email", Type: graphql.String, Validate: validateEmail},
			{Name: "people", Type: graphql.NewList(person)},
			{Name: "numbers", Type: graphql.NewList(graphql.Int), Validate: validateNumbers},
			{Name: "thePerson", Type: person},
		},
		Validate: validateInput,
	})

	personalData := graphql.NewObject(graphql.ObjectConfig{
		Name: "PersonalData",
		Fields: graphql.Fields{
			"theName": &graphql.Field{Type: graphql.String},
		},
	})

	output := graphql.NewObject(graphql.ObjectConfig{
		Name: "OutputForTests",
		Fields: graphql.Fields{
			"email":     &graphql.Field{Type: graphql.String},
			"thePerson": &graphql.Field{Type: personalData},
		},
	})

	testMutation, err := reg.Mutation(&graphql.Field{
		Name: "testMutation",
		Type: output,
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{Type: input},
		},
		Resolve: resolveTestMutation,
	}, opts...)
	if err != nil {
		return nil, err
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"allErrors": reg.ErrorsQueryField(),
			},
		}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{
			Name: "Mutation",
			Fields: graphql.Fields{
				"testMutation": testMutation,
			},
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build demo schema: %w", err)
	}

	return &Schema{Schema: schema, Registry: reg, Input: input, Person: person}, nil
}

func resolveTestMutation(p graphql.ResolveParams) (interface{}, error) {
	input, _ := p.Args["input"].(map[string]interface{})
	if input == nil {
		input = map[string]interface{}{}
	}
	return map[string]interface{}{
		"email":     input["email"],
		"thePerson": input["thePerson"],
	}, nil
}

func validateName(_ context.Context, value any, _ map[string]any) (any, error) {
	name, _ := value.(string)
	if len(name) == 0 {
		return nil, validation.ErrEmptyString
	}
	return strings.TrimSpace(name), nil
}

func validateAge(_ context.Context, value any, _ map[string]any) (any, error) {
	if age, ok := toInt(value); ok && age < 0 {
		return nil, validation.ErrNegativeValue
	}
	return value, nil
}

func validatePerson(_ context.Context, input map[string]any) (map[string]any, error) {
	name, hasName := input["theName"]
	age, hasAge := input["theAge"]
	if hasName && hasAge && fmt.Sprint(name) == fmt.Sprint(age) {
		return nil, validation.WithPath(ErrNameEqualsAge, validation.Field("name"))
	}
	return input, nil
}

func validateEmail(_ context.Context, value any, _ map[string]any) (any, error) {
	email, _ := value.(string)
	if !strings.Contains(email, "@") {
		return nil, validation.ErrInvalidEmailFormat
	}
	return strings.Trim(email, " "), nil
}

func validateNumbers(_ context.Context, value any, _ map[string]any) (any, error) {
	numbers, _ := value.([]any)
	if len(numbers) < 2 {
		return nil, validation.LengthNotInRange(2, nil)
	}
	for _, n := range numbers {
		if v, ok := toInt(n); ok && (v < 0 || v > 9) {
			return nil, validation.NotInRange(0, 9)
		}
	}
	return numbers, nil
}

// validateInput requires the email local part to be the first person's name
// followed by their age.
func validateInput(_ context.Context, input map[string]any) (map[string]any, error) {
	people, _ := input["people"].([]any)
	email, _ := input["email"].(string)
	if len(people) == 0 || email == "" {
		return input, nil
	}
	first, _ := people[0].(map[string]any)
	if first == nil {
		return input, nil
	}
	local, _, _ := strings.Cut(email, "@")
	if local != fmt.Sprint(first["theName"])+fmt.Sprint(first["theAge"]) {
		return nil, ErrNameAndAgeInEmail
	}
	return input, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
