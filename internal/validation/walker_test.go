package validation

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Field phase
// =============================================================================

func TestValidate_FieldErrorKeepsOtherTransforms(t *testing.T) {
	f := newFixture(t)

	out, agg := f.validate(t, map[string]any{
		"email":   "a@b.com ",
		"numbers": []any{1},
	})

	require.NotNil(t, agg)
	require.Len(t, agg.Entries, 1)
	assert.Equal(t, CodeLengthNotInRange, agg.Entries[0].Detail.Code)
	assert.Equal(t, []any{"numbers"}, agg.Entries[0].Path.Values())
	assert.Equal(t, map[string]any{"min": 2, "max": nil}, agg.Entries[0].Detail.Meta)
	assert.False(t, agg.Entries[0].Object)

	assert.Equal(t, "a@b.com", out["email"])
	assert.Equal(t, 0, f.formCalls)
}

func TestValidate_CollectsEveryFieldError(t *testing.T) {
	f := newFixture(t)

	_, agg := f.validate(t, map[string]any{
		"email": "nope",
		"people": []any{
			map[string]any{"theName": "Jo", "theAge": 30},
			map[string]any{"theName": "  ", "theAge": -1},
		},
		"numbers":   []any{1, 20},
		"thePerson": map[string]any{"theName": ""},
	})

	require.NotNil(t, agg)
	assert.Equal(t, []string{
		"email",
		"people[1].theName",
		"people[1].theAge",
		"numbers",
		"thePerson.theName",
	}, entryPaths(agg))
	assert.Equal(t, []string{
		CodeInvalidEmailFormat,
		CodeEmptyString,
		CodeNegativeValue,
		CodeNotInRange,
		CodeEmptyString,
	}, agg.Codes())
}

func TestValidate_ListElementPath(t *testing.T) {
	f := newFixture(t)

	_, agg := f.validate(t, map[string]any{
		"people": []any{map[string]any{"theName": ""}},
	})

	require.NotNil(t, agg)
	require.Len(t, agg.Entries, 1)
	assert.Equal(t, []any{"people", 0, "theName"}, agg.Entries[0].Path.Values())
}

func TestValidate_AbsentAndNullValuesAreSkipped(t *testing.T) {
	f := newFixture(t)

	out, agg := f.validate(t, map[string]any{
		"email":     nil,
		"people":    []any{nil, map[string]any{"theName": "Al"}},
		"thePerson": nil,
	})

	require.Nil(t, agg)
	assert.Nil(t, out["email"])
	assert.Nil(t, out["thePerson"])
	assert.Equal(t, []any{nil, map[string]any{"theName": "Al"}}, out["people"])
	_, present := out["numbers"]
	assert.False(t, present)
}

func TestValidate_TransformsNestedValues(t *testing.T) {
	f := newFixture(t)

	out, agg := f.validate(t, map[string]any{
		"people":    []any{map[string]any{"theName": "  Ann ", "theAge": 4}},
		"thePerson": map[string]any{"theName": " Bob"},
	})

	require.Nil(t, agg)
	people := out["people"].([]any)
	assert.Equal(t, "Ann", people[0].(map[string]any)["theName"])
	assert.Equal(t, "Bob", out["thePerson"].(map[string]any)["theName"])
}

func TestValidate_DoesNotModifyInput(t *testing.T) {
	f := newFixture(t)

	person := map[string]any{"theName": "  Ann "}
	people := []any{person}
	input := map[string]any{"email": " a@b.c", "thePerson": person, "numbers": []any{1, 2}}

	out, agg := f.validate(t, input)
	require.Nil(t, agg)
	assert.Equal(t, "Ann", out["thePerson"].(map[string]any)["theName"])

	assert.Equal(t, " a@b.c", input["email"])
	assert.Equal(t, "  Ann ", person["theName"])
	assert.Equal(t, map[string]any{"theName": "  Ann "}, people[0])
}

func TestValidate_FieldValidatorSeesSiblings(t *testing.T) {
	reg := NewRegistry()
	var seen map[string]any
	obj := reg.InputObject(InputObjectConfig{
		Name: "PasswordChange",
		Fields: []InputField{
			{Name: "password", Type: graphql.String, Validate: func(_ context.Context, v any, _ map[string]any) (any, error) {
				return v.(string) + "!", nil
			}},
			{Name: "confirm", Type: graphql.String, Validate: func(_ context.Context, v any, siblings map[string]any) (any, error) {
				seen = siblings
				if siblings["password"] != v.(string)+"!" {
					return nil, NewError("Mismatch")
				}
				return v, nil
			}},
		},
	})

	_, err := reg.Validate(context.Background(), obj, map[string]any{"password": "pw", "confirm": "pw"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"password": "pw!"}, seen)
}

func TestValidate_NestedValuesReachFieldValidator(t *testing.T) {
	reg := NewRegistry()
	item := reg.InputObject(InputObjectConfig{
		Name: "Item",
		Fields: []InputField{
			{Name: "sku", Type: graphql.String, Validate: trimNonEmpty},
		},
	})
	var got any
	order := reg.InputObject(InputObjectConfig{
		Name: "Order",
		Fields: []InputField{
			{Name: "items", Type: graphql.NewList(item), Validate: func(_ context.Context, v any, _ map[string]any) (any, error) {
				got = v
				return v, nil
			}},
		},
	})

	out, err := reg.Validate(context.Background(), order, map[string]any{
		"items": []any{map[string]any{"sku": " a1 "}},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"sku": "a1"}}, got)
	assert.Equal(t, []any{map[string]any{"sku": "a1"}}, out["items"])
}

// =============================================================================
// Object phase
// =============================================================================

func TestValidate_WholeObjectPasses(t *testing.T) {
	f := newFixture(t)

	out, agg := f.validate(t, map[string]any{
		"people": []any{map[string]any{"theName": "Jo", "theAge": 30}},
		"email":  "Jo30@x.com",
	})

	require.Nil(t, agg)
	assert.Equal(t, "Jo30@x.com", out["email"])
	assert.Equal(t, 1, f.formCalls)
	assert.Equal(t, 1, f.personCalls)
}

func TestValidate_WholeObjectErrorHasNoPath(t *testing.T) {
	f := newFixture(t)

	_, agg := f.validate(t, map[string]any{
		"people": []any{map[string]any{"theName": "Jo", "theAge": 30}},
		"email":  "mismatch@x.com",
	})

	require.NotNil(t, agg)
	require.Len(t, agg.Entries, 1)
	entry := agg.Entries[0]
	assert.Equal(t, errMismatch.Code, entry.Detail.Code)
	assert.Empty(t, entry.Path)
	assert.True(t, entry.Object)
}

func TestValidate_WholeObjectSkippedOnAnyFieldError(t *testing.T) {
	f := newFixture(t)

	_, agg := f.validate(t, map[string]any{
		"email":     "broken",
		"thePerson": map[string]any{"theName": "Al", "theAge": 3},
	})

	require.NotNil(t, agg)
	assert.Equal(t, []string{CodeInvalidEmailFormat}, agg.Codes())
	assert.Equal(t, 0, f.formCalls)
	assert.Equal(t, 0, f.personCalls)
}

func TestValidate_NestedObjectErrorBlocksParent(t *testing.T) {
	f := newFixture(t)

	_, agg := f.validate(t, map[string]any{
		"thePerson": map[string]any{"theName": "5", "theAge": 5},
	})

	require.NotNil(t, agg)
	require.Len(t, agg.Entries, 1)
	assert.Equal(t, "NameEqualsAge", agg.Entries[0].Detail.Code)
	assert.Equal(t, []any{"thePerson", "theName"}, agg.Entries[0].Path.Values())
	assert.True(t, agg.Entries[0].Object)
	assert.Equal(t, 0, f.formCalls)
}

func TestValidate_SiblingObjectsAllRun(t *testing.T) {
	f := newFixture(t)

	_, agg := f.validate(t, map[string]any{
		"people": []any{
			map[string]any{"theName": "1", "theAge": 1},
			map[string]any{"theName": "2", "theAge": 2},
		},
	})

	require.NotNil(t, agg)
	assert.Equal(t, []string{"people[0].theName", "people[1].theName"}, entryPaths(agg))
	assert.Equal(t, 2, f.personCalls)
}

func TestValidate_ObjectResultReplacesValue(t *testing.T) {
	reg := NewRegistry()
	inner := reg.InputObject(InputObjectConfig{
		Name:   "Inner",
		Fields: []InputField{{Name: "x", Type: graphql.String}},
		Validate: func(_ context.Context, in map[string]any) (map[string]any, error) {
			return map[string]any{"x": in["x"], "normalized": true}, nil
		},
	})
	outer := reg.InputObject(InputObjectConfig{
		Name:   "Outer",
		Fields: []InputField{{Name: "inner", Type: graphql.NewList(inner)}},
		Validate: func(_ context.Context, in map[string]any) (map[string]any, error) {
			items := in["inner"].([]any)
			assert.Equal(t, true, items[0].(map[string]any)["normalized"])
			return nil, nil
		},
	})

	out, err := reg.Validate(context.Background(), outer, map[string]any{
		"inner": []any{map[string]any{"x": "a"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"x": "a", "normalized": true}}, out["inner"])
}

func TestValidate_FieldReplacementWinsOverNestedObjectResult(t *testing.T) {
	reg := NewRegistry()
	inner := reg.InputObject(InputObjectConfig{
		Name:   "Replaceable",
		Fields: []InputField{{Name: "x", Type: graphql.String}},
		Validate: func(_ context.Context, in map[string]any) (map[string]any, error) {
			return map[string]any{"x": "from-object"}, nil
		},
	})
	outer := reg.InputObject(InputObjectConfig{
		Name: "Holder",
		Fields: []InputField{{Name: "inner", Type: inner, Validate: func(_ context.Context, v any, _ map[string]any) (any, error) {
			return map[string]any{"x": "from-field"}, nil
		}}},
	})

	out, err := reg.Validate(context.Background(), outer, map[string]any{
		"inner": map[string]any{"x": "raw"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": "from-field"}, out["inner"])
}

// newItemHolder registers Holder.items: [Item] with the given field rule on
// items. Item's object validator tags every element it settles.
func newItemHolder(reg *Registry, items FieldFunc) *graphql.InputObject {
	item := reg.InputObject(InputObjectConfig{
		Name:   "Item",
		Fields: []InputField{{Name: "n", Type: graphql.Int}},
		Validate: func(_ context.Context, in map[string]any) (map[string]any, error) {
			return map[string]any{"n": in["n"], "settled": true}, nil
		},
	})
	return reg.InputObject(InputObjectConfig{
		Name:   "Holder",
		Fields: []InputField{{Name: "items", Type: graphql.NewList(item), Validate: items}},
	})
}

func itemsInput(ns ...int) map[string]any {
	items := make([]any, len(ns))
	for i, n := range ns {
		items[i] = map[string]any{"n": n}
	}
	return map[string]any{"items": items}
}

func TestValidate_ListFieldReplacement(t *testing.T) {
	t.Run("reordered in place", func(t *testing.T) {
		reg := NewRegistry()
		holder := newItemHolder(reg, func(_ context.Context, v any, _ map[string]any) (any, error) {
			items := v.([]any)
			sort.Slice(items, func(i, j int) bool {
				return items[i].(map[string]any)["n"].(int) < items[j].(map[string]any)["n"].(int)
			})
			return items, nil
		})

		out, err := reg.Validate(context.Background(), holder, itemsInput(3, 1, 2))
		require.NoError(t, err)
		assert.Equal(t, []any{
			map[string]any{"n": 1, "settled": true},
			map[string]any{"n": 2, "settled": true},
			map[string]any{"n": 3, "settled": true},
		}, out["items"])
	})

	t.Run("element replaced in place", func(t *testing.T) {
		reg := NewRegistry()
		holder := newItemHolder(reg, func(_ context.Context, v any, _ map[string]any) (any, error) {
			items := v.([]any)
			items[1] = map[string]any{"n": 99}
			return items, nil
		})

		out, err := reg.Validate(context.Background(), holder, itemsInput(3, 1, 2))
		require.NoError(t, err)
		assert.Equal(t, []any{
			map[string]any{"n": 3, "settled": true},
			map[string]any{"n": 99},
			map[string]any{"n": 2, "settled": true},
		}, out["items"])
	})

	t.Run("freshly allocated slice", func(t *testing.T) {
		reg := NewRegistry()
		holder := newItemHolder(reg, func(_ context.Context, v any, _ map[string]any) (any, error) {
			items := v.([]any)
			return []any{items[2], items[0]}, nil
		})

		out, err := reg.Validate(context.Background(), holder, itemsInput(3, 1, 2))
		require.NoError(t, err)
		assert.Equal(t, []any{
			map[string]any{"n": 2},
			map[string]any{"n": 3},
		}, out["items"])
	})

	t.Run("returned unchanged", func(t *testing.T) {
		reg := NewRegistry()
		holder := newItemHolder(reg, func(_ context.Context, v any, _ map[string]any) (any, error) {
			return v, nil
		})

		out, err := reg.Validate(context.Background(), holder, itemsInput(3, 1))
		require.NoError(t, err)
		assert.Equal(t, []any{
			map[string]any{"n": 3, "settled": true},
			map[string]any{"n": 1, "settled": true},
		}, out["items"])
	})
}

func TestValidate_Idempotent(t *testing.T) {
	f := newFixture(t)
	input := map[string]any{
		"email":   " ann7@x.com ",
		"people":  []any{map[string]any{"theName": " ann ", "theAge": 7}},
		"numbers": []any{1, 2, 3},
	}

	first, agg := f.validate(t, input)
	require.Nil(t, agg)
	second, agg := f.validate(t, first)
	require.Nil(t, agg)

	assert.Equal(t, first, second)
}

// =============================================================================
// Fatal errors
// =============================================================================

func TestValidate_NonValidationErrorAborts(t *testing.T) {
	boom := errors.New("database unavailable")
	reg := NewRegistry()
	calls := 0
	obj := reg.InputObject(InputObjectConfig{
		Name: "Lookup",
		Fields: []InputField{
			{Name: "a", Type: graphql.String, Validate: func(context.Context, any, map[string]any) (any, error) {
				return nil, boom
			}},
			{Name: "b", Type: graphql.String, Validate: func(_ context.Context, v any, _ map[string]any) (any, error) {
				calls++
				return v, nil
			}},
		},
	})

	_, err := reg.Validate(context.Background(), obj, map[string]any{"a": "1", "b": "2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, calls)
}

func TestValidate_ObjectValidatorFatalError(t *testing.T) {
	boom := errors.New("timeout")
	reg := NewRegistry()
	obj := reg.InputObject(InputObjectConfig{
		Name:   "Remote",
		Fields: []InputField{{Name: "a", Type: graphql.String}},
		Validate: func(context.Context, map[string]any) (map[string]any, error) {
			return nil, boom
		},
	})

	_, err := reg.Validate(context.Background(), obj, map[string]any{"a": "1"})
	assert.ErrorIs(t, err, boom)
}

func TestValidate_ContextReachesValidators(t *testing.T) {
	type key struct{}
	reg := NewRegistry()
	var got any
	obj := reg.InputObject(InputObjectConfig{
		Name: "Scoped",
		Fields: []InputField{{Name: "a", Type: graphql.String, Validate: func(ctx context.Context, v any, _ map[string]any) (any, error) {
			got = ctx.Value(key{})
			return v, nil
		}}},
	})

	ctx := context.WithValue(context.Background(), key{}, "tenant-1")
	_, err := reg.Validate(ctx, obj, map[string]any{"a": "x"})
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", got)
}
