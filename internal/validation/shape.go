package validation

import (
	"fmt"
	"sort"

	"github.com/graphql-go/graphql"
)

// Kind is the structural category of a field.
type Kind int

const (
	KindScalar Kind = iota
	KindInput
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "Scalar"
	case KindInput:
		return "Input"
	case KindList:
		return "List"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FieldShape describes the declared type of one input field. Input is set
// for KindInput and Elem for KindList.
type FieldShape struct {
	Name     string
	Kind     Kind
	Required bool
	Input    *InputShape
	Elem     *FieldShape
}

// InputShape is the ordered field list of one input object type.
type InputShape struct {
	Name   string
	Fields []FieldShape
	rules  *Rules
}

// Field returns the shape of the named field.
func (s *InputShape) Field(name string) (FieldShape, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldShape{}, false
}

// HasFieldRule reports whether a validator is registered for the field.
func (s *InputShape) HasFieldRule(name string) bool {
	return s.rules.field(name) != nil
}

// HasObjectRule reports whether a whole-object validator is registered.
func (s *InputShape) HasObjectRule() bool {
	return s.rules.object() != nil
}

// Shape returns the shape of obj. Shapes are memoised, so self-referencing
// input types resolve to a cyclic shape graph instead of recursing forever.
func (r *Registry) Shape(obj *graphql.InputObject) (*InputShape, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inputShape(obj)
}

func (r *Registry) inputShape(obj *graphql.InputObject) (*InputShape, error) {
	if shape, ok := r.shapes[obj]; ok {
		return shape, nil
	}
	if err := obj.Error(); err != nil {
		return nil, fmt.Errorf("input object %s: %w", obj.Name(), err)
	}

	shape := &InputShape{Name: obj.Name(), rules: r.rulesFor(obj.Name())}
	r.shapes[obj] = shape

	defs := obj.Fields()
	names, err := fieldOrder(shape, defs)
	if err != nil {
		delete(r.shapes, obj)
		return nil, err
	}

	shape.Fields = make([]FieldShape, 0, len(names))
	for _, name := range names {
		fs, err := r.fieldShape(name, defs[name].Type)
		if err != nil {
			delete(r.shapes, obj)
			return nil, err
		}
		shape.Fields = append(shape.Fields, fs)
	}
	return shape, nil
}

func (r *Registry) fieldShape(name string, t graphql.Type) (FieldShape, error) {
	fs := FieldShape{Name: name}
	if nn, ok := t.(*graphql.NonNull); ok {
		fs.Required = true
		t = nn.OfType
	}

	switch tt := t.(type) {
	case *graphql.List:
		elem, err := r.fieldShape(name, tt.OfType)
		if err != nil {
			return FieldShape{}, err
		}
		fs.Kind = KindList
		fs.Elem = &elem
	case *graphql.InputObject:
		child, err := r.inputShape(tt)
		if err != nil {
			return FieldShape{}, err
		}
		fs.Kind = KindInput
		fs.Input = child
	default:
		fs.Kind = KindScalar
	}
	return fs, nil
}

// fieldOrder lists the declared fields: explicit order first, then the rest by
// name. graphql-go keeps input fields in a map, so declaration order only
// exists where the registry recorded it.
func fieldOrder(shape *InputShape, defs graphql.InputObjectFieldMap) ([]string, error) {
	rules := shape.rules
	seen := make(map[string]bool, len(defs))
	names := make([]string, 0, len(defs))

	if rules != nil {
		for _, name := range rules.Order {
			if _, ok := defs[name]; !ok {
				return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, shape.Name, name)
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		for name := range rules.Fields {
			if _, ok := defs[name]; !ok {
				return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, shape.Name, name)
			}
		}
	}

	rest := make([]string, 0, len(defs))
	for name := range defs {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...), nil
}
