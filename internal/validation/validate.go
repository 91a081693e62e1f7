package validation

import (
	"context"
	"fmt"
	"sort"

	"github.com/graphql-go/graphql"
)

// Validate runs field and whole-object validation over input. It returns
// the transformed input and nil, or the partially transformed input and an
// *AggregateError. Any other error came from a validator and is returned
// unchanged. input is never modified.
func (r *Registry) Validate(ctx context.Context, obj *graphql.InputObject, input map[string]any) (map[string]any, error) {
	shape, err := r.Shape(obj)
	if err != nil {
		return nil, err
	}
	return ValidateShape(ctx, shape, input)
}

// ValidateShape is Validate for an already resolved shape.
func ValidateShape(ctx context.Context, shape *InputShape, input map[string]any) (map[string]any, error) {
	w := newWalker(ctx)
	node, err := w.walkObject(shape, input, nil)
	if err != nil {
		return nil, err
	}
	if w.agg.Len() == 0 {
		if err := w.settle(node); err != nil {
			return nil, err
		}
	}
	if agg := w.result(); agg != nil {
		return node.value, agg
	}
	return node.value, nil
}

// argShape is the validation plan for a field's arguments: every argument
// that is, or contains, an input object, visited by name.
type argShape struct {
	root   *InputShape
	fields []FieldShape
}

func (r *Registry) argumentShape(args graphql.FieldConfigArgument) (*argShape, error) {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	r.mu.Lock()
	defer r.mu.Unlock()

	plan := &argShape{root: &InputShape{}}
	for _, name := range names {
		arg := args[name]
		if arg == nil || arg.Type == nil {
			return nil, fmt.Errorf("argument %s: missing type", name)
		}
		fs, err := r.fieldShape(name, arg.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", name, err)
		}
		if containsInput(&fs) {
			plan.fields = append(plan.fields, fs)
		}
	}
	return plan, nil
}

func containsInput(fs *FieldShape) bool {
	switch fs.Kind {
	case KindInput:
		return true
	case KindList:
		return containsInput(fs.Elem)
	default:
		return false
	}
}

// run validates every planned argument with an empty root path. Errors of
// all arguments are collected before whole-object validation is considered.
func (p *argShape) run(ctx context.Context, args map[string]any) (map[string]any, *AggregateError, error) {
	w := newWalker(ctx)
	root := &objectNode{shape: p.root, value: copyMap(args)}

	for i := range p.fields {
		fs := &p.fields[i]
		raw, ok := root.value[fs.Name]
		if !ok || raw == nil {
			continue
		}
		value, err := w.assemble(root, fs, raw, nil, func(from, to map[string]any) {
			if sameMap(root.value[fs.Name], from) {
				root.value[fs.Name] = to
			}
		})
		if err != nil {
			return nil, nil, err
		}
		root.value[fs.Name] = value
	}

	if w.agg.Len() == 0 {
		if err := w.settle(root); err != nil {
			return nil, nil, err
		}
	}
	return root.value, w.result(), nil
}
