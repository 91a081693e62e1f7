package validation

import (
	"context"
	"errors"
	"reflect"
)

// objectNode is the state of one input object during a run. Each node owns
// value, a fresh copy of its input, until it is handed back to the parent.
// origin is that first copy; set uses it to find where the node sits in the
// parent once field validators have had a chance to move it.
type objectNode struct {
	shape    *InputShape
	path     Path
	value    map[string]any
	origin   map[string]any
	children []*objectNode
	set      func(from, to map[string]any)
	detached bool
}

type walker struct {
	ctx context.Context
	agg *AggregateError
}

func newWalker(ctx context.Context) *walker {
	return &walker{ctx: ctx, agg: &AggregateError{}}
}

// walkObject runs the field phase for one object: nested values first, then
// the field's own validator. Failures never stop sibling fields.
func (w *walker) walkObject(shape *InputShape, input map[string]any, path Path) (*objectNode, error) {
	node := &objectNode{shape: shape, path: path, value: copyMap(input)}
	node.origin = node.value

	for i := range shape.Fields {
		field := &shape.Fields[i]
		raw, ok := node.value[field.Name]
		if !ok || raw == nil {
			continue
		}

		fieldPath := path.Append(Field(field.Name))
		first := len(node.children)
		value, err := w.assemble(node, field, raw, fieldPath, func(from, to map[string]any) {
			if sameMap(node.value[field.Name], from) {
				node.value[field.Name] = to
			}
		})
		if err != nil {
			return nil, err
		}
		node.value[field.Name] = value

		rule := shape.rules.field(field.Name)
		if rule == nil {
			continue
		}
		out, err := rule(w.ctx, value, siblings(node.value, field.Name))
		if err != nil {
			var verr Error
			if !errors.As(err, &verr) {
				return nil, err
			}
			w.agg.add(fieldPath, verr, false)
			continue
		}
		node.value[field.Name] = out

		// A validator that swapped the container drops the nested objects
		// built from the old one.
		if len(node.children) > first && !sameContainer(value, out) {
			for _, child := range node.children[first:] {
				child.detached = true
			}
		}
	}
	return node, nil
}

// assemble copies raw according to fs, recursing into nested objects.
// Objects found below are attached to owner for the object phase.
func (w *walker) assemble(owner *objectNode, fs *FieldShape, raw any, path Path, set func(from, to map[string]any)) (any, error) {
	if raw == nil {
		return nil, nil
	}

	switch fs.Kind {
	case KindInput:
		input, ok := raw.(map[string]any)
		if !ok {
			return raw, nil
		}
		child, err := w.walkObject(fs.Input, input, path)
		if err != nil {
			return nil, err
		}
		child.set = set
		owner.children = append(owner.children, child)
		return child.value, nil

	case KindList:
		items, ok := raw.([]any)
		if !ok {
			return raw, nil
		}
		out := make([]any, len(items))
		// Elements are located by identity, not index, so a validator that
		// reorders the list in place keeps its order.
		put := func(from, to map[string]any) {
			for j := range out {
				if sameMap(out[j], from) {
					out[j] = to
					return
				}
			}
		}
		for i, item := range items {
			v, err := w.assemble(owner, fs.Elem, item, path.Append(Index(i)), put)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	default:
		return raw, nil
	}
}

// settle runs the object phase bottom-up. An object validator only runs when
// nothing at or below its level failed.
func (w *walker) settle(node *objectNode) error {
	before := w.agg.Len()
	for _, child := range node.children {
		if err := w.settle(child); err != nil {
			return err
		}
	}
	if w.agg.Len() > before {
		return nil
	}

	if rule := node.shape.rules.object(); rule != nil {
		out, err := rule(w.ctx, node.value)
		if err != nil {
			var verr Error
			if !errors.As(err, &verr) {
				return err
			}
			w.agg.add(node.path, verr, true)
			return nil
		}
		if out != nil {
			node.value = out
		}
	}

	if node.set != nil && !node.detached {
		node.set(node.origin, node.value)
	}
	return nil
}

// result returns the aggregate, or nil when the run produced no entries.
func (w *walker) result() *AggregateError {
	if w.agg.Len() == 0 {
		return nil
	}
	return w.agg
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func siblings(values map[string]any, except string) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if k != except {
			out[k] = v
		}
	}
	return out
}

// sameMap reports whether v holds the map m itself, not an equal copy.
func sameMap(v any, m map[string]any) bool {
	got, ok := v.(map[string]any)
	if !ok || got == nil || m == nil {
		return false
	}
	return reflect.ValueOf(got).UnsafePointer() == reflect.ValueOf(m).UnsafePointer()
}

func sameContainer(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() || va.Kind() != vb.Kind() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	default:
		return false
	}
}
