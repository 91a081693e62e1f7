package validation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/graphql-go/graphql"
)

var (
	ErrDuplicateType  = errors.New("validation rules already registered for type")
	ErrUnknownField   = errors.New("validation rule references unknown input field")
	ErrNotInputObject = errors.New("argument type is not an input object")
)

// FieldFunc validates one field. value is the field value after nested
// validation; siblings holds the other values of the same object and must not
// be modified. The returned value replaces the field value. Returning an
// Error marks the field invalid; any other error aborts validation.
type FieldFunc func(ctx context.Context, value any, siblings map[string]any) (any, error)

// ObjectFunc validates a whole input object after all of its fields passed.
// A non-nil result replaces the object.
type ObjectFunc func(ctx context.Context, input map[string]any) (map[string]any, error)

// Rules attaches validators to an input type defined outside the registry.
// Order lists fields in the order they should be visited; fields not listed
// are visited afterwards by name.
type Rules struct {
	Fields map[string]FieldFunc
	Object ObjectFunc
	Order  []string
}

func (r *Rules) field(name string) FieldFunc {
	if r == nil {
		return nil
	}
	return r.Fields[name]
}

func (r *Rules) object() ObjectFunc {
	if r == nil {
		return nil
	}
	return r.Object
}

// InputField declares one field of an input object built by the registry.
type InputField struct {
	Name         string
	Type         graphql.Input
	DefaultValue any
	Description  string
	Validate     FieldFunc
}

// InputObjectConfig declares an input object together with its validators.
// FieldsThunk may be used instead of Fields for self-referencing types; it
// must not define new types on the registry.
type InputObjectConfig struct {
	Name        string
	Description string
	Fields      []InputField
	FieldsThunk func() []InputField
	Validate    ObjectFunc
}

type inputDef struct {
	cfg    InputObjectConfig
	once   sync.Once
	fields []InputField
	rules  *Rules
}

func (d *inputDef) resolve() {
	d.once.Do(func() {
		d.fields = d.cfg.Fields
		if d.cfg.FieldsThunk != nil {
			d.fields = d.cfg.FieldsThunk()
		}
		d.rules = &Rules{Fields: make(map[string]FieldFunc), Object: d.cfg.Validate}
		for _, f := range d.fields {
			d.rules.Order = append(d.rules.Order, f.Name)
			if f.Validate != nil {
				d.rules.Fields[f.Name] = f.Validate
			}
		}
	})
}

func (d *inputDef) graphqlFields() graphql.InputObjectConfigFieldMap {
	d.resolve()
	fields := make(graphql.InputObjectConfigFieldMap, len(d.fields))
	for _, f := range d.fields {
		fields[f.Name] = &graphql.InputObjectFieldConfig{
			Type:         f.Type,
			DefaultValue: f.DefaultValue,
			Description:  f.Description,
		}
	}
	return fields
}

// Registry owns validation rules and the input shapes derived from them. It
// is populated while the schema is defined and only read afterwards.
type Registry struct {
	mu     sync.Mutex
	defs   map[string]*inputDef
	rules  map[string]*Rules
	shapes map[*graphql.InputObject]*InputShape
	codes  map[string]struct{}
}

// NewRegistry returns an empty registry knowing the built-in error codes.
func NewRegistry() *Registry {
	r := &Registry{
		defs:   make(map[string]*inputDef),
		rules:  make(map[string]*Rules),
		shapes: make(map[*graphql.InputObject]*InputShape),
		codes:  make(map[string]struct{}),
	}
	r.RegisterCode(builtinCodes...)
	return r
}

// InputObject defines a graphql-go input object whose field order and
// validators are recorded in the registry.
func (r *Registry) InputObject(cfg InputObjectConfig) *graphql.InputObject {
	def := &inputDef{cfg: cfg}

	r.mu.Lock()
	r.defs[cfg.Name] = def
	r.mu.Unlock()

	var fields interface{}
	if cfg.FieldsThunk != nil {
		fields = graphql.InputObjectConfigFieldMapThunk(def.graphqlFields)
	} else {
		fields = def.graphqlFields()
	}

	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        cfg.Name,
		Description: cfg.Description,
		Fields:      fields,
	})
}

// Register attaches rules to an input type defined elsewhere.
func (r *Registry) Register(typeName string, rules Rules) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[typeName]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, typeName)
	}
	if _, ok := r.defs[typeName]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, typeName)
	}
	r.rules[typeName] = &rules
	return nil
}

// RegisterCode adds codes to the list reported by Codes.
func (r *Registry) RegisterCode(codes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range codes {
		r.codes[c] = struct{}{}
	}
}

// Codes returns every registered error code, sorted.
func (r *Registry) Codes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.codes))
	for c := range r.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// rulesFor must be called with r.mu held.
func (r *Registry) rulesFor(typeName string) *Rules {
	if def, ok := r.defs[typeName]; ok {
		def.resolve()
		return def.rules
	}
	return r.rules[typeName]
}
