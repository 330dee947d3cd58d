package registry

import (
	"fmt"
	"slices"

	"github.com/fncall/types"
	"github.com/fncall/validate"
)

// Registry is the process-wide table of callable functions. It is built once
// and never mutated, so lookups need no locking.
type Registry struct {
	funcs map[string]*FunctionDescriptor
	names []string
}

// New validates the descriptors, compiles one validator per descriptor and
// returns the table.
func New(descs ...FunctionDescriptor) (*Registry, error) {
	r := &Registry{funcs: make(map[string]*FunctionDescriptor, len(descs))}
	for _, d := range descs {
		if d.Name == "" {
			return nil, fmt.Errorf("function descriptor without a name")
		}
		if _, ok := r.funcs[d.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, d.Name)
		}
		if d.Callback == nil {
			return nil, fmt.Errorf("function %s has no callback", d.Name)
		}
		declared := make(map[string]bool, len(d.Parameters))
		for _, p := range d.Parameters {
			declared[p.Name] = true
		}
		for _, req := range d.Required {
			if !declared[req] {
				return nil, fmt.Errorf("%w: %s.%s", ErrUnknownRequired, d.Name, req)
			}
		}

		v, err := validate.Compile(d.Schema())
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", d.Name, err)
		}
		desc := d
		desc.Parameters = slices.Clone(d.Parameters)
		desc.Required = slices.Clone(d.Required)
		desc.validator = v
		r.funcs[d.Name] = &desc
		r.names = append(r.names, d.Name)
	}
	slices.Sort(r.names)
	return r, nil
}

func (r *Registry) Lookup(name string) (*FunctionDescriptor, bool) {
	d, ok := r.funcs[name]
	return d, ok
}

// Get is Lookup returning ErrFunctionNotFound for absent names.
func (r *Registry) Get(name string) (*FunctionDescriptor, error) {
	if d, ok := r.Lookup(name); ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
}

// Descriptors returns every function sorted by name.
func (r *Registry) Descriptors() []*FunctionDescriptor {
	out := make([]*FunctionDescriptor, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.funcs[name])
	}
	return out
}

func (r *Registry) Definitions() []types.ToolDefinition {
	defs := make([]types.ToolDefinition, 0, len(r.names))
	for _, d := range r.Descriptors() {
		defs = append(defs, d.Definition())
	}
	return defs
}

func (r *Registry) Names() []string { return slices.Clone(r.names) }
