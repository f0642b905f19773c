package schema

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/barisgit/fluxdoc/internal/annotations"
	"github.com/barisgit/fluxdoc/internal/diag"
	"github.com/barisgit/fluxdoc/internal/logging"
	"github.com/barisgit/fluxdoc/internal/params"
	"github.com/barisgit/fluxdoc/internal/registry"
	"github.com/barisgit/fluxdoc/internal/symbols"
)

// RequestResolver derives schemas from the `validate` metadata of request types.
// Types without metadata fall back to their static structure so that no request
// reference is left dangling.
type RequestResolver struct {
	table    *symbols.Table
	registry *registry.Registry
	loader   *registry.Loader
	static   *ResponseResolver
}

// NewRequestResolver creates a resolver registering metadata into reg.
func NewRequestResolver(table *symbols.Table, reg *registry.Registry, log *logging.Logger) *RequestResolver {
	return &RequestResolver{
		table:    table,
		registry: reg,
		loader:   registry.NewLoader(table, reg, log),
		static:   NewResponseResolver(table),
	}
}

// Registry returns the metadata registry the resolver reads.
func (r *RequestResolver) Registry() *registry.Registry { return r.registry }

// Resolve loads the defining files of names and returns one schema per registered
// type, plus structural schemas for the names and nested types that carry no
// validation metadata.
func (r *RequestResolver) Resolve(ctx context.Context, names ...string) ([]*Resolved, error) {
	for _, name := range names {
		if _, ok := r.table.Lookup(name); !ok {
			return nil, diag.UnresolvableType(name, "")
		}
	}
	if err := r.loader.Load(ctx, names); err != nil {
		return nil, err
	}

	var (
		out     []*Resolved
		have    = make(map[string]bool)
		missing = append([]string(nil), names...)
	)
	for _, name := range r.registry.Names() {
		t, _ := r.registry.Lookup(name)
		res, refs := r.fromMetadata(t)
		out = append(out, res)
		have[name] = true
		missing = append(missing, refs...)
	}

	var fallback []string
	for _, name := range missing {
		if !have[name] {
			have[name] = true
			fallback = append(fallback, name)
		}
	}
	if len(fallback) == 0 {
		return out, nil
	}

	static, err := r.static.Resolve(ctx, fallback...)
	if err != nil {
		return nil, err
	}
	for _, res := range static {
		if _, registered := r.registry.Lookup(res.Name); !registered {
			out = append(out, res)
		}
	}
	return out, nil
}

// fromMetadata builds the schema of a registered type and returns the declared
// types its properties reference.
func (r *RequestResolver) fromMetadata(t *registry.Type) (*Resolved, []string) {
	var refs []string
	sh := &shaper{table: r.table, ref: func(name string) { refs = append(refs, name) }}

	res := &Resolved{
		Name:   t.Name,
		Schema: &huma.Schema{Type: huma.TypeObject, Properties: map[string]*huma.Schema{}},
	}
	for _, field := range t.Fields {
		prop := sh.schemaFor(field.Type)
		applyRules(prop, field.Rules.Field)
		if prop.Type == huma.TypeArray {
			applyRules(prop.Items, field.Rules.Dive)
		}
		if desc, ok := annotations.Find(field.Docs, "description", false); ok && prop.Ref == "" {
			prop.Description = desc.Text
		}

		res.Schema.Properties[field.Name] = prop
		res.Fields = append(res.Fields, field.Name)
		if field.Rules.Required() {
			res.Schema.Required = append(res.Schema.Required, field.Name)
		}
	}
	return res, refs
}

// Composite returns the allOf schema of a body made of several types, or nil for a
// single type body.
func Composite(body *params.BodyBinding) *Resolved {
	if len(body.Tokens) < 2 {
		return nil
	}
	schema := &huma.Schema{}
	for _, tok := range body.Tokens {
		schema.AllOf = append(schema.AllOf, &huma.Schema{Ref: Ref(tok)})
	}
	return &Resolved{Name: body.TypeName, Schema: schema}
}

// Parameter is a named parameter component.
type Parameter struct {
	Name  string
	Param *huma.Param
}

// Parameters expands a path or query binding into one parameter per validated
// field, each pointing at the field's slot in the type's schema.
func (r *RequestResolver) Parameters(b params.Binding) ([]Parameter, error) {
	t, ok := r.registry.Lookup(b.TypeName)
	if !ok {
		return nil, diag.InvalidParameterDto(b.TypeName, b.OperationID, b.Location)
	}

	out := make([]Parameter, 0, len(t.Fields))
	for _, field := range t.Fields {
		out = append(out, Parameter{
			Name: t.Name + "-" + field.Name,
			Param: &huma.Param{
				Name:     field.Name,
				In:       string(b.Category),
				Required: field.Rules.Required(),
				Schema:   &huma.Schema{Ref: Ref(t.Name) + "/properties/" + field.Name},
			},
		})
	}
	return out, nil
}
