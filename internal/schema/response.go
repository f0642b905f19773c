package schema

import (
	"context"
	"go/ast"

	"github.com/danielgtaylor/huma/v2"

	"github.com/barisgit/fluxdoc/internal/diag"
	"github.com/barisgit/fluxdoc/internal/symbols"
)

// ResponseResolver derives schemas from the static declaration of a type,
// independent of any validation metadata.
type ResponseResolver struct {
	table *symbols.Table
}

// NewResponseResolver creates a resolver over table.
func NewResponseResolver(table *symbols.Table) *ResponseResolver {
	return &ResponseResolver{table: table}
}

// Resolve returns a schema for every name followed by the declared types they
// reference, each resolved once.
func (r *ResponseResolver) Resolve(ctx context.Context, names ...string) ([]*Resolved, error) {
	var (
		out   []*Resolved
		queue = append([]string(nil), names...)
		seen  = make(map[string]bool)
	)

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true

		decl, ok := r.table.Lookup(name)
		if !ok {
			return nil, diag.UnresolvableType(name, "")
		}

		sh := &shaper{table: r.table, ref: func(ref string) {
			if !seen[ref] {
				queue = append(queue, ref)
			}
		}}
		out = append(out, sh.declaration(decl))
	}
	return out, nil
}

// declaration resolves decl itself rather than a reference to it.
func (s *shaper) declaration(decl *symbols.Decl) *Resolved {
	res := &Resolved{Name: decl.Name}
	if st, ok := decl.Struct(); ok {
		res.Schema, res.Fields = s.object(st, map[string]bool{decl.Name: true})
		return res
	}
	if _, ok := decl.Spec.Type.(*ast.InterfaceType); ok {
		res.Schema = &huma.Schema{}
		return res
	}
	res.Schema = s.named(decl.Name, map[string]bool{})
	return res
}
