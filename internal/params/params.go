// Package params classifies the inputs of an endpoint method into path, query and
// body bindings backed by declared types.
package params

import (
	"go/ast"
	"go/types"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/barisgit/fluxdoc/internal/annotations"
	"github.com/barisgit/fluxdoc/internal/diag"
	"github.com/barisgit/fluxdoc/internal/routes"
	"github.com/barisgit/fluxdoc/internal/symbols"
)

// Category is where a bound input travels.
type Category string

const (
	Path  Category = "path"
	Query Category = "query"
	Body  Category = "body"
)

// directives maps each marker directive to its category.
var directives = []struct {
	name     string
	category Category
}{
	{"Param", Path},
	{"Query", Query},
	{"Body", Body},
}

var tokenSeparator = regexp.MustCompile(`[&|]`)

// Binding ties a declared type to one operation input.
type Binding struct {
	TypeName    string
	Category    Category
	OperationID string
	Path        string
	Method      string
	Param       string
	Location    diag.Location
}

// BodyBinding is the request body input. Name joins the type tokens with "-".
type BodyBinding struct {
	Binding
	Tokens []string
}

// Classification is the classified input set of one endpoint.
type Classification struct {
	Endpoint *routes.Endpoint
	Path     []Binding
	Query    []Binding
	Body     *BodyBinding
	// Unbound lists marker arguments that name no parameter of the method.
	Unbound []string
}

// Bindings returns the path bindings followed by the query bindings.
func (c *Classification) Bindings() []Binding {
	return append(append([]Binding(nil), c.Path...), c.Query...)
}

// Classify binds the parameters marked by @Param, @Query and @Body. For each
// category only the first marked parameter in signature order counts.
func Classify(table *symbols.Table, ep *routes.Endpoint) (*Classification, error) {
	var names []string
	marked := make(map[string][]Category)
	for _, a := range annotations.All(ep.Docs) {
		for _, d := range directives {
			if a.Name == d.name && a.HasArgs {
				names = append(names, a.Arg())
				marked[a.Arg()] = append(marked[a.Arg()], d.category)
			}
		}
	}

	c := &Classification{Endpoint: ep}
	taken := make(map[Category]bool)
	declared := make(map[string]bool)

	for _, field := range ep.Method.Func.Type.Params.List {
		for _, name := range field.Names {
			declared[name.Name] = true
			for _, category := range marked[name.Name] {
				if taken[category] {
					continue
				}
				taken[category] = true

				loc := table.Location(name.Pos())
				tokens := Tokens(field.Type)
				if len(tokens) == 0 {
					return nil, diag.MissingParameterType(name.Name, loc)
				}

				base := Binding{
					Category:    category,
					OperationID: ep.OperationID,
					Path:        ep.Path,
					Method:      ep.Verb,
					Param:       name.Name,
					Location:    loc,
				}
				switch category {
				case Body:
					base.TypeName = strings.Join(tokens, "-")
					c.Body = &BodyBinding{Binding: base, Tokens: tokens}
				default:
					for _, tok := range tokens {
						b := base
						b.TypeName = tok
						if category == Path {
							c.Path = append(c.Path, b)
						} else {
							c.Query = append(c.Query, b)
						}
					}
				}
			}
		}
	}
	c.Unbound = lo.Uniq(lo.Reject(names, func(n string, _ int) bool { return declared[n] }))
	return c, nil
}

// Tokens splits the type text of expr into declared type names.
func Tokens(expr ast.Expr) []string {
	parts := tokenSeparator.Split(TypeText(expr), -1)
	return lo.Uniq(lo.Compact(lo.Map(parts, func(p string, _ int) string {
		return strings.TrimSpace(p)
	})))
}

// TypeText renders a type expression with pointers and package qualifiers removed.
// An anonymous struct made only of embedded types renders as "A & B"; empty
// structs, interfaces and any render as "".
func TypeText(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return TypeText(e.X)
	case *ast.ParenExpr:
		return TypeText(e.X)
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.IndexExpr:
		return TypeText(e.X)
	case *ast.IndexListExpr:
		return TypeText(e.X)
	case *ast.Ident:
		if e.Name == "any" {
			return ""
		}
		return e.Name
	case *ast.InterfaceType:
		return ""
	case *ast.StructType:
		var embedded []string
		for _, f := range e.Fields.List {
			if len(f.Names) > 0 {
				return ""
			}
			embedded = append(embedded, TypeText(f.Type))
		}
		return strings.Join(embedded, " & ")
	}
	return types.ExprString(expr)
}
