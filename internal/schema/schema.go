// Package schema resolves declared Go types into JSON schemas. Request types are
// read from their validation metadata, response types from their static structure.
package schema

import (
	"context"
	"go/ast"
	"reflect"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/samber/lo"

	"github.com/barisgit/fluxdoc/internal/diag"
	"github.com/barisgit/fluxdoc/internal/params"
	"github.com/barisgit/fluxdoc/internal/symbols"
)

// RefPrefix is the location of schema components.
const RefPrefix = "#/components/schemas/"

// Ref returns the reference to the schema component name.
func Ref(name string) string { return RefPrefix + name }

// Resolved is the schema of one declared type and its property names in
// declaration order.
type Resolved struct {
	Name   string
	Schema *huma.Schema
	Fields []string
}

// Resolver turns declared type names into schema components. A single call may
// return more entries than names when nested types are resolved too.
type Resolver interface {
	Resolve(ctx context.Context, names ...string) ([]*Resolved, error)
}

// Require fails with an UnresolvableTypeError when name is not declared.
func Require(table *symbols.Table, name, usedIn string, loc diag.Location) error {
	if _, ok := table.Lookup(name); !ok {
		return diag.UnresolvableType(name, usedIn, loc)
	}
	return nil
}

// ReturnType returns the name of the first non-error result of a method, with
// pointers and package qualifiers removed. It returns "" when the method has no
// content to respond with.
func ReturnType(ft *ast.FuncType) string {
	if ft.Results == nil {
		return ""
	}
	for _, field := range ft.Results.List {
		if ident, ok := field.Type.(*ast.Ident); ok && ident.Name == "error" {
			continue
		}
		return params.TypeText(field.Type)
	}
	return ""
}

// shaper converts Go type expressions into schemas. Declared struct types become
// references and are reported through ref.
type shaper struct {
	table *symbols.Table
	ref   func(name string)
}

var builtins = map[string]func() *huma.Schema{
	"string":  func() *huma.Schema { return &huma.Schema{Type: huma.TypeString} },
	"bool":    func() *huma.Schema { return &huma.Schema{Type: huma.TypeBoolean} },
	"int":     func() *huma.Schema { return &huma.Schema{Type: huma.TypeInteger, Format: "int64"} },
	"int8":    func() *huma.Schema { return &huma.Schema{Type: huma.TypeInteger, Format: "int32"} },
	"int16":   func() *huma.Schema { return &huma.Schema{Type: huma.TypeInteger, Format: "int32"} },
	"int32":   func() *huma.Schema { return &huma.Schema{Type: huma.TypeInteger, Format: "int32"} },
	"rune":    func() *huma.Schema { return &huma.Schema{Type: huma.TypeInteger, Format: "int32"} },
	"int64":   func() *huma.Schema { return &huma.Schema{Type: huma.TypeInteger, Format: "int64"} },
	"uint":    func() *huma.Schema { return &huma.Schema{Type: huma.TypeInteger, Format: "int64"} },
	"uint8":   func() *huma.Schema { return &huma.Schema{Type: huma.TypeInteger, Format: "int32"} },
	"byte":    func() *huma.Schema { return &huma.Schema{Type: huma.TypeInteger, Format: "int32"} },
	"uint16":  func() *huma.Schema { return &huma.Schema{Type: huma.TypeInteger, Format: "int32"} },
	"uint32":  func() *huma.Schema { return &huma.Schema{Type: huma.TypeInteger, Format: "int64"} },
	"uint64":  func() *huma.Schema { return &huma.Schema{Type: huma.TypeInteger, Format: "int64"} },
	"float32": func() *huma.Schema { return &huma.Schema{Type: huma.TypeNumber, Format: "float"} },
	"float64": func() *huma.Schema { return &huma.Schema{Type: huma.TypeNumber, Format: "double"} },
	"error":   func() *huma.Schema { return &huma.Schema{Type: huma.TypeString} },
	"any":     func() *huma.Schema { return &huma.Schema{} },
}

var qualified = map[string]func() *huma.Schema{
	"time.Time":       func() *huma.Schema { return &huma.Schema{Type: huma.TypeString, Format: "date-time"} },
	"time.Duration":   func() *huma.Schema { return &huma.Schema{Type: huma.TypeInteger, Format: "int64"} },
	"json.RawMessage": func() *huma.Schema { return &huma.Schema{} },
	"uuid.UUID":       func() *huma.Schema { return &huma.Schema{Type: huma.TypeString, Format: "uuid"} },
	"url.URL":         func() *huma.Schema { return &huma.Schema{Type: huma.TypeString, Format: "uri"} },
}

func (s *shaper) schemaFor(expr ast.Expr) *huma.Schema {
	return s.shape(expr, map[string]bool{})
}

func (s *shaper) shape(expr ast.Expr, named map[string]bool) *huma.Schema {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return s.shape(e.X, named)
	case *ast.ParenExpr:
		return s.shape(e.X, named)
	case *ast.IndexExpr:
		return s.shape(e.X, named)
	case *ast.IndexListExpr:
		return s.shape(e.X, named)
	case *ast.Ident:
		return s.named(e.Name, named)
	case *ast.SelectorExpr:
		if pkg, ok := e.X.(*ast.Ident); ok {
			if fn, ok := qualified[pkg.Name+"."+e.Sel.Name]; ok {
				return fn()
			}
		}
		return s.named(e.Sel.Name, named)
	case *ast.ArrayType:
		if ident, ok := e.Elt.(*ast.Ident); ok && ident.Name == "byte" {
			return &huma.Schema{Type: huma.TypeString, ContentEncoding: "base64"}
		}
		return &huma.Schema{Type: huma.TypeArray, Items: s.shape(e.Elt, named)}
	case *ast.MapType:
		return &huma.Schema{Type: huma.TypeObject, AdditionalProperties: s.shape(e.Value, named)}
	case *ast.StructType:
		schema, _ := s.object(e, named)
		return schema
	}
	return &huma.Schema{}
}

// named resolves an identifier: builtins map to their kind, declared structs to a
// reference and other declared types to their underlying kind with any enum values
// from typed constants.
func (s *shaper) named(name string, named map[string]bool) *huma.Schema {
	if fn, ok := builtins[name]; ok {
		return fn()
	}
	decl, ok := s.table.Lookup(name)
	if !ok {
		return &huma.Schema{}
	}

	switch decl.Spec.Type.(type) {
	case *ast.StructType:
		if s.ref != nil {
			s.ref(name)
		}
		return &huma.Schema{Ref: Ref(name)}
	case *ast.InterfaceType:
		return &huma.Schema{}
	}
	if named[name] {
		return &huma.Schema{}
	}

	named[name] = true
	defer delete(named, name)

	schema := s.shape(decl.Spec.Type, named)
	if values := s.table.Enum(name); len(values) > 0 {
		schema.Enum = values
	}
	return schema
}

// object builds an object schema from struct fields the way encoding/json
// serializes them: exported fields under their json names, embedded structs
// flattened, omitempty or pointer fields optional.
func (s *shaper) object(st *ast.StructType, named map[string]bool) (*huma.Schema, []string) {
	schema := &huma.Schema{Type: huma.TypeObject, Properties: map[string]*huma.Schema{}}
	var order []string

	add := func(name string, prop *huma.Schema, required bool) {
		if _, dup := schema.Properties[name]; !dup {
			order = append(order, name)
		}
		schema.Properties[name] = prop
		if required {
			schema.Required = append(schema.Required, name)
		}
	}

	for _, f := range st.Fields.List {
		jsonName, omitEmpty := jsonTag(f.Tag)
		if jsonName == "-" {
			continue
		}
		_, pointer := f.Type.(*ast.StarExpr)

		if len(f.Names) == 0 {
			base := params.TypeText(f.Type)
			if jsonName == "" {
				if embedded, ok := s.embedded(base, named); ok {
					inner, fields := s.object(embedded, lo.Assign(named, map[string]bool{base: true}))
					for _, field := range fields {
						add(field, inner.Properties[field], lo.Contains(inner.Required, field) && !pointer)
					}
					continue
				}
			}
			if !ast.IsExported(base) {
				continue
			}
			if jsonName == "" {
				jsonName = base
			}
			add(jsonName, s.shape(f.Type, named), !omitEmpty && !pointer)
			continue
		}

		for _, ident := range f.Names {
			if !ident.IsExported() {
				continue
			}
			name := jsonName
			if name == "" {
				name = ident.Name
			}
			add(name, s.shape(f.Type, named), !omitEmpty && !pointer)
		}
	}
	return schema, order
}

func (s *shaper) embedded(name string, named map[string]bool) (*ast.StructType, bool) {
	if named[name] {
		return nil, false
	}
	decl, ok := s.table.Lookup(name)
	if !ok {
		return nil, false
	}
	return decl.Struct()
}

// jsonTag returns the json name and whether omitempty is set.
func jsonTag(lit *ast.BasicLit) (string, bool) {
	if lit == nil {
		return "", false
	}
	raw, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	name, opts, _ := strings.Cut(reflect.StructTag(raw).Get("json"), ",")
	return name, strings.Contains(","+opts+",", ",omitempty,")
}
