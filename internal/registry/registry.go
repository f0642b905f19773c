// Package registry holds the validation metadata of struct types whose fields carry
// `validate` tags, loaded per defining file.
package registry

import (
	"go/ast"
	"go/token"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/barisgit/fluxdoc/internal/annotations"
)

// Field is one validated struct field.
type Field struct {
	GoName string
	Name   string
	Type   ast.Expr
	Rules  Rules
	Docs   []annotations.Doc
	Pos    token.Pos
}

// Type is the validation metadata of one struct type.
type Type struct {
	Name   string
	File   string
	Fields []*Field
}

// Field returns the field serialized as name.
func (t *Type) Field(name string) (*Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Registry is safe for concurrent registration.
type Registry struct {
	mu     sync.RWMutex
	types  map[string]*Type
	loaded map[string]bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		types:  make(map[string]*Type),
		loaded: make(map[string]bool),
	}
}

// Register stores t, replacing an earlier registration of the same name.
func (r *Registry) Register(t *Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.Name] = t
}

// Lookup returns the metadata registered for name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Loaded reports whether file has already been loaded.
func (r *Registry) Loaded(file string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded[file]
}

// markLoaded records file and reports whether this call was the first to do so.
func (r *Registry) markLoaded(file string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded[file] {
		return false
	}
	r.loaded[file] = true
	return true
}

// Extract returns the metadata of a struct type, or false when none of its
// fields carry a `validate` tag. Embedded fields and fields serialized as "-" are
// skipped.
func Extract(name, file string, st *ast.StructType) (*Type, bool) {
	t := &Type{Name: name, File: file}
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 || f.Tag == nil {
			continue
		}
		raw, err := strconv.Unquote(f.Tag.Value)
		if err != nil {
			continue
		}
		tag := reflect.StructTag(raw)
		validate, ok := tag.Lookup("validate")
		if !ok || validate == "-" {
			continue
		}
		jsonName, _, _ := strings.Cut(tag.Get("json"), ",")
		if jsonName == "-" {
			continue
		}

		docs := annotations.Parse(f.Doc, f.Comment)
		for _, ident := range f.Names {
			field := &Field{
				GoName: ident.Name,
				Name:   jsonName,
				Type:   f.Type,
				Rules:  ParseRules(validate),
				Docs:   docs,
				Pos:    ident.Pos(),
			}
			if field.Name == "" {
				field.Name = ident.Name
			}
			t.Fields = append(t.Fields, field)
		}
	}
	return t, len(t.Fields) > 0
}
