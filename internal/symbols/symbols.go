// Package symbols indexes every type declared in the analyzed source tree by name.
package symbols

import (
	"go/ast"
	"go/token"
	"strconv"

	"github.com/barisgit/fluxdoc/internal/annotations"
	"github.com/barisgit/fluxdoc/internal/diag"
	"github.com/barisgit/fluxdoc/internal/source"
)

// ControllerDirective marks a type as an endpoint group.
const ControllerDirective = "Controller"

// Decl is one named type declaration.
type Decl struct {
	Name string
	File string
	Gen  *ast.GenDecl
	Spec *ast.TypeSpec
}

// Docs returns the comment groups documenting the declaration, outermost first.
func (d *Decl) Docs() []*ast.CommentGroup {
	var groups []*ast.CommentGroup
	if d.Gen != nil && d.Gen.Doc != nil && d.Gen.Doc != d.Spec.Doc {
		groups = append(groups, d.Gen.Doc)
	}
	if d.Spec.Doc != nil {
		groups = append(groups, d.Spec.Doc)
	}
	return groups
}

// Struct returns the struct body when the declaration is a struct type.
func (d *Decl) Struct() (*ast.StructType, bool) {
	st, ok := d.Spec.Type.(*ast.StructType)
	return st, ok
}

// Pos returns the position of the declared name.
func (d *Decl) Pos() token.Pos { return d.Spec.Name.Pos() }

// Method is a function declared with a receiver.
type Method struct {
	Recv string
	File string
	Func *ast.FuncDecl
}

// Table maps declared type names to their declarations.
type Table struct {
	fset        *token.FileSet
	types       map[string]*Decl
	order       []*Decl
	controllers []*Decl
	methods     map[string][]*Method
	enums       map[string][]any
	files       map[string]*ast.File
}

// New creates an empty table reporting positions through fset.
func New(fset *token.FileSet) *Table {
	t := &Table{fset: fset}
	t.Reset()
	return t
}

// Reset clears every index.
func (t *Table) Reset() {
	t.types = make(map[string]*Decl)
	t.order = nil
	t.controllers = nil
	t.methods = make(map[string][]*Method)
	t.enums = make(map[string][]any)
	t.files = make(map[string]*ast.File)
}

// Build clears the table and indexes every declaration of files.
func Build(fset *token.FileSet, files []*source.File) (*Table, error) {
	t := New(fset)
	for _, f := range files {
		if err := t.AddFile(f); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AddFile indexes the types, methods and typed constants of one file.
func (t *Table) AddFile(f *source.File) error {
	t.files[f.Path] = f.AST

	for _, decl := range f.AST.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			switch d.Tok {
			case token.TYPE:
				for _, spec := range d.Specs {
					ts := spec.(*ast.TypeSpec)
					if err := t.Register(&Decl{Name: ts.Name.Name, File: f.Path, Gen: d, Spec: ts}); err != nil {
						return err
					}
				}
			case token.CONST:
				t.addConsts(d)
			}
		case *ast.FuncDecl:
			if recv := ReceiverName(d); recv != "" {
				t.methods[recv] = append(t.methods[recv], &Method{Recv: recv, File: f.Path, Func: d})
			}
		}
	}
	return nil
}

// Register adds decl, failing when its name is already taken.
func (t *Table) Register(decl *Decl) error {
	if existing, ok := t.types[decl.Name]; ok {
		return diag.DuplicateDeclaration(decl.Name, t.Location(existing.Pos()), t.Location(decl.Pos()))
	}

	t.types[decl.Name] = decl
	t.order = append(t.order, decl)
	if _, ok := annotations.Find(annotations.Parse(decl.Docs()...), ControllerDirective, false); ok {
		t.controllers = append(t.controllers, decl)
	}
	return nil
}

// Lookup returns the declaration named name.
func (t *Table) Lookup(name string) (*Decl, bool) {
	d, ok := t.types[name]
	return d, ok
}

// Decls returns every declaration in registration order.
func (t *Table) Decls() []*Decl { return t.order }

// Controllers returns the declarations carrying the controller directive.
func (t *Table) Controllers() []*Decl { return t.controllers }

// Methods returns the methods declared on the named type in source order.
func (t *Table) Methods(typeName string) []*Method { return t.methods[typeName] }

// Enum returns the typed constant values declared for typeName.
func (t *Table) Enum(typeName string) []any { return t.enums[typeName] }

// File returns the parsed file at path.
func (t *Table) File(path string) (*ast.File, bool) {
	f, ok := t.files[path]
	return f, ok
}

// FileSet returns the position table of the indexed files.
func (t *Table) FileSet() *token.FileSet { return t.fset }

// Location converts pos for diagnostics.
func (t *Table) Location(pos token.Pos) diag.Location {
	return diag.At(t.fset, pos)
}

// Len returns the number of declared types.
func (t *Table) Len() int { return len(t.types) }

// ReceiverName returns the base type name of a method receiver, or "" for plain
// functions.
func ReceiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	expr := fn.Recv.List[0].Type
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return ""
		}
	}
}

// addConsts records typed constants as enum members. Implicitly repeated specs
// inherit the previous type, and iota based values take their index in the block.
func (t *Table) addConsts(d *ast.GenDecl) {
	var (
		typeName string
		iotaExpr bool
	)
	for i, spec := range d.Specs {
		vs := spec.(*ast.ValueSpec)
		if vs.Type != nil {
			ident, ok := vs.Type.(*ast.Ident)
			if !ok {
				typeName = ""
				continue
			}
			typeName = ident.Name
		} else if len(vs.Values) > 0 {
			typeName = ""
		}
		if len(vs.Values) > 0 {
			iotaExpr = isIota(vs.Values[0])
		}
		if typeName == "" {
			continue
		}

		for j := range vs.Names {
			if vs.Names[j].Name == "_" {
				continue
			}
			switch {
			case len(vs.Values) == 0 && iotaExpr, len(vs.Values) > j && isIota(vs.Values[j]):
				t.enums[typeName] = append(t.enums[typeName], int64(i))
			case len(vs.Values) > j:
				if v, ok := literalValue(vs.Values[j]); ok {
					t.enums[typeName] = append(t.enums[typeName], v)
				}
			}
		}
	}
}

func isIota(expr ast.Expr) bool {
	ident, ok := expr.(*ast.Ident)
	return ok && ident.Name == "iota"
}

func literalValue(expr ast.Expr) (any, bool) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok {
		return nil, false
	}
	switch lit.Kind {
	case token.STRING:
		s, err := strconv.Unquote(lit.Value)
		return s, err == nil
	case token.INT:
		n, err := strconv.ParseInt(lit.Value, 0, 64)
		return n, err == nil
	case token.FLOAT:
		f, err := strconv.ParseFloat(lit.Value, 64)
		return f, err == nil
	}
	return nil, false
}
