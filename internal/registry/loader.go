package registry

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/barisgit/fluxdoc/internal/logging"
	"github.com/barisgit/fluxdoc/internal/symbols"
)

// Loader fills a Registry from the files of a symbol table.
type Loader struct {
	table *symbols.Table
	reg   *Registry
	log   *logging.Logger
}

// NewLoader creates a loader registering into reg.
func NewLoader(table *symbols.Table, reg *Registry, log *logging.Logger) *Loader {
	return &Loader{table: table, reg: reg, log: log}
}

// Load loads the defining files of names concurrently, then the files of every
// declared type their validated fields reference, until nothing new is reached.
// Names without a declaration are ignored.
func (l *Loader) Load(ctx context.Context, names []string) error {
	pending := l.files(names)
	for len(pending) > 0 {
		var (
			mu   sync.Mutex
			refs []string
		)
		g, gctx := errgroup.WithContext(ctx)
		for _, file := range pending {
			if !l.reg.markLoaded(file) {
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				found, err := l.loadFile(file)
				if err != nil {
					return err
				}
				mu.Lock()
				refs = append(refs, found...)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		pending = l.files(refs)
	}
	return nil
}

// files returns the not yet loaded defining files of names, sorted.
func (l *Loader) files(names []string) []string {
	seen := make(map[string]struct{})
	for _, name := range names {
		decl, ok := l.table.Lookup(name)
		if !ok || l.reg.Loaded(decl.File) {
			continue
		}
		seen[decl.File] = struct{}{}
	}
	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

func (l *Loader) loadFile(path string) ([]string, error) {
	f, ok := l.table.File(path)
	if !ok {
		return nil, fmt.Errorf("file %s is not part of the analyzed sources", path)
	}

	var refs []string
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			t, ok := Extract(ts.Name.Name, path, st)
			if !ok {
				continue
			}
			l.reg.Register(t)
			l.log.Debug("Registered validation metadata for %s (%d fields)", t.Name, len(t.Fields))

			for _, field := range t.Fields {
				for _, name := range TypeNames(field.Type) {
					if _, declared := l.table.Lookup(name); declared {
						refs = append(refs, name)
					}
				}
			}
		}
	}
	return refs, nil
}

// TypeNames returns every named type mentioned in a type expression, with package
// qualifiers removed.
func TypeNames(expr ast.Expr) []string {
	var names []string
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch e := e.(type) {
		case *ast.Ident:
			names = append(names, e.Name)
		case *ast.SelectorExpr:
			names = append(names, e.Sel.Name)
		case *ast.StarExpr:
			walk(e.X)
		case *ast.ParenExpr:
			walk(e.X)
		case *ast.ArrayType:
			walk(e.Elt)
		case *ast.MapType:
			walk(e.Key)
			walk(e.Value)
		case *ast.IndexExpr:
			walk(e.X)
			walk(e.Index)
		case *ast.IndexListExpr:
			walk(e.X)
			for _, idx := range e.Indices {
				walk(idx)
			}
		case *ast.StructType:
			for _, f := range e.Fields.List {
				walk(f.Type)
			}
		}
	}
	walk(expr)
	return names
}
