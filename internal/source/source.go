// Package source expands the configured glob list and keeps the parsed Go files of
// a project, so a single changed file can be re-parsed without reading the rest.
package source

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/barisgit/fluxdoc/internal/diag"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultGlobs matches every Go file except tests and vendored code.
var DefaultGlobs = []string{"**/*.go", "!**/*_test.go", "!vendor/**"}

// File is one parsed source file.
type File struct {
	Path string
	AST  *ast.File
}

// Set holds the parsed files matched by a glob list under a root directory.
type Set struct {
	mu    sync.RWMutex
	root  string
	globs []string
	fset  *token.FileSet
	files map[string]*ast.File
}

// NewSet creates an empty set rooted at root.
func NewSet(root string, globs []string) (*Set, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root %s: %w", root, err)
	}
	if len(globs) == 0 {
		globs = DefaultGlobs
	}
	return &Set{
		root:  abs,
		globs: append([]string(nil), globs...),
		fset:  token.NewFileSet(),
		files: make(map[string]*ast.File),
	}, nil
}

// Root returns the absolute project root.
func (s *Set) Root() string { return s.root }

// FileSet returns the position table shared by every parsed file.
func (s *Set) FileSet() *token.FileSet { return s.fset }

// SetGlobs replaces the glob list; call Load afterwards to apply it.
func (s *Set) SetGlobs(globs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(globs) == 0 {
		globs = DefaultGlobs
	}
	s.globs = append([]string(nil), globs...)
}

// Load expands the glob list and parses every matched file, replacing any
// previously parsed content.
func (s *Set) Load() error {
	paths, err := s.expand()
	if err != nil {
		return err
	}

	files := make(map[string]*ast.File, len(paths))
	for _, path := range paths {
		f, err := parser.ParseFile(s.fset, path, nil, parser.ParseComments)
		if err != nil {
			return diag.SourceParse(path, err)
		}
		files[path] = f
	}

	s.mu.Lock()
	s.files = files
	s.mu.Unlock()
	return nil
}

// Update re-parses a single file. A file that no longer exists or no longer
// matches the glob list is dropped from the set.
func (s *Set) Update(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	if _, err := os.Stat(abs); errors.Is(err, fs.ErrNotExist) || !s.Matches(abs) {
		s.mu.Lock()
		delete(s.files, abs)
		s.mu.Unlock()
		return nil
	}

	f, err := parser.ParseFile(s.fset, abs, nil, parser.ParseComments)
	if err != nil {
		return diag.SourceParse(abs, err)
	}

	s.mu.Lock()
	s.files[abs] = f
	s.mu.Unlock()
	return nil
}

// Matches reports whether path falls under the glob list.
func (s *Set) Matches(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)

	s.mu.RLock()
	defer s.mu.RUnlock()

	included := false
	for _, pattern := range s.globs {
		if exclude, ok := strings.CutPrefix(pattern, "!"); ok {
			if matched, _ := doublestar.Match(exclude, rel); matched {
				return false
			}
			continue
		}
		if matched, _ := doublestar.Match(pattern, rel); matched {
			included = true
		}
	}
	return included
}

// Files returns the parsed files ordered by path.
func (s *Set) Files() []*File {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]*File, 0, len(s.files))
	for path, f := range s.files {
		files = append(files, &File{Path: path, AST: f})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

// Len returns the number of parsed files.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

func (s *Set) expand() ([]string, error) {
	s.mu.RLock()
	globs := append([]string(nil), s.globs...)
	s.mu.RUnlock()

	fsys := os.DirFS(s.root)
	seen := make(map[string]struct{})
	for _, pattern := range globs {
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob pattern error %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !strings.HasSuffix(m, ".go") {
				continue
			}
			seen[filepath.Join(s.root, filepath.FromSlash(m))] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for path := range seen {
		if s.Matches(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
