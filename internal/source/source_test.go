package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/barisgit/fluxdoc/internal/diag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadHonorsExclusions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "internal/api/users.go", "package api\n")
	writeFile(t, root, "internal/api/users_test.go", "package api\n")
	writeFile(t, root, "vendor/x/x.go", "package x\n")
	writeFile(t, root, "README.md", "# readme\n")

	set, err := NewSet(root, nil)
	require.NoError(t, err)
	require.NoError(t, set.Load())

	var rels []string
	for _, f := range set.Files() {
		rel, err := filepath.Rel(set.Root(), f.Path)
		require.NoError(t, err)
		rels = append(rels, filepath.ToSlash(rel))
		assert.NotNil(t, f.AST)
	}
	assert.Equal(t, []string{"internal/api/users.go", "main.go"}, rels)
}

func TestLoadCustomGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.go", "package src\n")
	writeFile(t, root, "other/b.go", "package other\n")

	set, err := NewSet(root, []string{"src/**/*.go"})
	require.NoError(t, err)
	require.NoError(t, set.Load())
	assert.Equal(t, 1, set.Len())
}

func TestLoadReportsParseErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "broken.go", "package broken\nfunc {\n")

	set, err := NewSet(root, nil)
	require.NoError(t, err)

	err = set.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrSourceParse))
}

func TestUpdateSingleFile(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.go", "package a\n\ntype A struct{}\n")

	set, err := NewSet(root, nil)
	require.NoError(t, err)
	require.NoError(t, set.Load())
	require.Len(t, set.Files()[0].AST.Decls, 1)

	writeFile(t, root, "a.go", "package a\n\ntype A struct{}\n\ntype B struct{}\n")
	require.NoError(t, set.Update(path))
	assert.Len(t, set.Files()[0].AST.Decls, 2)

	added := writeFile(t, root, "b.go", "package a\n")
	require.NoError(t, set.Update(added))
	assert.Equal(t, 2, set.Len())

	require.NoError(t, os.Remove(added))
	require.NoError(t, set.Update(added))
	assert.Equal(t, 1, set.Len())
}

func TestUpdateIgnoresExcludedFiles(t *testing.T) {
	root := t.TempDir()
	set, err := NewSet(root, nil)
	require.NoError(t, err)
	require.NoError(t, set.Load())

	path := writeFile(t, root, "a_test.go", "package a\n")
	require.NoError(t, set.Update(path))
	assert.Equal(t, 0, set.Len())
}

func TestMatches(t *testing.T) {
	root := t.TempDir()
	set, err := NewSet(root, []string{"**/*.go", "!**/*_test.go", "!gen/**"})
	require.NoError(t, err)

	testCases := []struct {
		rel  string
		want bool
	}{
		{"main.go", true},
		{"pkg/api/handler.go", true},
		{"pkg/api/handler_test.go", false},
		{"gen/models.go", false},
		{"fluxdoc.yaml", false},
	}
	for _, tc := range testCases {
		t.Run(tc.rel, func(t *testing.T) {
			assert.Equal(t, tc.want, set.Matches(filepath.Join(root, filepath.FromSlash(tc.rel))))
		})
	}

	assert.False(t, set.Matches(filepath.Join(filepath.Dir(root), "outside.go")))
}
