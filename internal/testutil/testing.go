package testutil

import (
	"io/fs"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/barisgit/fluxdoc/internal/testassets"
)

// CopyProject copies the fixture project name into a temporary directory, adds a
// go.mod for module example.com/<name> and returns the directory.
func CopyProject(t *testing.T, name string) string {
	t.Helper()
	root := t.TempDir()
	base := path.Join("testdata", name)

	err := fs.WalkDir(testassets.Projects, base, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := testassets.Projects.ReadFile(p)
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(p, base+"/")
		return writeFile(filepath.Join(root, filepath.FromSlash(rel)), string(data))
	})
	if err != nil {
		t.Fatalf("Failed to copy fixture project %s: %v", name, err)
	}

	WriteFiles(t, root, map[string]string{"go.mod": "module example.com/" + name + "\n\ngo 1.24\n"})
	return root
}

// WriteFiles writes files relative to root, creating directories as needed.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := writeFile(filepath.Join(root, filepath.FromSlash(name)), content); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

func writeFile(p, content string) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(content), 0o644)
}

// HTTPTestCase is an expected response of a handler.
type HTTPTestCase struct {
	Name                string
	Path                string
	ExpectedStatus      int
	ExpectedBodyContent string
	ExpectedContentType string
}

// ValidateResponse checks status, content type and body of a recorded response.
func ValidateResponse(t *testing.T, testCase HTTPTestCase, w *httptest.ResponseRecorder) {
	t.Helper()

	if w.Code != testCase.ExpectedStatus {
		t.Errorf("Expected status %d, got %d", testCase.ExpectedStatus, w.Code)
	}

	contentType := w.Header().Get("Content-Type")
	if !strings.Contains(contentType, testCase.ExpectedContentType) {
		t.Errorf("Expected Content-Type to contain '%s', got '%s'", testCase.ExpectedContentType, contentType)
	}

	if body := w.Body.String(); !strings.Contains(body, testCase.ExpectedBodyContent) {
		t.Errorf("Expected body to contain '%s', got '%s'", testCase.ExpectedBodyContent, body)
	}
}
