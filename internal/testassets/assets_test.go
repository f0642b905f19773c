package testassets

import (
	"embed"
	"testing"
)

// Safety test to ensure other tests don't confuse the tester if the fixture projects are removed
func TestAssets(t *testing.T) {
	if Projects == (embed.FS{}) {
		t.Fatal("Projects is empty, check if you have accidentally removed the testdata folder in internal/testassets")
	}

	requiredFiles := []string{
		"testdata/orders/orders.go",
		"testdata/orders/dto.go",
		"testdata/users/users.go",
	}

	for _, file := range requiredFiles {
		if _, err := Projects.ReadFile(file); err != nil {
			t.Errorf("Projects does not contain the expected file: %s", file)
		}
	}
}
