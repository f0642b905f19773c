// Package openapi assembles the analyzed routes and schemas into one OpenAPI 3.1
// document and verifies that every reference in it resolves.
package openapi

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/mod/modfile"

	"github.com/barisgit/fluxdoc/internal/schema"
)

// Version is the OpenAPI version of every generated document.
const Version = "3.1.0"

// Status codes of the responses every document starts with.
const (
	StatusOK        = "200"
	StatusNoContent = "204"
)

// DefaultResponses returns the shared responses configuration is merged over.
func DefaultResponses() map[string]*huma.Response {
	return map[string]*huma.Response{
		"200": {Description: "Successful"},
		"204": {Description: "The response body is empty"},
		"400": {Description: "Bad request"},
		"500": {Description: "Internal server error"},
	}
}

// NewDocument creates an empty document. responses are merged over
// DefaultResponses key by key.
func NewDocument(info *huma.Info, servers []*huma.Server, responses map[string]*huma.Response) *huma.OpenAPI {
	merged := DefaultResponses()
	for code, resp := range responses {
		merged[code] = resp
	}
	if info == nil {
		info = &huma.Info{Title: "API", Version: "1.0.0"}
	}

	return &huma.OpenAPI{
		OpenAPI: Version,
		Info:    info,
		Servers: servers,
		Paths:   map[string]*huma.PathItem{},
		Components: &huma.Components{
			Schemas:       huma.NewMapRegistry(schema.RefPrefix, huma.DefaultSchemaNamer),
			Responses:     merged,
			Parameters:    map[string]*huma.Param{},
			RequestBodies: map[string]*huma.RequestBody{},
		},
	}
}

// ProjectInfo derives document metadata from the go.mod file under root.
func ProjectInfo(root string) (*huma.Info, error) {
	gomod := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(gomod)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", gomod, err)
	}
	f, err := modfile.ParseLax(gomod, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", gomod, err)
	}
	if f.Module == nil {
		return nil, fmt.Errorf("%s declares no module", gomod)
	}

	modulePath := f.Module.Mod.Path
	return &huma.Info{
		Title:       path.Base(modulePath),
		Description: fmt.Sprintf("API of %s", modulePath),
		Version:     "1.0.0",
	}, nil
}
