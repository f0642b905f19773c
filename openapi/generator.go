// Package openapi renders generated documents and writes them to disk.
package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/danielgtaylor/huma/v2"
	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// GenerateSpecToFile renders doc in format and saves it to outputPath, creating
// parent directories as needed.
func GenerateSpecToFile(doc *huma.OpenAPI, outputPath, format string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	var (
		spec []byte
		err  error
	)
	switch format {
	case FormatYAML:
		spec, err = GenerateSpecYAML(doc)
	case FormatJSON, "":
		spec, err = GenerateSpec(doc)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return err
	}

	// Save to file
	if err := os.WriteFile(outputPath, spec, 0644); err != nil {
		return fmt.Errorf("failed to save OpenAPI spec to %s: %w", outputPath, err)
	}

	return nil
}

// GenerateSpec returns doc as pretty-printed JSON.
func GenerateSpec(doc *huma.OpenAPI) ([]byte, error) {
	spec, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to generate OpenAPI JSON: %w", err)
	}
	return append(spec, '\n'), nil
}

// GenerateSpecYAML returns doc as YAML. Top-level keys follow topLevelOrder; nested
// keys keep the sorted order of the JSON form.
func GenerateSpecYAML(doc *huma.OpenAPI) ([]byte, error) {
	spec, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to generate OpenAPI JSON: %w", err)
	}

	// JSON is valid YAML; decoding into a node keeps the key order.
	var node yaml.Node
	if err := yaml.Unmarshal(spec, &node); err != nil {
		return nil, fmt.Errorf("failed to convert OpenAPI JSON to YAML: %w", err)
	}
	resetStyle(&node)
	if len(node.Content) > 0 {
		orderTopLevel(node.Content[0])
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("failed to generate OpenAPI YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to generate OpenAPI YAML: %w", err)
	}
	return buf.Bytes(), nil
}

var topLevelOrder = []string{"openapi", "info", "jsonSchemaDialect", "servers", "tags", "paths", "webhooks", "components", "security", "externalDocs"}

// orderTopLevel sorts the key/value pairs of a mapping node by topLevelOrder.
// Unknown keys go last in their existing order.
func orderTopLevel(m *yaml.Node) {
	if m.Kind != yaml.MappingNode {
		return
	}
	rank := func(key string) int {
		if i := slices.Index(topLevelOrder, key); i >= 0 {
			return i
		}
		return len(topLevelOrder)
	}
	pairs := make([][2]*yaml.Node, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		pairs = append(pairs, [2]*yaml.Node{m.Content[i], m.Content[i+1]})
	}
	slices.SortStableFunc(pairs, func(a, b [2]*yaml.Node) int {
		return rank(a[0].Value) - rank(b[0].Value)
	})
	m.Content = m.Content[:0]
	for _, p := range pairs {
		m.Content = append(m.Content, p[0], p[1])
	}
}

func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}

// GetRouteCount returns the number of operations in doc.
func GetRouteCount(doc *huma.OpenAPI) int {
	if doc == nil || doc.Paths == nil {
		return 0
	}

	routeCount := 0
	for _, pathItem := range doc.Paths {
		if pathItem == nil {
			continue
		}
		for _, op := range []*huma.Operation{
			pathItem.Get, pathItem.Post, pathItem.Put, pathItem.Delete,
			pathItem.Patch, pathItem.Head, pathItem.Options,
		} {
			if op != nil {
				routeCount++
			}
		}
	}
	return routeCount
}
