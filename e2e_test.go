package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func generateProducts(t *testing.T, extra ...string) map[string]any {
	t.Helper()
	output := filepath.Join(t.TempDir(), "openapi.json")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"generate", "examples/products", "-o", output, "--quiet", "--config", filepath.Join(t.TempDir(), "none.yaml")}, extra...))
	require.NoError(t, root.Execute(), out.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func dig(t *testing.T, v any, keys ...string) any {
	t.Helper()
	for _, k := range keys {
		m, ok := v.(map[string]any)
		require.True(t, ok, "expected an object at %q", k)
		v, ok = m[k]
		require.True(t, ok, "missing key %q", k)
	}
	return v
}

func TestE2E_ProductsPatch(t *testing.T) {
	doc := generateProducts(t)

	patch := dig(t, doc, "paths", "/products/{productId}", "patch").(map[string]any)
	assert.Equal(t, "ProductController-UpdateProduct", patch["operationId"])
	assert.Equal(t, []any{"Products"}, patch["tags"])
	assert.Equal(t, []any{}, patch["security"])

	params := patch["parameters"].([]any)
	require.Len(t, params, 1)
	assert.Equal(t, "#/components/parameters/ProductIDDto-productId", dig(t, params[0], "$ref"))

	param := dig(t, doc, "components", "parameters", "ProductIDDto-productId")
	assert.Equal(t, "productId", dig(t, param, "name"))
	assert.Equal(t, "path", dig(t, param, "in"))
	assert.Equal(t, true, dig(t, param, "required"))

	assert.Equal(t, "#/components/requestBodies/ProductUpdateDto", dig(t, patch, "requestBody", "$ref"))
	assert.Equal(t, "#/components/responses/ProductSerializer", dig(t, patch, "responses", "200", "$ref"))

	body := dig(t, doc, "components", "schemas", "ProductUpdateDto")
	assert.ElementsMatch(t, []any{"name", "description"}, dig(t, body, "required"))
	assert.NotNil(t, dig(t, body, "example"))
}

func TestE2E_ProductsDocumentShape(t *testing.T) {
	doc := generateProducts(t)

	var tags []string
	for _, tag := range doc["tags"].([]any) {
		tags = append(tags, dig(t, tag, "name").(string))
	}
	assert.Equal(t, []string{"Products", "Admin - Products"}, tags)

	archive := dig(t, doc, "paths", "/products/{productId}/archive", "post")
	assert.Equal(t, map[string]any{
		"deprecated":  true,
		"description": "Archive hides a product.\n\nUse PATCH /products/{productId} with status archived.",
	}, archive)

	remove := dig(t, doc, "paths", "/products/{productId}", "delete")
	assert.Equal(t, "#/components/responses/204", dig(t, remove, "responses", "204", "$ref"))

	composite := dig(t, doc, "components", "schemas", "ProductImportDto-AuditDto")
	assert.Len(t, dig(t, composite, "allOf"), 2)
	assert.Equal(t, "#/components/requestBodies/ProductImportDto-AuditDto",
		dig(t, doc, "paths", "/admin/products/import", "put", "requestBody", "$ref"))

	created := dig(t, doc, "components", "schemas", "ProductSerializer", "properties", "createdAt")
	assert.Equal(t, "date-time", dig(t, created, "format"))

	for _, ref := range collectRefs(doc) {
		require.True(t, strings.HasPrefix(ref, "#/components/"), ref)
		parts := strings.Split(strings.TrimPrefix(ref, "#/"), "/")
		dig(t, doc, parts...)
	}
}

func TestE2E_Deterministic(t *testing.T) {
	a := generateProducts(t, "--format", "json")
	b := generateProducts(t)
	assert.Equal(t, a, b)
}

func collectRefs(v any) []string {
	var refs []string
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			if s, ok := child.(string); ok && k == "$ref" {
				refs = append(refs, s)
				continue
			}
			refs = append(refs, collectRefs(child)...)
		}
	case []any:
		for _, child := range node {
			refs = append(refs, collectRefs(child)...)
		}
	}
	return refs
}
