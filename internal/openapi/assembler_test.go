package openapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2"

	"github.com/barisgit/fluxdoc/internal/diag"
	"github.com/barisgit/fluxdoc/internal/logging"
	"github.com/barisgit/fluxdoc/internal/routes"
	"github.com/barisgit/fluxdoc/internal/source"
	"github.com/barisgit/fluxdoc/internal/symbols"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

const ordersSrc = `package api

// @Controller("orders")
type OrderController struct{}

// Lists orders.
//
// @Get()
func (c *OrderController) List() {}

// Removes an order.
//
// @Delete(":id")
// @deprecated Use archive instead.
func (c *OrderController) Remove() {}
`

func endpoints(t *testing.T) []*routes.Endpoint {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "api.go", ordersSrc, parser.ParseComments)
	require.NoError(t, err)
	table, err := symbols.Build(fset, []*source.File{{Path: "api.go", AST: f}})
	require.NoError(t, err)
	return routes.Extract(table).Endpoints
}

func marshal(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestNewDocumentMergesResponses(t *testing.T) {
	doc := NewDocument(nil, nil, map[string]*huma.Response{
		"400": {Description: "Validation failed"},
		"401": {Description: "Unauthorized"},
	})
	assert.Equal(t, "3.1.0", doc.OpenAPI)
	assert.Equal(t, "Successful", doc.Components.Responses["200"].Description)
	assert.Equal(t, "Validation failed", doc.Components.Responses["400"].Description)

	asm := NewAssembler(doc, logging.Discard())
	assert.Equal(t, []string{"400", "401", "500"}, asm.SharedResponses())
}

func TestAddOperationWithoutReturnType(t *testing.T) {
	eps := endpoints(t)
	asm := NewAssembler(NewDocument(nil, nil, nil), logging.Discard())

	asm.AddOperation(Operation{Endpoint: eps[0]})
	op := asm.Document().Paths["/orders"].Get
	require.NotNil(t, op)

	assert.Equal(t, "OrderController-List", op.OperationID)
	assert.Equal(t, "#/components/responses/204", op.Responses["204"].Ref)
	assert.Equal(t, "#/components/responses/400", op.Responses["400"].Ref)
	assert.Equal(t, "#/components/responses/500", op.Responses["500"].Ref)
	assert.NotContains(t, op.Responses, "200")
	assert.Empty(t, asm.Document().Components.Schemas.Map())

	out := marshal(t, op)
	assert.Equal(t, []any{}, out["security"])
	assert.Equal(t, []any{"Orders"}, out["tags"])
}

func TestAddOperationReferencesComponents(t *testing.T) {
	eps := endpoints(t)
	asm := NewAssembler(NewDocument(nil, nil, nil), logging.Discard())
	asm.PutSchema("OrderSerializer", &huma.Schema{Type: huma.TypeObject})
	asm.PutSchema("OrderQueryDto", &huma.Schema{
		Type:       huma.TypeObject,
		Properties: map[string]*huma.Schema{"page": {Type: huma.TypeInteger}},
	})
	asm.PutResponse("OrderSerializer")
	asm.PutRequestBody("OrderSerializer")
	asm.PutParameter("OrderQueryDto-page", &huma.Param{
		Name:   "page",
		In:     "query",
		Schema: &huma.Schema{Ref: "#/components/schemas/OrderQueryDto/properties/page"},
	})

	asm.AddOperation(Operation{
		Endpoint:   eps[0],
		Parameters: []string{"OrderQueryDto-page"},
		Body:       "OrderSerializer",
		Response:   "OrderSerializer",
	})
	op := asm.Document().Paths["/orders"].Get
	assert.Equal(t, "#/components/parameters/OrderQueryDto-page", op.Parameters[0].Ref)
	assert.Equal(t, "#/components/requestBodies/OrderSerializer", RequestBodyRef(op))
	assert.Equal(t, "#/components/responses/OrderSerializer", op.Responses["200"].Ref)
	assert.Equal(t, "Success", asm.Document().Components.Responses["OrderSerializer"].Description)

	require.NoError(t, CheckReferences(asm.Document()))
}

func TestRequestBodyIsPureReference(t *testing.T) {
	eps := endpoints(t)
	asm := NewAssembler(NewDocument(nil, nil, nil), logging.Discard())
	asm.PutSchema("OrderDto", &huma.Schema{Type: huma.TypeObject})
	asm.PutRequestBody("OrderDto")
	asm.AddOperation(Operation{Endpoint: eps[0], Body: "OrderDto"})

	out := marshal(t, asm.Document().Paths["/orders"].Get)
	assert.Equal(t, map[string]any{"$ref": "#/components/requestBodies/OrderDto"}, out["requestBody"])

	component := marshal(t, asm.Document().Components.RequestBodies["OrderDto"])
	assert.Contains(t, component, "content")
	assert.NotContains(t, component, "$ref")
	require.NoError(t, CheckReferences(asm.Document()))
}

func TestDeprecatedOperationIsStub(t *testing.T) {
	eps := endpoints(t)
	asm := NewAssembler(NewDocument(nil, nil, nil), logging.Discard())
	asm.AddOperation(Operation{Endpoint: eps[1], Parameters: []string{"X-id"}, Response: "X"})

	op := asm.Document().Paths["/orders/{id}"].Delete
	require.NotNil(t, op)
	assert.Equal(t, map[string]any{
		"deprecated":  true,
		"description": "Removes an order.\n\nUse archive instead.",
	}, marshal(t, op))
}

func TestPutLogsReplacement(t *testing.T) {
	var buf bytes.Buffer
	asm := NewAssembler(NewDocument(nil, nil, nil), logging.NewWriter(&buf, true, false))

	asm.PutSchema("A", &huma.Schema{Type: huma.TypeString})
	asm.PutSchema("A", &huma.Schema{Type: huma.TypeString})
	assert.Empty(t, buf.String())

	asm.PutSchema("A", &huma.Schema{Type: huma.TypeInteger})
	assert.Contains(t, buf.String(), "Replacing components.schemas.A")
	assert.Equal(t, huma.TypeInteger, asm.Document().Components.Schemas.Map()["A"].Type)
}

func TestCheckReferences(t *testing.T) {
	doc := NewDocument(nil, nil, nil)
	asm := NewAssembler(doc, logging.Discard())
	asm.PutSchema("Product", &huma.Schema{
		Type:       huma.TypeObject,
		Properties: map[string]*huma.Schema{"name": {Type: huma.TypeString}},
	})
	asm.PutParameter("Product-name", &huma.Param{
		Name:   "name",
		In:     "query",
		Schema: &huma.Schema{Ref: "#/components/schemas/Product/properties/name"},
	})
	require.NoError(t, CheckReferences(doc))

	asm.PutParameter("Product-price", &huma.Param{
		Name:   "price",
		In:     "query",
		Schema: &huma.Schema{Ref: "#/components/schemas/Product/properties/price"},
	})
	err := CheckReferences(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrDanglingReference))
	assert.Equal(t,
		"reference #/components/schemas/Product/properties/price at #/components/parameters/Product-price/schema does not resolve",
		err.Error())

	delete(doc.Components.Parameters, "Product-price")
	asm.PutSchema("List", &huma.Schema{Type: huma.TypeArray, Items: &huma.Schema{Ref: "https://example.com/x"}})
	assert.True(t, errors.Is(CheckReferences(doc), diag.ErrDanglingReference))
}

func TestProjectInfo(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module github.com/acme/shop\n\ngo 1.24\n"), 0o644))

	info, err := ProjectInfo(root)
	require.NoError(t, err)
	assert.Equal(t, "shop", info.Title)
	assert.Equal(t, "1.0.0", info.Version)

	_, err = ProjectInfo(t.TempDir())
	assert.Error(t, err)
}
