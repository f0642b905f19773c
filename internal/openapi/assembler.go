package openapi

import (
	"reflect"
	"sort"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/barisgit/fluxdoc/internal/logging"
	"github.com/barisgit/fluxdoc/internal/routes"
	"github.com/barisgit/fluxdoc/internal/schema"
)

const (
	parameterPrefix   = "#/components/parameters/"
	requestBodyPrefix = "#/components/requestBodies/"
	responsePrefix    = "#/components/responses/"
)

const jsonContent = "application/json"

const requestBodyKey = "requestBody"

// RequestBodyRef returns the request body reference of an assembled operation, or
// "" when it has no body.
func RequestBodyRef(op *huma.Operation) string {
	if ref, ok := op.Extensions[requestBodyKey].(map[string]string); ok {
		return ref["$ref"]
	}
	if op.RequestBody != nil {
		return op.RequestBody.Ref
	}
	return ""
}

// exportAll lets cmp look at the unexported caches of huma schemas.
var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

// Assembler owns the document of one analysis pass. It is not safe for
// concurrent use.
type Assembler struct {
	doc    *huma.OpenAPI
	shared []string
	log    *logging.Logger
}

// NewAssembler wraps doc. The shared error responses are the response keys present
// at this point, other than 200 and 204.
func NewAssembler(doc *huma.OpenAPI, log *logging.Logger) *Assembler {
	var shared []string
	for code := range doc.Components.Responses {
		if code != StatusOK && code != StatusNoContent {
			shared = append(shared, code)
		}
	}
	sort.Strings(shared)
	return &Assembler{doc: doc, shared: shared, log: log}
}

// Document returns the assembled document.
func (a *Assembler) Document() *huma.OpenAPI { return a.doc }

// SharedResponses returns the response keys every operation references.
func (a *Assembler) SharedResponses() []string { return a.shared }

// SetTags replaces the tag list.
func (a *Assembler) SetTags(tags []*huma.Tag) {
	a.doc.Tags = tags
}

// PutSchema stores s under name, replacing any earlier value.
func (a *Assembler) PutSchema(name string, s *huma.Schema) {
	put(a, "schemas", a.doc.Components.Schemas.Map(), name, s)
}

// PutParameter stores a parameter component.
func (a *Assembler) PutParameter(name string, p *huma.Param) {
	put(a, "parameters", a.doc.Components.Parameters, name, p)
}

// PutRequestBody stores a JSON request body referencing the schema name.
func (a *Assembler) PutRequestBody(name string) {
	put(a, "requestBodies", a.doc.Components.RequestBodies, name, &huma.RequestBody{
		Required: true,
		Content: map[string]*huma.MediaType{
			jsonContent: {Schema: &huma.Schema{Ref: schema.Ref(name)}},
		},
	})
}

// PutResponse stores a successful JSON response referencing the schema name.
func (a *Assembler) PutResponse(name string) {
	put(a, "responses", a.doc.Components.Responses, name, &huma.Response{
		Description: "Success",
		Content: map[string]*huma.MediaType{
			jsonContent: {Schema: &huma.Schema{Ref: schema.Ref(name)}},
		},
	})
}

// put stores v as a full replacement and logs when a different value is
// overwritten.
func put[T any](a *Assembler, category string, m map[string]T, name string, v T) {
	if old, ok := m[name]; ok && !cmp.Equal(old, v, exportAll) {
		a.log.Debug("Replacing components.%s.%s", category, name)
	}
	m[name] = v
}

// Operation is one endpoint with the components it references.
type Operation struct {
	Endpoint   *routes.Endpoint
	Parameters []string
	Body       string
	Response   string
}

// AddOperation places the endpoint's operation under its path and method. A
// deprecated endpoint is written as its stub only.
func (a *Assembler) AddOperation(in Operation) {
	ep := in.Endpoint
	if ep.Deprecated() {
		a.setOperation(ep.Path, ep.Verb, ep.Stub())
		return
	}

	op := ep.Operation()
	for _, name := range in.Parameters {
		op.Parameters = append(op.Parameters, &huma.Param{Ref: parameterPrefix + name})
	}
	if in.Body != "" {
		// huma.RequestBody always writes "content", so the reference goes out
		// through the extension map, which replaces the typed field.
		op.Extensions = map[string]any{
			requestBodyKey: map[string]string{"$ref": requestBodyPrefix + in.Body},
		}
	}

	op.Responses = map[string]*huma.Response{}
	if in.Response != "" {
		op.Responses[StatusOK] = &huma.Response{Ref: responsePrefix + in.Response}
	} else {
		op.Responses[StatusNoContent] = &huma.Response{Ref: responsePrefix + StatusNoContent}
	}
	for _, code := range a.shared {
		op.Responses[code] = &huma.Response{Ref: responsePrefix + code}
	}

	a.setOperation(ep.Path, ep.Verb, op)
}

func (a *Assembler) setOperation(path, verb string, op *huma.Operation) {
	item := a.doc.Paths[path]
	if item == nil {
		item = &huma.PathItem{}
		a.doc.Paths[path] = item
	}

	var slot **huma.Operation
	switch strings.ToLower(verb) {
	case "get":
		slot = &item.Get
	case "post":
		slot = &item.Post
	case "put":
		slot = &item.Put
	case "patch":
		slot = &item.Patch
	case "delete":
		slot = &item.Delete
	default:
		a.log.Warn("Skipping unsupported method %s for %s", verb, path)
		return
	}
	if *slot != nil {
		a.log.Warn("Replacing %s %s", strings.ToUpper(verb), path)
	}
	*slot = op
}
