// Package routes recovers controllers, endpoint operations and tags from the
// directives written in controller and method doc comments.
package routes

import (
	"fmt"
	"path"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/samber/lo"

	"github.com/barisgit/fluxdoc/internal/annotations"
	"github.com/barisgit/fluxdoc/internal/symbols"
)

// Verbs lists the recognized HTTP verb directives.
var Verbs = []string{"get", "post", "patch", "put", "delete"}

// Fields are the doc tags read from a controller or method comment.
type Fields struct {
	Description string
	Tag         string
	Deprecated  string
	Summary     string
}

// ReadFields scans the description, tag, deprecated and summary doc tags. Free
// text before the first tag describes its block; an explicit @description replaces
// it, and a later block overrides an earlier one.
func ReadFields(docs []annotations.Doc) Fields {
	var f Fields
	for _, d := range docs {
		desc := d.Text
		for _, a := range d.Annotations {
			switch a.Name {
			case "description":
				desc = a.Text
			case "tag":
				f.Tag = a.Text
			case "deprecated":
				f.Deprecated = a.Text
			case "summary":
				f.Summary = a.Text
			}
		}
		if desc != "" {
			f.Description = desc
		}
	}
	return f
}

// Controller is an endpoint group.
type Controller struct {
	Name   string
	Route  string
	Tag    string
	Admin  bool
	Fields Fields
	Decl   *symbols.Decl
}

// Endpoint is one annotated controller method.
type Endpoint struct {
	Controller  *Controller
	Method      *symbols.Method
	Docs        []annotations.Doc
	Fields      Fields
	Verb        string
	Route       string
	Path        string
	OperationID string
	Summary     string
}

// Name returns the Go method name.
func (e *Endpoint) Name() string { return e.Method.Func.Name.Name }

// HTTPMethod returns the verb in upper case.
func (e *Endpoint) HTTPMethod() string { return strings.ToUpper(e.Verb) }

// DeprecationNote returns the controller note, else the method note.
func (e *Endpoint) DeprecationNote() string {
	if e.Controller.Fields.Deprecated != "" {
		return e.Controller.Fields.Deprecated
	}
	return e.Fields.Deprecated
}

// Deprecated reports whether the controller or the method is deprecated.
func (e *Endpoint) Deprecated() bool { return e.DeprecationNote() != "" }

// Operation returns the operation skeleton without parameters or responses.
func (e *Endpoint) Operation() *huma.Operation {
	return &huma.Operation{
		Method:      e.HTTPMethod(),
		Path:        e.Path,
		OperationID: e.OperationID,
		Summary:     e.Summary,
		Description: e.Fields.Description,
		Tags:        []string{e.Controller.Tag},
		Security:    []map[string][]string{},
	}
}

// Stub returns the operation that replaces a deprecated endpoint entirely.
func (e *Endpoint) Stub() *huma.Operation {
	return &huma.Operation{
		Deprecated:  true,
		Description: e.Fields.Description + "\n\n" + e.DeprecationNote(),
	}
}

// Result is everything extracted in one pass.
type Result struct {
	Controllers []*Controller
	Endpoints   []*Endpoint
	Tags        *Tags
}

// Extract walks the controllers of table in discovery order.
func Extract(table *symbols.Table) *Result {
	res := &Result{Tags: NewTags()}

	for _, decl := range table.Controllers() {
		docs := annotations.Parse(decl.Docs()...)
		directive, _ := annotations.Find(docs, symbols.ControllerDirective, false)

		ctrl := &Controller{
			Name:   decl.Name,
			Route:  directive.Arg(),
			Fields: ReadFields(docs),
			Decl:   decl,
		}
		if ctrl.Route == "" {
			ctrl.Route = "/"
		}
		ctrl.Tag = ctrl.Fields.Tag
		if ctrl.Tag == "" {
			ctrl.Tag = DeriveTag(ctrl.Route)
		}
		ctrl.Admin = IsAdmin(ctrl.Route)

		description := ctrl.Fields.Description
		if description == "" {
			description = fmt.Sprintf("Contains %s APIs.", ctrl.Tag)
		}
		res.Tags.Register(ctrl.Tag, description, ctrl.Admin)
		res.Controllers = append(res.Controllers, ctrl)

		for _, m := range table.Methods(decl.Name) {
			res.Endpoints = append(res.Endpoints, endpoints(ctrl, m)...)
		}
	}
	return res
}

// endpoints returns one endpoint per verb directive on m, in comment order. They
// share the operation id.
func endpoints(ctrl *Controller, m *symbols.Method) []*Endpoint {
	docs := annotations.Parse(m.Func.Doc)
	fields := ReadFields(docs)

	var eps []*Endpoint
	for _, a := range annotations.All(docs) {
		if !lo.ContainsBy(Verbs, func(v string) bool { return strings.EqualFold(a.Name, v) }) {
			continue
		}
		ep := &Endpoint{
			Controller:  ctrl,
			Method:      m,
			Docs:        docs,
			Fields:      fields,
			Verb:        strings.ToLower(a.Name),
			Route:       a.Arg(),
			OperationID: ctrl.Name + "-" + m.Func.Name.Name,
		}
		ep.Path = JoinPath(ctrl.Route, ep.Route)
		ep.Summary = ep.Fields.Summary
		if ep.Summary == "" {
			ep.Summary = Capitalize(m.Func.Name.Name)
		}
		eps = append(eps, ep)
	}
	return eps
}

// JoinPath joins a controller route and a method route and rewrites ":name"
// segments into "{name}". The result always starts with "/" and only the root path
// ends with one.
func JoinPath(base, route string) string {
	joined := path.Join("/", base, route)

	segs := strings.Split(joined, "/")
	for i, seg := range segs {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			segs[i] = "{" + name + "}"
		}
	}
	return strings.Join(segs, "/")
}
