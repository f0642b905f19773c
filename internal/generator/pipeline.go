// Package generator runs one full analysis pass, from parsed sources to a
// checked OpenAPI document.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/barisgit/fluxdoc/config"
	"github.com/barisgit/fluxdoc/openapi"
	"github.com/barisgit/fluxdoc/internal/examples"
	"github.com/barisgit/fluxdoc/internal/logging"
	assembly "github.com/barisgit/fluxdoc/internal/openapi"
	"github.com/barisgit/fluxdoc/internal/params"
	"github.com/barisgit/fluxdoc/internal/registry"
	"github.com/barisgit/fluxdoc/internal/routes"
	"github.com/barisgit/fluxdoc/internal/schema"
	"github.com/barisgit/fluxdoc/internal/source"
	"github.com/barisgit/fluxdoc/internal/symbols"
)

// Pipeline owns the parsed sources of a project and the configuration applied to
// every pass.
type Pipeline struct {
	sources *source.Set
	cfg     *config.ProjectConfig
	log     *logging.Logger
}

// New creates a pipeline for the project rooted at root.
func New(root string, cfg *config.ProjectConfig, log *logging.Logger) (*Pipeline, error) {
	sources, err := source.NewSet(root, cfg.Files)
	if err != nil {
		return nil, err
	}
	return &Pipeline{sources: sources, cfg: cfg, log: log}, nil
}

// Sources returns the parsed project files.
func (p *Pipeline) Sources() *source.Set { return p.sources }

// Config returns the configuration of the next pass.
func (p *Pipeline) Config() *config.ProjectConfig { return p.cfg }

// SetConfig replaces the configuration and the glob list. Call Load afterwards.
func (p *Pipeline) SetConfig(cfg *config.ProjectConfig) {
	p.cfg = cfg
	p.sources.SetGlobs(cfg.Files)
}

// Load parses every file matched by the glob list.
func (p *Pipeline) Load() error {
	start := time.Now()
	if err := p.sources.Load(); err != nil {
		return err
	}
	p.log.Debug("Parsed %d files in %v", p.sources.Len(), time.Since(start).Round(time.Millisecond))
	return nil
}

// Update re-parses a single changed file.
func (p *Pipeline) Update(path string) error {
	return p.sources.Update(path)
}

// Run builds the document from the currently parsed files. Any error aborts the
// pass and no document is returned.
func (p *Pipeline) Run(ctx context.Context) (*huma.OpenAPI, error) {
	table, err := symbols.Build(p.sources.FileSet(), p.sources.Files())
	if err != nil {
		return nil, err
	}
	p.log.Debug("Indexed %d declared types, %d controllers", table.Len(), len(table.Controllers()))

	extracted := routes.Extract(table)

	classes, requestNames, err := p.classify(table, extracted.Endpoints)
	if err != nil {
		return nil, err
	}

	requests := schema.NewRequestResolver(table, registry.New(), p.log)
	var requestSchemas []*schema.Resolved
	if len(requestNames) > 0 {
		if requestSchemas, err = requests.Resolve(ctx, requestNames...); err != nil {
			return nil, err
		}
	}

	returns := make(map[*routes.Endpoint]string, len(extracted.Endpoints))
	var responseNames []string
	for _, ep := range extracted.Endpoints {
		name := schema.ReturnType(ep.Method.Func.Type)
		if name == "" {
			continue
		}
		if err := schema.Require(table, name, ep.OperationID, table.Location(ep.Method.Func.Pos())); err != nil {
			return nil, err
		}
		returns[ep] = name
		responseNames = append(responseNames, name)
	}
	responseSchemas, err := schema.NewResponseResolver(table).Resolve(ctx, responseNames...)
	if err != nil {
		return nil, err
	}

	asm := assembly.NewAssembler(p.newDocument(), p.log)
	asm.SetTags(extracted.Tags.Sorted())

	// Validation metadata wins over the static shape of a type used both ways.
	for _, res := range responseSchemas {
		asm.PutSchema(res.Name, res.Schema)
	}
	for _, res := range requestSchemas {
		asm.PutSchema(res.Name, res.Schema)
	}

	for _, c := range classes {
		op := assembly.Operation{Endpoint: c.Endpoint, Response: returns[c.Endpoint]}

		for _, b := range c.Bindings() {
			ps, err := requests.Parameters(b)
			if err != nil {
				return nil, err
			}
			for _, param := range ps {
				asm.PutParameter(param.Name, param.Param)
				op.Parameters = append(op.Parameters, param.Name)
			}
		}

		if c.Body != nil {
			if composite := schema.Composite(c.Body); composite != nil {
				asm.PutSchema(composite.Name, composite.Schema)
			}
			asm.PutRequestBody(c.Body.TypeName)
			op.Body = c.Body.TypeName
		}

		if op.Response != "" {
			asm.PutResponse(op.Response)
		}
		asm.AddOperation(op)
	}

	doc := asm.Document()
	if !p.cfg.Examples.Disabled {
		policy, err := examples.ParsePolicy(p.cfg.Examples.Optionals)
		if err != nil {
			return nil, err
		}
		synth := examples.New(examples.Options{Seed: p.cfg.Examples.Seed, Optionals: policy})
		if err := synth.Synthesize(ctx, doc.Components.Schemas.Map()); err != nil {
			return nil, fmt.Errorf("failed to synthesize examples: %w", err)
		}
	}

	if err := assembly.CheckReferences(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Generate runs a pass and writes the document to the configured output. A
// failed pass leaves any earlier output untouched.
func (p *Pipeline) Generate(ctx context.Context) (*huma.OpenAPI, error) {
	start := time.Now()
	doc, err := p.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := openapi.GenerateSpecToFile(doc, p.cfg.Output, p.cfg.Format); err != nil {
		return nil, err
	}
	p.log.Success("Generated %s with %d routes in %v", p.cfg.Output, openapi.GetRouteCount(doc),
		time.Since(start).Round(time.Millisecond))
	return doc, nil
}

// classify binds the inputs of every endpoint and returns the request type names
// to resolve, each checked against the symbol table.
func (p *Pipeline) classify(table *symbols.Table, endpoints []*routes.Endpoint) ([]*params.Classification, []string, error) {
	var (
		classes []*params.Classification
		names   []string
		seen    = make(map[string]bool)
	)
	add := func(name string, b params.Binding) error {
		if err := schema.Require(table, name, b.OperationID, b.Location); err != nil {
			return err
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		return nil
	}

	for _, ep := range endpoints {
		c, err := params.Classify(table, ep)
		if err != nil {
			return nil, nil, err
		}
		for _, name := range c.Unbound {
			p.log.Warn("%s: %s has no parameter named %s", table.Location(ep.Method.Func.Pos()), ep.OperationID, name)
		}
		for _, b := range c.Bindings() {
			if err := add(b.TypeName, b); err != nil {
				return nil, nil, err
			}
		}
		if c.Body != nil {
			for _, tok := range c.Body.Tokens {
				if err := add(tok, c.Body.Binding); err != nil {
					return nil, nil, err
				}
			}
		}
		classes = append(classes, c)
	}
	return classes, names, nil
}

// newDocument applies the configuration to an empty document. Without a
// configured info block the title comes from go.mod.
func (p *Pipeline) newDocument() *huma.OpenAPI {
	info := p.cfg.Info()
	if info == nil {
		projectInfo, err := assembly.ProjectInfo(p.sources.Root())
		if err != nil {
			p.log.Debug("Using default document info: %v", err)
		} else {
			info = projectInfo
		}
	}
	return assembly.NewDocument(info, p.cfg.Servers(), p.cfg.Responses())
}
