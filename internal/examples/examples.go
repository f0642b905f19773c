// Package examples synthesizes an example value for every schema component of a
// document from fake data generators.
package examples

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/sync/errgroup"
)

// ExtensionKey is the schema attribute the example is stored under.
const ExtensionKey = "example"

// Policy decides whether optional properties appear in an example.
type Policy string

const (
	PolicyRandom Policy = "random"
	PolicyAlways Policy = "always"
	PolicyNever  Policy = "never"
)

// ParsePolicy validates a policy name. The empty string selects PolicyRandom.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(s)); p {
	case "":
		return PolicyRandom, nil
	case PolicyRandom, PolicyAlways, PolicyNever:
		return p, nil
	}
	return "", fmt.Errorf("unknown optional property policy %q", s)
}

// Generator produces a value for a string schema.
type Generator func(f *gofakeit.Faker, s *huma.Schema) any

// Formats are the generators keyed by schema format.
var Formats = map[string]Generator{
	"url":         func(f *gofakeit.Faker, _ *huma.Schema) any { return f.URL() },
	"uri":         func(f *gofakeit.Faker, _ *huma.Schema) any { return f.URL() },
	"email":       func(f *gofakeit.Faker, _ *huma.Schema) any { return f.Email() },
	"uuid":        func(f *gofakeit.Faker, _ *huma.Schema) any { return f.UUID() },
	"date-time":   func(f *gofakeit.Faker, _ *huma.Schema) any { return f.Date().UTC().Format(time.RFC3339) },
	"date":        func(f *gofakeit.Faker, _ *huma.Schema) any { return f.Date().UTC().Format(time.DateOnly) },
	"credit-card": func(f *gofakeit.Faker, _ *huma.Schema) any { return f.CreditCardNumber(nil) },
	"ipv4":        func(f *gofakeit.Faker, _ *huma.Schema) any { return f.IPv4Address() },
	"ipv6":        func(f *gofakeit.Faker, _ *huma.Schema) any { return f.IPv6Address() },
	"hostname":    func(f *gofakeit.Faker, _ *huma.Schema) any { return f.DomainName() },
}

// Options configure a Synthesizer.
type Options struct {
	Seed      int64
	Optionals Policy
}

// Synthesizer fills the example attribute of schema components.
type Synthesizer struct {
	opts Options
}

// New creates a synthesizer.
func New(opts Options) *Synthesizer {
	if opts.Optionals == "" {
		opts.Optionals = PolicyRandom
	}
	return &Synthesizer{opts: opts}
}

// Synthesize computes one example per schema concurrently and stores each under
// ExtensionKey once all are done. Nothing but the example attribute is changed.
func (s *Synthesizer) Synthesize(ctx context.Context, schemas map[string]*huma.Schema) error {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		mu      sync.Mutex
		results = make(map[string]any, len(names))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v := s.Example(schemas, name)
			mu.Lock()
			results[name] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, name := range names {
		schema := schemas[name]
		if schema.Extensions == nil {
			schema.Extensions = map[string]any{}
		}
		schema.Extensions[ExtensionKey] = results[name]
	}
	return nil
}

// Example returns the example of the schema component name. The same seed, name
// and schema set always give the same value.
func (s *Synthesizer) Example(schemas map[string]*huma.Schema, name string) any {
	h := fnv.New64a()
	h.Write([]byte(name))

	st := &state{
		faker:   gofakeit.New(s.opts.Seed ^ int64(h.Sum64())),
		schemas: schemas,
		policy:  s.opts.Optionals,
		stack:   map[string]bool{name: true},
	}
	v, _ := st.value(schemas[name])
	return v
}
