// Package dev re-runs the generator while a project is being edited.
package dev

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/samber/lo"

	"github.com/barisgit/fluxdoc/config"
	"github.com/barisgit/fluxdoc/internal/diag"
	"github.com/barisgit/fluxdoc/internal/generator"
	"github.com/barisgit/fluxdoc/internal/logging"
)

// Options configure a Controller.
type Options struct {
	// Config reloads the configuration when its file changes.
	Config *config.ConfigManager
	// Override is applied to every loaded configuration, e.g. command-line flags.
	Override func(*config.ProjectConfig)
	// KeepGoing logs a failed pass instead of returning its error.
	KeepGoing bool
	// OnDocument receives the document of every successful pass.
	OnDocument func(*huma.OpenAPI)
	Logger     *logging.Logger
}

// Controller serializes analysis passes. Changes reported while a pass is running
// are queued and picked up by one follow-up pass.
type Controller struct {
	pipeline *generator.Pipeline
	opts     Options

	mu      sync.Mutex
	running bool
	full    bool
	pending []string
	passes  int
}

// NewController creates a controller driving p.
func NewController(p *generator.Pipeline, opts Options) *Controller {
	return &Controller{pipeline: p, opts: opts}
}

// Passes returns the number of passes started so far.
func (c *Controller) Passes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.passes
}

// Rebuild re-parses every file and runs a pass.
func (c *Controller) Rebuild(ctx context.Context) error {
	c.mu.Lock()
	c.full = true
	c.mu.Unlock()
	return c.drain(ctx)
}

// Changed reports changed files. If no pass is running the caller runs passes
// until the queue is empty; otherwise it returns at once.
func (c *Controller) Changed(ctx context.Context, paths ...string) error {
	c.mu.Lock()
	for _, path := range paths {
		if !lo.Contains(c.pending, path) {
			c.pending = append(c.pending, path)
		}
	}
	c.mu.Unlock()
	return c.drain(ctx)
}

// drain runs passes until the queue is empty. running is cleared under the same
// lock that observes the empty queue, so a change reported afterwards starts its
// own drain.
func (c *Controller) drain(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.mu.Unlock()

	for {
		c.mu.Lock()
		full, batch := c.full, c.pending
		c.full, c.pending = false, nil
		if !full && len(batch) == 0 {
			c.running = false
			c.mu.Unlock()
			return nil
		}
		c.passes++
		c.mu.Unlock()

		if err := c.pass(ctx, full, batch); err != nil {
			if !c.opts.KeepGoing {
				c.mu.Lock()
				c.full, c.pending = false, nil
				c.running = false
				c.mu.Unlock()
				return err
			}
			c.opts.Logger.Error("%v", err)
			for _, loc := range locations(err) {
				c.opts.Logger.Error("  at %s", loc)
			}
			c.opts.Logger.Warn("Keeping the last generated document, waiting for changes...")
		}
		if err := ctx.Err(); err != nil {
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()
			return err
		}
	}
}

// pass applies a batch of changes and regenerates the document.
func (c *Controller) pass(ctx context.Context, full bool, batch []string) error {
	reload := false
	for _, path := range batch {
		if c.isConfig(path) {
			reload = true
		}
	}

	switch {
	case reload:
		c.opts.Logger.Info("⚙️  %s changed, reloading configuration...", filepath.Base(c.opts.Config.Path()))
		cfg, err := c.opts.Config.LoadConfig()
		if err != nil {
			return err
		}
		if c.opts.Override != nil {
			c.opts.Override(cfg)
		}
		c.pipeline.SetConfig(cfg)
		if err := c.pipeline.Load(); err != nil {
			return err
		}
	case full:
		if err := c.pipeline.Load(); err != nil {
			return err
		}
	default:
		// Every path is applied before failing so one broken file does not leave
		// the rest of the batch stale.
		var errs []error
		for _, path := range batch {
			if !strings.HasSuffix(path, ".go") {
				continue
			}
			c.opts.Logger.Info("📝 %s changed, regenerating...", filepath.Base(path))
			if err := c.pipeline.Update(path); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}
	}

	doc, err := c.pipeline.Generate(ctx)
	if err != nil {
		return err
	}
	if c.opts.OnDocument != nil {
		c.opts.OnDocument(doc)
	}
	return nil
}

// isConfig reports whether path is the configuration file.
func (c *Controller) isConfig(path string) bool {
	if c.opts.Config == nil {
		return false
	}
	want, err := filepath.Abs(c.opts.Config.Path())
	if err != nil {
		return false
	}
	got, err := filepath.Abs(path)
	return err == nil && got == want
}

func locations(err error) []diag.Location {
	var d *diag.Error
	if errors.As(err, &d) {
		return d.Locations
	}
	return nil
}
