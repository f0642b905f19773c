package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/danielgtaylor/huma/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/barisgit/fluxdoc/config"
	"github.com/barisgit/fluxdoc/internal/dev"
	"github.com/barisgit/fluxdoc/internal/generator"
	"github.com/barisgit/fluxdoc/internal/logging"
	"github.com/barisgit/fluxdoc/internal/preview"
)

// GenerateCmd analyzes a project and writes its OpenAPI document.
func GenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [project-dir]",
		Short: "Generate the OpenAPI document of a project",
		Long: `Statically analyze the annotated controllers and types of a Go project and write
an OpenAPI 3.1 document. With --watch the document is regenerated on every change,
with --port it is served together with a Redoc preview.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGenerate,
	}

	addGenerateFlags(cmd)
	return cmd
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output file (default from config, openapi.json)")
	cmd.Flags().IntP("port", "p", 0, "Serve a preview of the document on this port")
	cmd.Flags().Bool("watch", false, "Regenerate when sources or the configuration change")
	cmd.Flags().String("format", "", "Output format: json or yaml")
	cmd.Flags().String("config", "", "Configuration file (default <project-dir>/fluxdoc.yaml)")
	cmd.Flags().Bool("debug", false, "Enable debug logging")
	cmd.Flags().Bool("quiet", false, "Only print errors")
	cmd.Flags().Bool("keep-going", false, "In watch mode, keep watching after a failed pass")
}

type generateOptions struct {
	root      string
	config    string
	watch     bool
	keepGoing bool
	debug     bool
	quiet     bool
	override  func(*config.ProjectConfig)
}

func readGenerateOptions(cmd *cobra.Command, args []string) generateOptions {
	opts := generateOptions{root: "."}
	if len(args) > 0 {
		opts.root = args[0]
	}
	opts.config, _ = cmd.Flags().GetString("config")
	if opts.config == "" {
		opts.config = filepath.Join(opts.root, config.DefaultPath)
	}
	opts.watch, _ = cmd.Flags().GetBool("watch")
	opts.keepGoing, _ = cmd.Flags().GetBool("keep-going")
	opts.debug, _ = cmd.Flags().GetBool("debug")
	opts.quiet, _ = cmd.Flags().GetBool("quiet")

	flags := cmd.Flags()
	opts.override = func(cfg *config.ProjectConfig) {
		if flags.Changed("output") {
			cfg.Output, _ = flags.GetString("output")
		}
		if flags.Changed("format") {
			cfg.Format, _ = flags.GetString("format")
		}
		if flags.Changed("port") {
			cfg.Port, _ = flags.GetInt("port")
		}
	}
	return opts
}

func runGenerate(cmd *cobra.Command, args []string) error {
	return generate(cmd.Context(), readGenerateOptions(cmd, args))
}

func generate(ctx context.Context, opts generateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.New(opts.debug, opts.quiet)

	cm := config.NewConfigManager(config.ConfigLoadOptions{
		Path:              opts.config,
		EnvFile:           filepath.Join(opts.root, ".env"),
		AllowMissing:      true,
		ValidateStructure: true,
		ApplyDefaults:     true,
		WarnOnDeprecated:  !opts.debug,
		Quiet:             opts.quiet,
		Logger:            log,
	})
	cfg, err := cm.LoadConfig()
	if err != nil {
		return err
	}
	opts.override(cfg)
	if cfg.Format != config.FormatJSON && cfg.Format != config.FormatYAML {
		return fmt.Errorf("unsupported format '%s', valid options are: json, yaml", cfg.Format)
	}

	pipeline, err := generator.New(opts.root, cfg, log)
	if err != nil {
		return err
	}

	if !opts.watch && cfg.Port == 0 {
		if err := pipeline.Load(); err != nil {
			return err
		}
		_, err := pipeline.Generate(ctx)
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var server *preview.Server
	controllerOpts := dev.Options{
		Config:    cm,
		Override:  opts.override,
		KeepGoing: opts.keepGoing,
		Logger:    log,
	}
	if cfg.Port > 0 {
		server = preview.New(log)
		controllerOpts.OnDocument = func(doc *huma.OpenAPI) {
			if err := server.Publish(doc); err != nil {
				log.Warn("⚠️  Could not update the preview: %v", err)
			}
		}
	}

	ctrl := dev.NewController(pipeline, controllerOpts)
	if err := ctrl.Rebuild(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	if server != nil {
		port := cfg.Port
		g.Go(func() error { return server.ListenAndServe(ctx, port) })
	}
	if opts.watch {
		watcher, err := dev.NewWatcher(opts.root, opts.config, ctrl, log)
		if err != nil {
			return err
		}
		log.Info("👀 Watching %s for changes (Ctrl+C to stop)", pipeline.Sources().Root())
		g.Go(func() error { return watcher.Run(ctx) })
	}
	return g.Wait()
}
