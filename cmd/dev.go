package cmd

import (
	"github.com/spf13/cobra"

	"github.com/barisgit/fluxdoc/config"
)

// DefaultPreviewPort is the preview port of the dev command.
const DefaultPreviewPort = 4000

// DevCmd is generate with watching and the preview server enabled.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev [project-dir]",
		Short: "Watch a project and serve a live preview of its document",
		Long:  "Regenerate the OpenAPI document on every change and serve it with a Redoc preview. Failed passes are reported without stopping.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDev,
	}

	addGenerateFlags(cmd)
	return cmd
}

func runDev(cmd *cobra.Command, args []string) error {
	opts := readGenerateOptions(cmd, args)
	opts.watch = true
	if !cmd.Flags().Changed("keep-going") {
		opts.keepGoing = true
	}

	flagOverride := opts.override
	portSet := cmd.Flags().Changed("port")
	opts.override = func(cfg *config.ProjectConfig) {
		flagOverride(cfg)
		if !portSet && cfg.Port == 0 {
			cfg.Port = DefaultPreviewPort
		}
	}
	return generate(cmd.Context(), opts)
}
