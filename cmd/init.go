package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/barisgit/fluxdoc/config"
	"github.com/barisgit/fluxdoc/internal/examples"
	assembly "github.com/barisgit/fluxdoc/internal/openapi"
)

// InitCmd writes a starter configuration file.
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [project-dir]",
		Short: "Create a fluxdoc.yaml configuration file",
		Long:  "Create a fluxdoc.yaml configuration file, asking for the document metadata unless --yes is given",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}

	cmd.Flags().BoolP("yes", "y", false, "Accept the defaults without prompting")
	cmd.Flags().Bool("force", false, "Overwrite an existing configuration file")

	return cmd
}

type initAnswers struct {
	Title     string
	Version   string
	Server    string
	Output    string
	Optionals string
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	yes, _ := cmd.Flags().GetBool("yes")
	force, _ := cmd.Flags().GetBool("force")

	configPath := filepath.Join(root, config.DefaultPath)
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s\nUse --force to overwrite", configPath)
		}
	}

	answers := defaultAnswers(root)
	if !yes {
		if err := survey.Ask(initQuestions(answers), &answers); err != nil {
			return err
		}
	}

	cfg := buildConfig(answers)
	if err := config.WriteConfig(configPath, cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ Created configuration file: %s\n", configPath)
	fmt.Fprintf(out, "   Title: %s\n", answers.Title)
	fmt.Fprintf(out, "   Output: %s\n", cfg.Output)
	fmt.Fprintf(out, "\nNext steps:\n  fluxdoc generate %s\n", root)
	return nil
}

func defaultAnswers(root string) initAnswers {
	answers := initAnswers{
		Title:     "API",
		Version:   "1.0.0",
		Output:    "openapi.json",
		Optionals: string(examples.PolicyRandom),
	}
	if info, err := assembly.ProjectInfo(root); err == nil {
		answers.Title = info.Title
	} else if abs, err := filepath.Abs(root); err == nil {
		answers.Title = filepath.Base(abs)
	}
	return answers
}

func initQuestions(defaults initAnswers) []*survey.Question {
	return []*survey.Question{
		{
			Name:     "title",
			Prompt:   &survey.Input{Message: "API title:", Default: defaults.Title},
			Validate: survey.Required,
		},
		{
			Name:     "version",
			Prompt:   &survey.Input{Message: "API version:", Default: defaults.Version},
			Validate: survey.Required,
		},
		{
			Name:   "server",
			Prompt: &survey.Input{Message: "Server URL (optional):"},
		},
		{
			Name:     "output",
			Prompt:   &survey.Input{Message: "Output file:", Default: defaults.Output},
			Validate: survey.Required,
		},
		{
			Name: "optionals",
			Prompt: &survey.Select{
				Message: "Optional properties in examples:",
				Options: []string{string(examples.PolicyRandom), string(examples.PolicyAlways), string(examples.PolicyNever)},
				Default: defaults.Optionals,
			},
		},
	}
}

func buildConfig(answers initAnswers) *config.ProjectConfig {
	cfg := config.Default()
	cfg.Output = answers.Output
	switch strings.ToLower(filepath.Ext(answers.Output)) {
	case ".yaml", ".yml":
		cfg.Format = config.FormatYAML
	}
	cfg.Examples.Optionals = answers.Optionals
	cfg.Extends.Info = &config.InfoConfig{Title: answers.Title, Version: answers.Version}
	if answers.Server != "" {
		cfg.Extends.Servers = []config.ServerConfig{{URL: answers.Server}}
	}
	return cfg
}
