package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/barisgit/fluxdoc/config"
)

func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage project configuration",
		Long:  "Validate and view your fluxdoc configuration",
	}

	cmd.AddCommand(configValidateCmd())
	cmd.AddCommand(configShowCmd())

	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate configuration file",
		Long:  "Validate the syntax and structure of a fluxdoc configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigValidate,
	}

	cmd.Flags().Bool("strict", false, "Enable strict validation (fail on warnings)")

	return cmd
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [config-file]",
		Short: "Show configuration information",
		Long:  "Display detailed information about the current configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigShow,
	}

	cmd.Flags().Bool("verbose", false, "Show the configuration with defaults applied")

	return cmd
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath(args)
	strict, _ := cmd.Flags().GetBool("strict")
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "🔍 Validating configuration file: %s\n", configPath)

	cm := config.NewConfigManager(config.ConfigLoadOptions{
		Path:              configPath,
		AllowMissing:      false,
		ValidateStructure: true,
		ApplyDefaults:     true,
		WarnOnDeprecated:  true,
	})

	cfg, err := cm.LoadConfigFromPath(configPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✅ Configuration is valid!\n")

	if info, err := config.GetConfigInfo(configPath); err == nil {
		fmt.Fprintf(out, "\n%s\n", info.String())
	}

	if issues := checkConfigIssues(cfg); len(issues) > 0 {
		fmt.Fprintf(out, "\n⚠️  Potential issues found:\n")
		for i, issue := range issues {
			fmt.Fprintf(out, "  %d. %s\n", i+1, issue)
		}
		if strict {
			return fmt.Errorf("strict validation failed due to %d issue(s)", len(issues))
		}
	}

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath(args)
	verbose, _ := cmd.Flags().GetBool("verbose")
	out := cmd.OutOrStdout()

	info, err := config.GetConfigInfo(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Fprintf(out, "%s\n", info.String())

	if verbose {
		fmt.Fprintf(out, "\n📝 Detailed Configuration:\n")

		options := config.DefaultLoadOptions()
		options.Path = configPath
		options.Quiet = true
		cfg, err := config.NewConfigManager(options).LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load full configuration: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal configuration: %w", err)
		}

		fmt.Fprintf(out, "```yaml\n%s```\n", string(data))
	}

	return nil
}

func getConfigPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.DefaultPath
}

func checkConfigIssues(cfg *config.ProjectConfig) []string {
	var issues []string

	if len(cfg.Globs) > 0 {
		issues = append(issues, "Deprecated field 'globs' is set - rename it to 'files'")
	}

	if cfg.Extends.Info == nil {
		issues = append(issues, "No extends.info configured - the title will be taken from go.mod")
	}

	excludesTests := false
	for _, pattern := range cfg.Files {
		if strings.HasPrefix(pattern, "!") && strings.Contains(pattern, "_test.go") {
			excludesTests = true
		}
	}
	if !excludesTests {
		issues = append(issues, "Test files are not excluded from 'files' - add \"!**/*_test.go\"")
	}

	if cfg.Examples.Disabled {
		issues = append(issues, "Example generation is disabled")
	}

	return issues
}
