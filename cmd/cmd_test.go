package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barisgit/fluxdoc/config"
	"github.com/barisgit/fluxdoc/internal/testutil"
)

func init() {
	color.NoColor = true
}

func newProject(t *testing.T) string {
	t.Helper()
	return testutil.CopyProject(t, "orders")
}

func TestGenerateWritesYAML(t *testing.T) {
	root := newProject(t)
	output := filepath.Join(t.TempDir(), "api.yaml")

	cmd := GenerateCmd()
	cmd.SetArgs([]string{root, "-o", output, "--format", "yaml", "--quiet"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "openapi: 3.1.0")
	assert.Contains(t, string(data), "/orders/{orderId}:")
	assert.Contains(t, string(data), "operationId: OrderController-Get")
}

func TestGenerateRejectsUnknownFormat(t *testing.T) {
	root := newProject(t)
	output := filepath.Join(t.TempDir(), "api.txt")

	cmd := GenerateCmd()
	cmd.SetArgs([]string{root, "-o", output, "--format", "xml", "--quiet"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.NoFileExists(t, output)
}

func TestGenerateUsesConfigFile(t *testing.T) {
	root := newProject(t)
	output := filepath.Join(root, "docs", "openapi.json")
	require.NoError(t, config.WriteConfig(filepath.Join(root, config.DefaultPath), &config.ProjectConfig{
		Output: output,
		Extends: config.ExtendsConfig{
			Info: &config.InfoConfig{Title: "Orders", Version: "3.0.0"},
		},
	}))

	cmd := GenerateCmd()
	cmd.SetArgs([]string{root, "--quiet"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Orders"`)
	assert.Contains(t, string(data), `"version": "3.0.0"`)
}

func TestInitWithDefaults(t *testing.T) {
	root := newProject(t)

	cmd := InitCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{root, "--yes"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Created configuration file")

	configPath := filepath.Join(root, config.DefaultPath)
	require.NoError(t, config.ValidateConfigFile(configPath))

	info, err := config.GetConfigInfo(configPath)
	require.NoError(t, err)
	assert.Equal(t, "orders", info.Title)
	assert.Equal(t, "openapi.json", info.Output)

	cmd = InitCmd()
	cmd.SetArgs([]string{root, "--yes"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.Error(t, cmd.Execute())
}

func TestConfigValidate(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("output: openapi.json\nfiles:\n  - \"**/*.go\"\n  - \"!**/*_test.go\"\n"), 0o644))
	bad := filepath.Join(root, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("format: xml\n"), 0o644))

	cmd := ConfigCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"validate", good})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Configuration is valid")

	cmd = ConfigCmd()
	cmd.SetOut(&out)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{"validate", bad})
	assert.Error(t, cmd.Execute())

	cmd = ConfigCmd()
	cmd.SetOut(&out)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{"validate", good, "--strict"})
	assert.Error(t, cmd.Execute())
}
