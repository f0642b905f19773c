package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/barisgit/fluxdoc/internal/diag"
)

func TestValidationError(t *testing.T) {
	err := ValidationError{
		Field:   "test_field",
		Value:   "test_value",
		Message: "test message",
	}

	expectedError := "config validation error in field 'test_field': test message (value: test_value)"
	if err.Error() != expectedError {
		t.Errorf("Expected error message '%s', got '%s'", expectedError, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	emptyErrs := ValidationErrors{}
	if emptyErrs.Error() != "no validation errors" {
		t.Errorf("Expected 'no validation errors', got '%s'", emptyErrs.Error())
	}
	if emptyErrs.HasErrors() {
		t.Error("Expected HasErrors() to be false for empty errors")
	}

	errs := ValidationErrors{
		ValidationError{Field: "field1", Value: "value1", Message: "message1"},
		ValidationError{Field: "field2", Value: "value2", Message: "message2"},
	}

	if !errs.HasErrors() {
		t.Error("Expected HasErrors() to be true for non-empty errors")
	}

	errorMsg := errs.Error()
	if !strings.Contains(errorMsg, "field1") || !strings.Contains(errorMsg, "field2") {
		t.Errorf("Expected error message to contain both fields, got '%s'", errorMsg)
	}
}

func TestDefaultLoadOptions(t *testing.T) {
	options := DefaultLoadOptions()

	if options.Path != "fluxdoc.yaml" {
		t.Errorf("Expected default path 'fluxdoc.yaml', got '%s'", options.Path)
	}
	if !options.AllowMissing {
		t.Error("Expected AllowMissing to be true by default")
	}
	if !options.ValidateStructure {
		t.Error("Expected ValidateStructure to be true by default")
	}
	if !options.ApplyDefaults {
		t.Error("Expected ApplyDefaults to be true by default")
	}
	if options.EnvFile != ".env" {
		t.Errorf("Expected env file '.env', got '%s'", options.EnvFile)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvOutput, EnvPort, EnvFormat} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestConfigManagerLoadConfigMissingFile(t *testing.T) {
	clearEnv(t)

	cm := NewConfigManager(ConfigLoadOptions{
		Path:         "nonexistent.yaml",
		AllowMissing: false,
	})

	_, err := cm.LoadConfig()
	if err == nil {
		t.Error("Expected error for missing file when AllowMissing is false")
	}

	cm2 := NewConfigManager(ConfigLoadOptions{
		Path:              "nonexistent.yaml",
		AllowMissing:      true,
		ApplyDefaults:     true,
		ValidateStructure: true,
		Quiet:             true,
	})

	config, err := cm2.LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error when AllowMissing is true, got %v", err)
	}
	if config.Output != "openapi.json" || config.Format != FormatJSON {
		t.Errorf("Expected default output openapi.json (json), got %s (%s)", config.Output, config.Format)
	}
	if len(config.Files) != 3 {
		t.Errorf("Expected default file globs, got %v", config.Files)
	}
}

func TestConfigManagerLoadConfigValidYAML(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "fluxdoc.yaml")

	validConfig := `
output: docs/openapi.yaml
port: 8080
files:
  - "api/**/*.go"
  - "!**/*_test.go"
examples:
  seed: 7
  optionals: always
extends:
  info:
    title: Shop API
    license:
      name: MIT
  servers:
    - url: https://api.example.com
  components:
    responses:
      "401":
        description: Unauthorized
`

	if err := os.WriteFile(configPath, []byte(validConfig), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cm := NewConfigManager(ConfigLoadOptions{
		Path:              configPath,
		ValidateStructure: true,
		ApplyDefaults:     true,
		Quiet:             true,
	})

	config, err := cm.LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error for valid config, got %v", err)
	}

	if config.Format != FormatYAML {
		t.Errorf("Expected format derived from output extension, got '%s'", config.Format)
	}
	if config.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", config.Port)
	}
	if config.Examples.Seed != 7 || config.Examples.Optionals != "always" {
		t.Errorf("Unexpected examples config %+v", config.Examples)
	}

	info := config.Info()
	if info == nil || info.Title != "Shop API" || info.Version != "1.0.0" {
		t.Fatalf("Unexpected info %+v", info)
	}
	if info.License == nil || info.License.Name != "MIT" {
		t.Errorf("Expected MIT license, got %+v", info.License)
	}
	if servers := config.Servers(); len(servers) != 1 || servers[0].URL != "https://api.example.com" {
		t.Errorf("Unexpected servers %+v", servers)
	}
	if resp := config.Responses()["401"]; resp == nil || resp.Description != "Unauthorized" {
		t.Errorf("Expected 401 response, got %+v", resp)
	}
}

func TestConfigManagerLoadConfigInvalidYAML(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid-config.yaml")

	invalidConfig := `
output: openapi.json
port: invalid-port
files: [invalid syntax
`

	if err := os.WriteFile(configPath, []byte(invalidConfig), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cm := NewConfigManager(ConfigLoadOptions{
		Path:  configPath,
		Quiet: true,
	})

	_, err := cm.LoadConfig()
	if err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
	if !errors.Is(err, diag.ErrConfigLoad) {
		t.Errorf("Expected a ConfigLoadError, got %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	cm := NewConfigManager(ConfigLoadOptions{})

	valid := func() ProjectConfig {
		return ProjectConfig{
			Output:   "openapi.json",
			Format:   FormatJSON,
			Files:    []string{"**/*.go"},
			Examples: ExamplesConfig{Optionals: "random"},
		}
	}

	tests := []struct {
		name           string
		mutate         func(c *ProjectConfig)
		expectedFields []string
	}{
		{
			name:   "valid config",
			mutate: func(c *ProjectConfig) {},
		},
		{
			name:           "empty output",
			mutate:         func(c *ProjectConfig) { c.Output = "" },
			expectedFields: []string{"output"},
		},
		{
			name:           "unsupported format",
			mutate:         func(c *ProjectConfig) { c.Format = "xml" },
			expectedFields: []string{"format"},
		},
		{
			name:           "invalid port",
			mutate:         func(c *ProjectConfig) { c.Port = 70000 },
			expectedFields: []string{"port"},
		},
		{
			name:           "invalid optionals policy",
			mutate:         func(c *ProjectConfig) { c.Examples.Optionals = "sometimes" },
			expectedFields: []string{"examples.optionals"},
		},
		{
			name: "invalid response key",
			mutate: func(c *ProjectConfig) {
				c.Extends.Components.Responses = map[string]ResponseConfig{"oops": {Description: "x"}}
			},
			expectedFields: []string{"extends.components.responses"},
		},
		{
			name:           "server without url",
			mutate:         func(c *ProjectConfig) { c.Extends.Servers = []ServerConfig{{Description: "prod"}} },
			expectedFields: []string{"extends.servers[0].url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(&config)

			errs := cm.validateConfig(&config)
			if len(tt.expectedFields) == 0 {
				if errs.HasErrors() {
					t.Errorf("Expected no errors, got %v", errs)
				}
				return
			}

			for _, field := range tt.expectedFields {
				found := false
				for _, err := range errs {
					if err.Field == field {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("Expected error for field '%s', got %v", field, errs)
				}
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env")
	if err := os.WriteFile(envPath, []byte("FLUXDOC_OUTPUT=from-dotenv.json\nFLUXDOC_PORT=4000\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	t.Setenv(EnvPort, "5000")

	cm := NewConfigManager(ConfigLoadOptions{
		Path:          filepath.Join(tmpDir, "missing.yaml"),
		EnvFile:       envPath,
		AllowMissing:  true,
		ApplyDefaults: true,
		Quiet:         true,
	})

	config, err := cm.LoadConfig()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if config.Output != "from-dotenv.json" {
		t.Errorf("Expected output from .env, got '%s'", config.Output)
	}
	if config.Port != 5000 {
		t.Errorf("Expected process environment to win, got %d", config.Port)
	}

	t.Setenv(EnvPort, "not-a-number")
	if _, err := cm.LoadConfig(); !errors.Is(err, diag.ErrConfigLoad) {
		t.Errorf("Expected ConfigLoadError for bad port, got %v", err)
	}
}

func TestDeprecatedGlobs(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "fluxdoc.yaml")
	if err := os.WriteFile(configPath, []byte("globs:\n  - \"src/**/*.go\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := NewConfigManager(ConfigLoadOptions{
		Path:          configPath,
		ApplyDefaults: true,
		Quiet:         true,
	}).LoadConfig()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(config.Files) != 1 || config.Files[0] != "src/**/*.go" {
		t.Errorf("Expected globs to populate files, got %v", config.Files)
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "fluxdoc.yaml")
	cm := NewConfigManager(ConfigLoadOptions{Path: path, AllowMissing: true, ApplyDefaults: true, Quiet: true})
	defaults := cm.createDefaultConfig()
	defaults.Port = 9000

	if err := WriteConfig(path, defaults); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	if err := ValidateConfigFile(path); err != nil {
		t.Errorf("Expected written config to validate, got %v", err)
	}

	info, err := GetConfigInfo(path)
	if err != nil {
		t.Fatalf("GetConfigInfo failed: %v", err)
	}
	if info.Port != 9000 || !strings.Contains(info.String(), "Preview Port: 9000") {
		t.Errorf("Unexpected info %s", info.String())
	}
}
