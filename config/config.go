package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/barisgit/fluxdoc/internal/diag"
	"github.com/barisgit/fluxdoc/internal/examples"
	"github.com/barisgit/fluxdoc/internal/logging"
	"github.com/barisgit/fluxdoc/internal/source"
)

// DefaultPath is the configuration file looked up in the project root.
const DefaultPath = "fluxdoc.yaml"

// Environment variables overriding the configuration file.
const (
	EnvOutput = "FLUXDOC_OUTPUT"
	EnvPort   = "FLUXDOC_PORT"
	EnvFormat = "FLUXDOC_FORMAT"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error in field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return "no validation errors"
	}

	var messages []string
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

func (errs ValidationErrors) HasErrors() bool {
	return len(errs) > 0
}

// ConfigLoadOptions provides options for loading configuration
type ConfigLoadOptions struct {
	Path              string
	EnvFile           string
	AllowMissing      bool
	ValidateStructure bool
	ApplyDefaults     bool
	WarnOnDeprecated  bool
	Quiet             bool
	Logger            *logging.Logger
}

// DefaultLoadOptions returns sensible defaults for config loading. A missing
// file means "use defaults".
func DefaultLoadOptions() ConfigLoadOptions {
	return ConfigLoadOptions{
		Path:              DefaultPath,
		EnvFile:           ".env",
		AllowMissing:      true,
		ValidateStructure: true,
		ApplyDefaults:     true,
		WarnOnDeprecated:  true,
		Quiet:             false,
	}
}

// ConfigManager handles configuration loading, validation, and management
type ConfigManager struct {
	options ConfigLoadOptions
}

// NewConfigManager creates a new configuration manager
func NewConfigManager(options ConfigLoadOptions) *ConfigManager {
	return &ConfigManager{
		options: options,
	}
}

// Path returns the configuration file the manager reads.
func (cm *ConfigManager) Path() string {
	return cm.options.Path
}

// LoadConfig loads and validates the configuration with comprehensive error handling
func (cm *ConfigManager) LoadConfig() (*ProjectConfig, error) {
	return cm.LoadConfigFromPath(cm.options.Path)
}

// LoadConfigFromPath loads configuration from a specific path. A file that exists
// but cannot be parsed or validated yields a ConfigLoadError.
func (cm *ConfigManager) LoadConfigFromPath(path string) (*ProjectConfig, error) {
	var config *ProjectConfig

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if !cm.options.AllowMissing {
			return nil, fmt.Errorf("configuration file not found: %s\n\nRun 'fluxdoc init' to create one", path)
		}
		if !cm.options.Quiet {
			cm.options.Logger.Debug("Configuration file not found at %s, using defaults", path)
		}
		config = cm.createDefaultConfig()
	case err != nil:
		return nil, diag.ConfigLoad(path, err)
	default:
		config = &ProjectConfig{}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, diag.ConfigLoad(path, fmt.Errorf("please check your YAML syntax: %w", err))
		}
	}

	if err := cm.applyEnv(config); err != nil {
		return nil, diag.ConfigLoad(path, err)
	}

	if cm.options.WarnOnDeprecated && !cm.options.Quiet {
		cm.checkDeprecatedFields(config)
	}

	if cm.options.ApplyDefaults {
		cm.applyDefaults(config)
	}

	if cm.options.ValidateStructure {
		if errs := cm.validateConfig(config); errs.HasErrors() {
			return nil, diag.ConfigLoad(path, fmt.Errorf("configuration validation failed:\n%s", cm.formatValidationErrors(errs)))
		}
	}

	return config, nil
}

// applyEnv applies FLUXDOC_* overrides from the process environment, falling back
// to the optional .env file.
func (cm *ConfigManager) applyEnv(config *ProjectConfig) error {
	fileEnv := map[string]string{}
	if cm.options.EnvFile != "" {
		env, err := godotenv.Read(cm.options.EnvFile)
		switch {
		case err == nil:
			fileEnv = env
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("failed to read %s: %w", cm.options.EnvFile, err)
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}

	if v, ok := lookup(EnvOutput); ok && v != "" {
		config.Output = v
	}
	if v, ok := lookup(EnvFormat); ok && v != "" {
		config.Format = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", EnvPort, err)
		}
		config.Port = port
	}
	return nil
}

// validateConfig performs comprehensive validation on the configuration
func (cm *ConfigManager) validateConfig(config *ProjectConfig) ValidationErrors {
	var errs ValidationErrors

	if config.Output == "" {
		errs = append(errs, ValidationError{
			Field:   "output",
			Value:   config.Output,
			Message: "output path cannot be empty",
		})
	}

	validFormats := []string{FormatJSON, FormatYAML}
	if !contains(validFormats, config.Format) {
		errs = append(errs, ValidationError{
			Field:   "format",
			Value:   config.Format,
			Message: fmt.Sprintf("unsupported format '%s', valid options are: %s", config.Format, strings.Join(validFormats, ", ")),
		})
	}

	if config.Port < 0 || config.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "port",
			Value:   config.Port,
			Message: "port must be between 0 and 65535",
		})
	}

	if _, err := examples.ParsePolicy(config.Examples.Optionals); err != nil {
		errs = append(errs, ValidationError{
			Field:   "examples.optionals",
			Value:   config.Examples.Optionals,
			Message: "valid options are: random, always, never",
		})
	}

	for code, resp := range config.Extends.Components.Responses {
		if !validStatus(code) {
			errs = append(errs, ValidationError{
				Field:   "extends.components.responses",
				Value:   code,
				Message: "response keys must be HTTP status codes or 'default'",
			})
		}
		if resp.Description == "" {
			errs = append(errs, ValidationError{
				Field:   "extends.components.responses." + code + ".description",
				Value:   resp.Description,
				Message: "response description cannot be empty",
			})
		}
	}

	if info := config.Extends.Info; info != nil && info.Title == "" {
		errs = append(errs, ValidationError{
			Field:   "extends.info.title",
			Value:   info.Title,
			Message: "title cannot be empty when info is set",
		})
	}

	for i, server := range config.Extends.Servers {
		if server.URL == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("extends.servers[%d].url", i),
				Value:   server.URL,
				Message: "server url cannot be empty",
			})
		}
	}

	return errs
}

// applyDefaults sets default values for missing configuration fields
func (cm *ConfigManager) applyDefaults(config *ProjectConfig) {
	if config.Output == "" {
		config.Output = "openapi.json"
	}

	if config.Format == "" {
		switch strings.ToLower(filepath.Ext(config.Output)) {
		case ".yaml", ".yml":
			config.Format = FormatYAML
		default:
			config.Format = FormatJSON
		}
	}

	if len(config.Files) == 0 {
		if len(config.Globs) > 0 {
			config.Files = config.Globs
		} else {
			config.Files = append([]string(nil), source.DefaultGlobs...)
		}
	}

	if config.Examples.Optionals == "" {
		config.Examples.Optionals = string(examples.PolicyRandom)
	}

	if info := config.Extends.Info; info != nil && info.Version == "" {
		info.Version = "1.0.0"
	}
}

// checkDeprecatedFields warns about deprecated configuration fields
func (cm *ConfigManager) checkDeprecatedFields(config *ProjectConfig) {
	if len(config.Globs) > 0 {
		cm.options.Logger.Warn("Deprecated field 'globs' is replaced by 'files'")
		cm.options.Logger.Warn("   Consider renaming it in your %s", filepath.Base(cm.options.Path))
	}
}

// createDefaultConfig creates a default configuration when no config file exists
func (cm *ConfigManager) createDefaultConfig() *ProjectConfig {
	return Default()
}

// Default returns the configuration used when no file is present.
func Default() *ProjectConfig {
	return &ProjectConfig{
		Output: "openapi.json",
		Format: FormatJSON,
		Files:  append([]string(nil), source.DefaultGlobs...),
		Examples: ExamplesConfig{
			Seed:      1,
			Optionals: string(examples.PolicyRandom),
		},
	}
}

// formatValidationErrors formats validation errors in a user-friendly way
func (cm *ConfigManager) formatValidationErrors(errs ValidationErrors) string {
	var lines []string
	for i, err := range errs {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}
	return strings.Join(lines, "\n")
}

// ValidateConfigFile validates a configuration file without applying overrides
func ValidateConfigFile(path string) error {
	cm := NewConfigManager(ConfigLoadOptions{
		Path:              path,
		AllowMissing:      false,
		ValidateStructure: true,
		ApplyDefaults:     true,
		WarnOnDeprecated:  false,
		Quiet:             true,
	})

	_, err := cm.LoadConfigFromPath(path)
	return err
}

// WriteConfig writes config as YAML to path.
func WriteConfig(path string, config *ProjectConfig) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// GetConfigInfo returns information about the current configuration
func GetConfigInfo(path string) (*ConfigInfo, error) {
	options := DefaultLoadOptions()
	options.Path = path
	options.Quiet = true
	config, err := NewConfigManager(options).LoadConfig()
	if err != nil {
		return nil, err
	}

	absPath, _ := filepath.Abs(path)

	info := &ConfigInfo{
		Path:      absPath,
		Output:    config.Output,
		Format:    config.Format,
		Port:      config.Port,
		Files:     config.Files,
		Optionals: config.Examples.Optionals,
		Servers:   len(config.Extends.Servers),
		Responses: len(config.Extends.Components.Responses),
	}
	if config.Extends.Info != nil {
		info.Title = config.Extends.Info.Title
	}
	return info, nil
}

// ConfigInfo contains summary information about a configuration
type ConfigInfo struct {
	Path      string
	Title     string
	Output    string
	Format    string
	Port      int
	Files     []string
	Optionals string
	Servers   int
	Responses int
}

// String returns a formatted string representation of config info
func (info *ConfigInfo) String() string {
	var lines []string
	lines = append(lines, "📋 Configuration Summary")
	lines = append(lines, fmt.Sprintf("   Path: %s", info.Path))
	if info.Title != "" {
		lines = append(lines, fmt.Sprintf("   Title: %s", info.Title))
	}
	lines = append(lines, fmt.Sprintf("   Output: %s (%s)", info.Output, info.Format))
	if info.Port > 0 {
		lines = append(lines, fmt.Sprintf("   Preview Port: %d", info.Port))
	}
	lines = append(lines, fmt.Sprintf("   Files: %s", strings.Join(info.Files, ", ")))
	lines = append(lines, fmt.Sprintf("   Optional Examples: %s", info.Optionals))
	lines = append(lines, fmt.Sprintf("   Servers: %d", info.Servers))
	lines = append(lines, fmt.Sprintf("   Extra Responses: %d", info.Responses))

	return strings.Join(lines, "\n")
}

// Helper functions

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func validStatus(code string) bool {
	if code == "default" {
		return true
	}
	n, err := strconv.Atoi(code)
	return err == nil && n >= 100 && n <= 599
}

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type ProjectConfig struct {
	Output   string         `yaml:"output"`
	Format   string         `yaml:"format"`
	Port     int            `yaml:"port,omitempty"`
	Files    []string       `yaml:"files"`
	Globs    []string       `yaml:"globs,omitempty"` // Deprecated: use files
	Examples ExamplesConfig `yaml:"examples"`
	Extends  ExtendsConfig  `yaml:"extends,omitempty"`
}

type ExamplesConfig struct {
	Disabled  bool   `yaml:"disabled,omitempty"`
	Seed      int64  `yaml:"seed"`
	Optionals string `yaml:"optionals"` // "random", "always", "never"
}

// ExtendsConfig is merged into every generated document.
type ExtendsConfig struct {
	Info       *InfoConfig      `yaml:"info,omitempty"`
	Servers    []ServerConfig   `yaml:"servers,omitempty"`
	Components ComponentsConfig `yaml:"components,omitempty"`
}

type InfoConfig struct {
	Title          string         `yaml:"title"`
	Description    string         `yaml:"description,omitempty"`
	Version        string         `yaml:"version"`
	TermsOfService string         `yaml:"terms_of_service,omitempty"`
	Contact        *ContactConfig `yaml:"contact,omitempty"`
	License        *LicenseConfig `yaml:"license,omitempty"`
}

type ContactConfig struct {
	Name  string `yaml:"name,omitempty"`
	URL   string `yaml:"url,omitempty"`
	Email string `yaml:"email,omitempty"`
}

type LicenseConfig struct {
	Name       string `yaml:"name"`
	Identifier string `yaml:"identifier,omitempty"`
	URL        string `yaml:"url,omitempty"`
}

type ServerConfig struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description,omitempty"`
}

type ComponentsConfig struct {
	Responses map[string]ResponseConfig `yaml:"responses,omitempty"`
}

type ResponseConfig struct {
	Description string `yaml:"description"`
}

// Info converts extends.info, or returns nil when it is not set.
func (c *ProjectConfig) Info() *huma.Info {
	in := c.Extends.Info
	if in == nil {
		return nil
	}
	info := &huma.Info{
		Title:          in.Title,
		Description:    in.Description,
		Version:        in.Version,
		TermsOfService: in.TermsOfService,
	}
	if in.Contact != nil {
		info.Contact = &huma.Contact{Name: in.Contact.Name, URL: in.Contact.URL, Email: in.Contact.Email}
	}
	if in.License != nil {
		info.License = &huma.License{Name: in.License.Name, Identifier: in.License.Identifier, URL: in.License.URL}
	}
	return info
}

// Servers converts extends.servers.
func (c *ProjectConfig) Servers() []*huma.Server {
	var servers []*huma.Server
	for _, s := range c.Extends.Servers {
		servers = append(servers, &huma.Server{URL: s.URL, Description: s.Description})
	}
	return servers
}

// Responses converts extends.components.responses.
func (c *ProjectConfig) Responses() map[string]*huma.Response {
	out := make(map[string]*huma.Response, len(c.Extends.Components.Responses))
	for code, r := range c.Extends.Components.Responses {
		out[code] = &huma.Response{Description: r.Description}
	}
	return out
}
