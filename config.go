package main

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Category handling modes for the skeleton renderer.
const (
	categoryModeProductionOnly  = "production_only"
	categoryModePreserveSandbox = "preserve_sandbox"
)

// Environment inputs.
const (
	envAPIKey  = "DRAFTMILL_API_KEY"
	envAPIBase = "DRAFTMILL_API_BASE"
	envModel   = "DRAFTMILL_MODEL"
	envRoot    = "DRAFTMILL_ROOT"
)

const defaultAPIBase = "https://api.openai.com"

//go:embed defaults/config.yaml
var defaultConfig string

// Settings is the project configuration stored at content/config.yaml.
type Settings struct {
	ProductionCategory string   `yaml:"production_category"`
	SandboxCategories  []string `yaml:"sandbox_categories"`
	CategoryMode       string   `yaml:"category_mode"`
	Model              string   `yaml:"model"`
	QualityRetries     int      `yaml:"quality_retries"`
	RefreshDays        int      `yaml:"refresh_days"`
	StrictQA           bool     `yaml:"strict_qa"`
	BlockOnFailure     bool     `yaml:"block_on_failure"`
}

// Config holds the resolved project root, settings, and credentials.
type Config struct {
	Root     string
	Settings *Settings
	APIKey   string
	APIBase  string
	Model    string
}

// NewConfig resolves the project root, materialises missing defaults, and
// loads settings. Missing root or unreadable settings are configuration
// faults; the API key is checked later by the stages that call the model.
func NewConfig(root string) (*Config, error) {
	if root == "" {
		root = os.Getenv(envRoot)
	}
	if root == "" {
		root = "."
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("project root %s: %w", root, err)
	}

	cfg := &Config{Root: root, APIKey: os.Getenv(envAPIKey)}

	if err := cfg.ensureProject(); err != nil {
		return nil, err
	}

	settings, err := loadSettings(cfg.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	cfg.Settings = settings

	cfg.APIBase = os.Getenv(envAPIBase)
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	cfg.Model = os.Getenv(envModel)
	if cfg.Model == "" {
		cfg.Model = settings.Model
	}
	return cfg, nil
}

// RequireAPIKey fails with a configuration error when no credential is set.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("API credential required: set %s", envAPIKey)
	}
	return nil
}

// Project layout.
func (c *Config) ContentDir() string   { return filepath.Join(c.Root, "content") }
func (c *Config) ArticlesDir() string  { return filepath.Join(c.ContentDir(), "articles") }
func (c *Config) TemplatesDir() string { return filepath.Join(c.Root, "templates") }
func (c *Config) LogsDir() string      { return filepath.Join(c.Root, "logs") }
func (c *Config) ConfigPath() string   { return filepath.Join(c.ContentDir(), "config.yaml") }
func (c *Config) UseCasesPath() string { return filepath.Join(c.ContentDir(), "use_cases.yaml") }
func (c *Config) QueuePath() string    { return filepath.Join(c.ContentDir(), "queue.yaml") }
func (c *Config) ToolsPath() string {
	return filepath.Join(c.ContentDir(), "affiliate_tools.yaml")
}
func (c *Config) MappingPath() string {
	return filepath.Join(c.ContentDir(), "use_case_tools_mapping.yaml")
}
func (c *Config) CostsPath() string   { return filepath.Join(c.LogsDir(), "costs.json") }
func (c *Config) JournalPath() string { return filepath.Join(c.LogsDir(), "pipeline_errors.log") }

// categoryWhitelist returns the production category plus the sandbox set.
func (c *Config) categoryWhitelist() []string {
	return append([]string{c.Settings.ProductionCategory}, c.Settings.SandboxCategories...)
}

// ensureProject creates the directory skeleton and writes embedded defaults
// for anything missing, so a fresh checkout is runnable immediately.
func (c *Config) ensureProject() error {
	for _, dir := range []string{c.ContentDir(), c.ArticlesDir(), c.LogsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := ensureTemplates(c.TemplatesDir()); err != nil {
		return err
	}
	if _, err := os.Stat(c.ConfigPath()); os.IsNotExist(err) {
		if err := os.WriteFile(c.ConfigPath(), []byte(defaultConfig), 0644); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}
	return nil
}

// loadSettings parses settings and backfills defaults for absent fields.
func loadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if settings.ProductionCategory == "" {
		settings.ProductionCategory = "operations"
	}
	if settings.CategoryMode == "" {
		settings.CategoryMode = categoryModeProductionOnly
	}
	if settings.CategoryMode != categoryModeProductionOnly && settings.CategoryMode != categoryModePreserveSandbox {
		log.Printf("Warning: unknown category_mode %q, using %s", settings.CategoryMode, categoryModeProductionOnly)
		settings.CategoryMode = categoryModeProductionOnly
	}
	if settings.Model == "" {
		settings.Model = "gpt-5-mini"
	}
	if settings.QualityRetries <= 0 {
		settings.QualityRetries = 3
	}
	if settings.RefreshDays <= 0 {
		settings.RefreshDays = 90
	}
	return &settings, nil
}
