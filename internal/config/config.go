package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"drupalls/internal/logging"
)

// ScanConfig controls the indexer's parallel workspace walk.
type ScanConfig struct {
	MaxConcurrency int      `yaml:"max_concurrency"`
	MaxFileBytes   int64    `yaml:"max_file_bytes"`
	IncludeGlobs   []string `yaml:"include_globs"`
	ExcludeGlobs   []string `yaml:"exclude_globs"`
}

// SnippetConfig holds paths to override files for the completion engine's
// hook-skeleton and global-snippet templates. The paths are loaded and saved
// with the rest of the config, but the completion engine does not read them:
// it always uses its built-in templates.
type SnippetConfig struct {
	HookTemplatePath string `yaml:"hook_template_path"`
	GlobalSnippetsPath string `yaml:"global_snippets_path"`
}

// WatchConfig controls the optional fsnotify-driven live-reindex mode.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Config holds the language server's full configuration.
type Config struct {
	WorkspaceRoot string        `yaml:"workspace_root"`
	Scan          ScanConfig    `yaml:"scan"`
	Logging       LoggingConfig `yaml:"logging"`
	Snippets      SnippetConfig `yaml:"snippets"`
	Watch         WatchConfig   `yaml:"watch"`
}

var defaultIgnoreGlobs = []string{
	"vendor",
	"node_modules",
	"libraries",
}

func defaultScanConcurrency() int {
	n := runtime.NumCPU()
	if n < 4 {
		return 4
	}
	if n > 20 {
		return 20
	}
	return n
}

// DefaultConfig returns the server's default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			MaxConcurrency: defaultScanConcurrency(),
			MaxFileBytes:   4 << 20, // 4MB
			IncludeGlobs: []string{
				"**/*.services.yml",
				"**/*.routing.yml",
				"**/*.permissions.yml",
				"**/src/**/*.php",
				"**/core/lib/**/*.php",
				"**/*.module",
				"**/*.theme",
				"**/*.install",
			},
			ExcludeGlobs: []string{
				"**/src/**/*Interface.php",
				"**/core/lib/**/*Interface.php",
				"**/Plugin/**/*.php",
			},
		},
		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults (with
// environment overrides applied) when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes configuration to a YAML file, creating parent directories as
// needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies the server's environment-variable overrides,
// following the teacher's NERD_FAST_SCAN_WORKERS / NERD_FAST_AST_MAX_BYTES
// convention under a renamed prefix.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DRUPALLS_SCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Scan.MaxConcurrency = n
		}
	}
	if v := os.Getenv("DRUPALLS_MAX_FILE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.Scan.MaxFileBytes = n
		}
	}
	if v := os.Getenv("DRUPALLS_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
	}
	if v := os.Getenv("DRUPALLS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// ToLoggingConfig converts the embedded config into the shape the logging
// package expects.
func (c *Config) ToLoggingConfig() logging.LoggingConfig {
	return logging.LoggingConfig{
		DebugMode:  c.Logging.DebugMode,
		Level:      c.Logging.Level,
		JSONFormat: c.Logging.JSONFormat,
		Categories: c.Logging.Categories,
	}
}
