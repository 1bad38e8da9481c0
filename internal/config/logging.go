package config

// LoggingConfig configures the logging package. Mirrors
// logging.LoggingConfig field-for-field since logging must not import
// config (it would create a cycle); Config.ToLoggingConfig converts between
// the two.
type LoggingConfig struct {
	Level      string          `yaml:"level"`
	DebugMode  bool            `yaml:"debug_mode"`
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
}
