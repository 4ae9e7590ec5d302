package logger

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

var (
	validLevels  = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}
	validFormats = []string{"json", "console"}
	validOutputs = []string{"console", "file", "both"}
)

// Config defines the logger configuration
type Config struct {
	Level            string     `mapstructure:"level"`  // debug, info, warn, error
	Format           string     `mapstructure:"format"` // json, console
	Output           string     `mapstructure:"output"` // console, file, both
	File             FileConfig `mapstructure:"file"`
	EnableCaller     bool       `mapstructure:"enable_caller"`
	EnableStacktrace bool       `mapstructure:"enable_stacktrace"` // stacktrace on error level
}

// FileConfig defines rotating file output
type FileConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxAge     int    `mapstructure:"max_age"`  // days
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:            "info",
		Format:           "json",
		Output:           "console",
		EnableCaller:     true,
		EnableStacktrace: true,
		File: FileConfig{
			Filename:   "logs/search.log",
			MaxSize:    100,
			MaxAge:     30,
			MaxBackups: 10,
			Compress:   true,
		},
	}
}

// Validate validates the logger configuration
func (c *Config) Validate() error {
	if !lo.Contains(validLevels, strings.ToLower(c.Level)) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Level, strings.Join(validLevels, ", "))
	}
	if !lo.Contains(validFormats, c.Format) {
		return fmt.Errorf("invalid log format %q, must be 'json' or 'console'", c.Format)
	}
	if !lo.Contains(validOutputs, c.Output) {
		return fmt.Errorf("invalid log output %q, must be 'console', 'file' or 'both'", c.Output)
	}

	if c.Output == "console" {
		return nil
	}
	switch {
	case c.File.Filename == "":
		return fmt.Errorf("log file filename is required when output is %q", c.Output)
	case c.File.MaxSize <= 0:
		return fmt.Errorf("log file max_size must be greater than 0")
	case c.File.MaxAge <= 0:
		return fmt.Errorf("log file max_age must be greater than 0")
	case c.File.MaxBackups < 0:
		return fmt.Errorf("log file max_backups must be >= 0")
	}
	return nil
}
