package logging

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnv. Each overrides the matching
// Config field when set.
const (
	// EnvLogLevel sets Level: debug, info, warn or error.
	EnvLogLevel = "RESOCKET_LOG_LEVEL"
	// EnvLogFormat sets Format: text, json or console.
	EnvLogFormat = "RESOCKET_LOG_FORMAT"
	// EnvLogFile sets File, the path of a rotating log file.
	EnvLogFile = "RESOCKET_LOG_FILE"
	// EnvLogNoColor sets NoColor. The value is parsed with strconv.ParseBool.
	EnvLogNoColor = "RESOCKET_LOG_NOCOLOR"
)

// Output formats.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config holds logging configuration.
type Config struct {
	Level   string `toml:"level" yaml:"level"`
	Format  string `toml:"format" yaml:"format"`
	NoColor bool   `toml:"no_color" yaml:"no_color"`

	// File, when set, sends output to a rotating file instead of stderr.
	File           string `toml:"file" yaml:"file"`
	FileMaxSizeMB  int    `toml:"file_max_size_mb" yaml:"file_max_size_mb"`
	FileMaxBackups int    `toml:"file_max_backups" yaml:"file_max_backups"`
	FileMaxAgeDays int    `toml:"file_max_age_days" yaml:"file_max_age_days"`
}

// DefaultConfig returns text output at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:          "info",
		Format:         FormatText,
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// Merge returns d with every set field of c applied on top.
func (c Config) Merge(d Config) Config {
	if c.Level != "" {
		d.Level = c.Level
	}
	if c.Format != "" {
		d.Format = c.Format
	}
	if c.NoColor {
		d.NoColor = true
	}
	if c.File != "" {
		d.File = c.File
	}
	if c.FileMaxSizeMB > 0 {
		d.FileMaxSizeMB = c.FileMaxSizeMB
	}
	if c.FileMaxBackups > 0 {
		d.FileMaxBackups = c.FileMaxBackups
	}
	if c.FileMaxAgeDays > 0 {
		d.FileMaxAgeDays = c.FileMaxAgeDays
	}
	return d
}

// ApplyEnv overrides cfg from the RESOCKET_LOG_* environment variables.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Format = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.File = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
