package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string   `toml:"-"`
	Test     TestConfig `toml:"test"`
	Go       GoConfig   `toml:"go"`
	Log      LogConfig  `toml:"log"`
}

// GoConfig holds settings for the go toolchain from [go] section.
type GoConfig struct {
	Binary string `toml:"binary,omitempty"` // Go executable (default: "go")
}

// TestConfig holds settings for go test runs from [test] section.
type TestConfig struct {
	Path         string      `toml:"path,omitempty"`          // Directory holding the terratests (default: working directory)
	Packages     []string    `toml:"packages,omitempty"`      // Package patterns (default: ["./..."])
	Args         []string    `toml:"args,omitempty"`          // Extra arguments passed to go test
	Timeout      TimeoutSpec `toml:"timeout,omitempty"`       // Typed run timeout, e.g. "30m" or "2h"
	JSON         bool        `toml:"json,omitempty"`          // Use go test -json output
	HTMLReport   bool        `toml:"html_report,omitempty"`   // Render an HTML report (implies json)
	DisableCache bool        `toml:"disable_cache,omitempty"` // Pass -count=1 to go test
	LogFiles     bool        `toml:"log_files,omitempty"`     // Write stdout/stderr log files and a run summary
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
	Dir   string `toml:"dir,omitempty"`   // Run log directory; empty disables the run log file
}

// Default configuration values.
const (
	DefaultGoBinary = "go"
	DefaultPackages = "./..."
	DefaultLogLevel = "info"
)

// Configuration file locations.
const (
	ConfigFileName     = "config.toml"    // Config file name in the global config directory
	RepoConfigFileName = ".terrarun.toml" // Config file name in the working directory
	globalDirName      = "terrarun"
)

// RepoConfigPath returns the path to the config file in dir.
func RepoConfigPath(dir string) string {
	return filepath.Join(dir, RepoConfigFileName)
}

// GlobalConfigDir returns the global config directory under configHome.
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, globalDirName)
}

// GlobalConfigPath returns the global config file path under configHome.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalConfigDir(configHome), ConfigFileName)
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Go: GoConfig{
			Binary: DefaultGoBinary,
		},
		Test: TestConfig{
			Packages: []string{DefaultPackages},
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// GoBinary returns the configured go executable or the default.
func (c *Config) GoBinary() string {
	if c == nil || c.Go.Binary == "" {
		return DefaultGoBinary
	}
	return c.Go.Binary
}

// configTemplateData holds the values rendered into the config template.
type configTemplateData struct {
	GoBinary     string
	Packages     string
	Timeout      string
	LogLevel     string
	JSON         bool
	HTMLReport   bool
	DisableCache bool
	LogFiles     bool
}

// RenderConfigTemplate renders a commented config file from cfg.
func RenderConfigTemplate(cfg *Config) string {
	quoted := make([]string, 0, len(cfg.Test.Packages))
	for _, p := range cfg.Test.Packages {
		quoted = append(quoted, strconv.Quote(p))
	}

	timeout := DefaultTimeout.String()
	if !cfg.Test.Timeout.IsZero() {
		timeout = cfg.Test.Timeout.String()
	}

	data := configTemplateData{
		GoBinary:     cfg.GoBinary(),
		Packages:     strings.Join(quoted, ", "),
		Timeout:      timeout,
		LogLevel:     cfg.Log.Level,
		JSON:         cfg.Test.JSON,
		HTMLReport:   cfg.Test.HTMLReport,
		DisableCache: cfg.Test.DisableCache,
		LogFiles:     cfg.Test.LogFiles,
	}

	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		// Should never happen with valid data
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}
	return buf.String()
}
