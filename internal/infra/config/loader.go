// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/terrarun/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	dir           string // Directory holding .terrarun.toml
	globalConfDir string // Path to global config directory (e.g., ~/.config/terrarun)
}

// NewLoader creates a new Loader.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:           dir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(dir, globalConfDir string) *Loader {
	return &Loader{
		dir:           dir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// Load returns the merged configuration (repo + global).
// Repository config takes precedence over global config.
func (l *Loader) Load() (*domain.Config, error) {
	return l.LoadWithOptions(domain.LoadConfigOptions{})
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	layer, err := l.loadGlobalLayer()
	if err != nil {
		return nil, err
	}
	return layer.apply(domain.NewDefaultConfig()), nil
}

// LoadRepo returns only the repository configuration.
func (l *Loader) LoadRepo() (*domain.Config, error) {
	layer, err := l.loadFile(domain.RepoConfigPath(l.dir))
	if err != nil {
		return nil, err
	}
	return layer.apply(domain.NewDefaultConfig()), nil
}

// LoadWithOptions returns the merged configuration with options to ignore sources.
func (l *Loader) LoadWithOptions(opts domain.LoadConfigOptions) (*domain.Config, error) {
	var global, repo *layer
	var err error

	if !opts.IgnoreGlobal {
		global, err = l.loadGlobalLayer()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if !opts.IgnoreRepo {
		repo, err = l.loadFile(domain.RepoConfigPath(l.dir))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	// Merge: default <- global <- repo (later takes precedence)
	base := domain.NewDefaultConfig()
	if global != nil {
		base = global.apply(base)
	}
	if repo != nil {
		base = repo.apply(base)
	}
	return base, nil
}

func (l *Loader) loadGlobalLayer() (*layer, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// loadFile loads a configuration layer from a file.
func (l *Loader) loadFile(path string) (*layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	res, err := convertRawToLayer(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// layer holds the values one config file sets. Nil means unset.
type layer struct {
	goBinary     *string
	path         *string
	packages     []string
	args         []string
	timeout      *domain.TimeoutSpec
	json         *bool
	htmlReport   *bool
	disableCache *bool
	logFiles     *bool
	logLevel     *string
	logDir       *string
	warnings     []string
}

// convertRawToLayer converts the raw map to a layer and collects warnings.
func convertRawToLayer(raw map[string]any) (*layer, error) {
	res := &layer{}
	var warnings []string

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
			continue
		}
		switch section {
		case "go":
			for k, v := range m {
				switch k {
				case "binary":
					res.goBinary = stringValue(v)
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [go]: %s", k))
				}
			}
		case "test":
			for k, v := range m {
				switch k {
				case "path":
					res.path = stringValue(v)
				case "packages":
					res.packages = stringsValue(v)
				case "args":
					res.args = stringsValue(v)
				case "timeout":
					s, ok := v.(string)
					if !ok {
						return nil, fmt.Errorf("%w: [test].timeout must be a string", domain.ErrInvalidTimeout)
					}
					spec, err := domain.ParseTimeout(s)
					if err != nil {
						return nil, fmt.Errorf("[test].timeout: %w", err)
					}
					res.timeout = &spec
				case "json":
					res.json = boolValue(v)
				case "html_report":
					res.htmlReport = boolValue(v)
				case "disable_cache":
					res.disableCache = boolValue(v)
				case "log_files":
					res.logFiles = boolValue(v)
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [test]: %s", k))
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					res.logLevel = stringValue(v)
				case "dir":
					res.logDir = stringValue(v)
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [log]: %s", k))
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	res.warnings = warnings
	return res, nil
}

// apply returns a copy of base with the layer's values set over it.
func (l *layer) apply(base *domain.Config) *domain.Config {
	result := *base
	result.Warnings = append(append([]string{}, base.Warnings...), l.warnings...)

	if l.goBinary != nil {
		result.Go.Binary = *l.goBinary
	}
	if l.path != nil {
		result.Test.Path = *l.path
	}
	if l.packages != nil {
		result.Test.Packages = l.packages
	}
	if l.args != nil {
		result.Test.Args = l.args
	}
	if l.timeout != nil {
		result.Test.Timeout = *l.timeout
	}
	if l.json != nil {
		result.Test.JSON = *l.json
	}
	if l.htmlReport != nil {
		result.Test.HTMLReport = *l.htmlReport
	}
	if l.disableCache != nil {
		result.Test.DisableCache = *l.disableCache
	}
	if l.logFiles != nil {
		result.Test.LogFiles = *l.logFiles
	}
	if l.logLevel != nil {
		result.Log.Level = *l.logLevel
	}
	if l.logDir != nil {
		result.Log.Dir = *l.logDir
	}
	return &result
}

func stringValue(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func boolValue(v any) *bool {
	if b, ok := v.(bool); ok {
		return &b
	}
	return nil
}

func stringsValue(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
