package usecase

import (
	"context"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/terrarun/internal/domain"
)

// ShowConfigInput contains the input for the ShowConfig use case.
type ShowConfigInput struct {
	Config *domain.Config // Effective (merged) configuration
}

// ShowConfigOutput contains the output of the ShowConfig use case.
type ShowConfigOutput struct {
	GlobalConfig domain.ConfigSourceInfo // Global config file info
	RepoConfig   domain.ConfigSourceInfo // Repository config file info
	Effective    string                  // Effective configuration as TOML
	Warnings     []string                // Unknown keys found while loading
}

// effectiveConfig is the TOML view of the merged configuration.
type effectiveConfig struct {
	Go struct {
		Binary string `toml:"binary"`
	} `toml:"go"`
	Test struct {
		Path         string   `toml:"path"`
		Timeout      string   `toml:"timeout"`
		Packages     []string `toml:"packages"`
		Args         []string `toml:"args"`
		JSON         bool     `toml:"json"`
		HTMLReport   bool     `toml:"html_report"`
		DisableCache bool     `toml:"disable_cache"`
		LogFiles     bool     `toml:"log_files"`
	} `toml:"test"`
	Log struct {
		Level string `toml:"level"`
		Dir   string `toml:"dir"`
	} `toml:"log"`
}

// ShowConfig displays configuration file information.
type ShowConfig struct {
	configManager domain.ConfigManager
}

// NewShowConfig creates a new ShowConfig use case.
func NewShowConfig(configManager domain.ConfigManager) *ShowConfig {
	return &ShowConfig{
		configManager: configManager,
	}
}

// Execute retrieves configuration file information and renders the effective configuration.
func (uc *ShowConfig) Execute(_ context.Context, in ShowConfigInput) (*ShowConfigOutput, error) {
	out := &ShowConfigOutput{
		GlobalConfig: uc.configManager.GetGlobalConfigInfo(),
		RepoConfig:   uc.configManager.GetRepoConfigInfo(),
	}
	if in.Config == nil {
		return out, nil
	}

	var view effectiveConfig
	view.Go.Binary = in.Config.GoBinary()
	view.Test.Path = in.Config.Test.Path
	view.Test.Packages = in.Config.Test.Packages
	view.Test.Args = in.Config.Test.Args
	view.Test.Timeout = domain.DefaultTimeout.String()
	if !in.Config.Test.Timeout.IsZero() {
		view.Test.Timeout = in.Config.Test.Timeout.String()
	}
	view.Test.JSON = in.Config.Test.JSON
	view.Test.HTMLReport = in.Config.Test.HTMLReport
	view.Test.DisableCache = in.Config.Test.DisableCache
	view.Test.LogFiles = in.Config.Test.LogFiles
	view.Log.Level = in.Config.Log.Level
	view.Log.Dir = in.Config.Log.Dir

	data, err := toml.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("marshal effective config: %w", err)
	}
	out.Effective = string(data)
	out.Warnings = in.Config.Warnings
	return out, nil
}
