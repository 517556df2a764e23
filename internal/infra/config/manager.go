package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/runoshun/terrarun/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager manages configuration files.
type Manager struct {
	dir           string // Directory holding .terrarun.toml
	globalConfDir string // Path to global config directory (e.g., ~/.config/terrarun)
}

// NewManager creates a new Manager.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:           dir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(dir, globalConfDir string) *Manager {
	return &Manager{
		dir:           dir,
		globalConfDir: globalConfDir,
	}
}

// GetRepoConfigInfo returns information about the repository config file.
func (m *Manager) GetRepoConfigInfo() domain.ConfigSourceInfo {
	return m.getConfigInfo(domain.RepoConfigPath(m.dir))
}

// GetGlobalConfigInfo returns information about the global config file.
func (m *Manager) GetGlobalConfigInfo() domain.ConfigSourceInfo {
	if m.globalConfDir == "" {
		return domain.ConfigSourceInfo{}
	}
	return m.getConfigInfo(filepath.Join(m.globalConfDir, domain.ConfigFileName))
}

// getConfigInfo reads a config file and returns its info.
func (m *Manager) getConfigInfo(path string) domain.ConfigSourceInfo {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.ConfigSourceInfo{
			Path:   path,
			Exists: false,
		}
	}
	return domain.ConfigSourceInfo{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// InitRepoConfig creates a repository config file rendered from cfg.
func (m *Manager) InitRepoConfig(cfg *domain.Config) error {
	return m.initConfig(domain.RepoConfigPath(m.dir), cfg)
}

// InitGlobalConfig creates a global config file rendered from cfg.
func (m *Manager) InitGlobalConfig(cfg *domain.Config) error {
	if m.globalConfDir == "" {
		return errors.New("global config directory not available")
	}

	if err := os.MkdirAll(m.globalConfDir, 0700); err != nil {
		return err
	}

	return m.initConfig(filepath.Join(m.globalConfDir, domain.ConfigFileName), cfg)
}

// initConfig creates a config file unless one already exists.
func (m *Manager) initConfig(path string, cfg *domain.Config) error {
	if _, err := os.Stat(path); err == nil {
		return domain.ErrConfigExists
	}

	content := domain.RenderConfigTemplate(cfg)
	return os.WriteFile(path, []byte(content), 0600)
}
