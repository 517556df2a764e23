package domain

import (
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, "go", cfg.Go.Binary)
	assert.Equal(t, []string{"./..."}, cfg.Test.Packages)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Test.Timeout.IsZero())
	assert.False(t, cfg.Test.HTMLReport)
}

func TestConfig_GoBinary(t *testing.T) {
	var nilCfg *Config
	assert.Equal(t, "go", nilCfg.GoBinary())
	assert.Equal(t, "go", (&Config{}).GoBinary())
	assert.Equal(t, "go1.22", (&Config{Go: GoConfig{Binary: "go1.22"}}).GoBinary())
}

func TestConfigPaths(t *testing.T) {
	assert.Equal(t, "/work/.terrarun.toml", RepoConfigPath("/work"))
	assert.Equal(t, "/home/u/.config/terrarun", GlobalConfigDir("/home/u/.config"))
	assert.Equal(t, "/home/u/.config/terrarun/config.toml", GlobalConfigPath("/home/u/.config"))
}

func TestRenderConfigTemplate_IsValidTOML(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Test.Timeout = TimeoutSpec{30, Minutes}
	cfg.Test.HTMLReport = true

	content := RenderConfigTemplate(cfg)
	assert.True(t, strings.HasPrefix(content, "# terrarun configuration"))

	var parsed Config
	require.NoError(t, toml.Unmarshal([]byte(content), &parsed))
	assert.Equal(t, "go", parsed.Go.Binary)
	assert.Equal(t, []string{"./..."}, parsed.Test.Packages)
	assert.Equal(t, TimeoutSpec{30, Minutes}, parsed.Test.Timeout)
	assert.True(t, parsed.Test.HTMLReport)
	assert.False(t, parsed.Test.LogFiles)
	assert.Equal(t, "info", parsed.Log.Level)
}

func TestRenderConfigTemplate_DefaultTimeout(t *testing.T) {
	content := RenderConfigTemplate(NewDefaultConfig())
	assert.Contains(t, content, `timeout = "10m"`)
}
