package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/terrarun/internal/domain"
	"github.com/runoshun/terrarun/internal/testutil"
	"github.com/runoshun/terrarun/internal/usecase"
)

func TestInitConfig_Execute(t *testing.T) {
	t.Run("creates repo config", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()
		cfg := domain.NewDefaultConfig()

		uc := usecase.NewInitConfig(manager)
		out, err := uc.Execute(context.Background(), usecase.InitConfigInput{
			Global: false,
			Config: cfg,
		})

		require.NoError(t, err)
		assert.Equal(t, "/test/.terrarun.toml", out.Path)
		assert.True(t, manager.InitRepoCalled)
		assert.False(t, manager.InitGlobalCalled)
		assert.Same(t, cfg, manager.InitConfig)
	})

	t.Run("creates global config", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()

		uc := usecase.NewInitConfig(manager)
		out, err := uc.Execute(context.Background(), usecase.InitConfigInput{Global: true})

		require.NoError(t, err)
		assert.Equal(t, "/home/test/.config/terrarun/config.toml", out.Path)
		assert.False(t, manager.InitRepoCalled)
		assert.True(t, manager.InitGlobalCalled)
		assert.Equal(t, domain.NewDefaultConfig(), manager.InitConfig)
	})

	t.Run("returns error when repo config already exists", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()
		manager.InitRepoErr = domain.ErrConfigExists

		out, err := usecase.NewInitConfig(manager).Execute(context.Background(), usecase.InitConfigInput{})

		assert.Nil(t, out)
		assert.ErrorIs(t, err, domain.ErrConfigExists)
	})
}
