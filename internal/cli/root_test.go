package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/terrarun/internal/app"
	"github.com/runoshun/terrarun/internal/domain"
	"github.com/runoshun/terrarun/internal/testutil"
)

// testContainer bundles a container with the mocks behind it.
type testContainer struct {
	*app.Container
	runner    *testutil.MockProcessRunner
	artifacts *testutil.MockArtifactStore
	manager   *testutil.MockConfigManager
}

func newTestContainer(cfg *domain.Config, resp *domain.CommandResponse) *testContainer {
	if cfg == nil {
		cfg = domain.NewDefaultConfig()
	}
	tc := &testContainer{
		runner:    &testutil.MockProcessRunner{Response: resp},
		artifacts: testutil.NewMockArtifactStore(),
		manager:   testutil.NewMockConfigManager(),
	}
	tc.Container = app.NewWithDeps(
		app.Config{WorkDir: "/test", RunID: "1a2b3c4d-0000-4000-8000-000000000000"},
		cfg,
		tc.runner,
		tc.artifacts,
		&testutil.MockRepoInspector{Info: &domain.RepoInfo{Branch: "main", Commit: "abc"}},
		&testutil.MockClock{NowTime: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	tc.ConfigManager = tc.manager
	return tc
}

// execute runs the root command with args and returns stdout, stderr and the error.
func execute(c *app.Container, args ...string) (string, string, error) {
	root := NewRootCommand(c, "1.2.3")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand(nil, "1.2.3")

	assert.Equal(t, "terrarun", root.Use)
	assert.Equal(t, "1.2.3", root.Version)
	assert.True(t, root.SilenceUsage)
	assert.True(t, root.SilenceErrors)

	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"check", "compile", "test", "report", "config"})
}

func TestRootCommand_NoArgsShowsHelp(t *testing.T) {
	stdout, _, err := execute(nil)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Test Commands:")
	assert.Contains(t, stdout, "Setup Commands:")
}

func TestRootCommand_Version(t *testing.T) {
	stdout, _, err := execute(nil, "--version")

	require.NoError(t, err)
	assert.Contains(t, stdout, "1.2.3")
}

func TestRootCommand_PrintsConfigWarnings(t *testing.T) {
	// Setup
	cfg := domain.NewDefaultConfig()
	cfg.Warnings = []string{"unknown key: test.tiemout"}
	tc := newTestContainer(cfg, &domain.CommandResponse{Stdout: []string{"go version go1.23.4 linux/amd64"}})

	// Execute
	_, stderr, err := execute(tc.Container, "check")

	// Verify
	require.NoError(t, err)
	assert.Contains(t, stderr, "Warning:")
	assert.Contains(t, stderr, "unknown key: test.tiemout")
}
