package executor

import (
	"bytes"
	"context"
	"log/slog"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/terrarun/internal/domain"
)

func shell(script string) domain.Command {
	return domain.NewCommand("sh", "-c", script)
}

func TestClient_Run(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on Windows")
	}

	client := NewClient(nil, nil)
	ctx := context.Background()

	t.Run("captures stdout of simple echo command", func(t *testing.T) {
		resp, err := client.Run(ctx, domain.RunRequest{Command: shell("echo hello")})
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, []string{"hello"}, resp.Stdout)
		assert.Empty(t, resp.Stderr)
		assert.Equal(t, 0, resp.ExitCode)
		assert.True(t, resp.Succeeded())
	})

	t.Run("non-zero exit still yields a response", func(t *testing.T) {
		resp, err := client.Run(ctx, domain.RunRequest{Command: shell("echo out; echo err >&2; exit 1")})
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, 1, resp.ExitCode)
		assert.Equal(t, []string{"out"}, resp.Stdout)
		assert.Equal(t, []string{"err"}, resp.Stderr)
		assert.False(t, resp.Succeeded())
	})

	t.Run("captures stderr separately", func(t *testing.T) {
		resp, err := client.Run(ctx, domain.RunRequest{Command: shell("echo error >&2")})
		require.NoError(t, err)
		assert.Empty(t, resp.Stdout)
		assert.Equal(t, []string{"error"}, resp.Stderr)
	})

	t.Run("out of range timeout does not fire early", func(t *testing.T) {
		resp, err := client.Run(ctx, domain.RunRequest{
			Command: shell("sleep 0.3; echo hi"),
			Timeout: domain.TimeoutSpec{Value: 3000000, Unit: domain.Hours},
		})
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, []string{"hi"}, resp.Stdout)
	})

	t.Run("keeps line order and strips terminators", func(t *testing.T) {
		resp, err := client.Run(ctx, domain.RunRequest{Command: shell(`printf 'a\r\nb\nc'`)})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, resp.Stdout)
	})

	t.Run("runs in specified directory", func(t *testing.T) {
		dir := t.TempDir()
		resp, err := client.Run(ctx, domain.RunRequest{Command: domain.NewCommand("pwd"), Dir: dir})
		require.NoError(t, err)
		require.Len(t, resp.Stdout, 1)
		assert.Contains(t, resp.Stdout[0], strings.TrimPrefix(dir, "/private"))
	})

	t.Run("delivers lines to consumers", func(t *testing.T) {
		var stdout, stderr []string
		resp, err := client.Run(ctx, domain.RunRequest{
			Command: shell("echo one; echo two; echo three >&2"),
			Stdout:  func(line string) { stdout = append(stdout, line) },
			Stderr:  func(line string) { stderr = append(stderr, line) },
		})
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, []string{"one", "two"}, stdout)
		assert.Equal(t, []string{"three"}, stderr)
	})

	t.Run("does not call consumers for empty streams", func(t *testing.T) {
		called := false
		_, err := client.Run(ctx, domain.RunRequest{
			Command: shell("true"),
			Stdout:  func(string) { called = true },
			Stderr:  func(string) { called = true },
		})
		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("returns spawn error for non-existent command", func(t *testing.T) {
		resp, err := client.Run(ctx, domain.RunRequest{Command: domain.NewCommand("nonexistent-command-xyz")})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSpawn)
		assert.Nil(t, resp)
	})

	t.Run("rejects empty command", func(t *testing.T) {
		resp, err := client.Run(ctx, domain.RunRequest{})
		assert.ErrorIs(t, err, domain.ErrEmptyCommand)
		assert.Nil(t, resp)
	})

	t.Run("invalid timeout override fails before spawn", func(t *testing.T) {
		marker := t.TempDir() + "/spawned"
		resp, err := client.Run(ctx, domain.RunRequest{
			Command: domain.NewCommand("touch", marker, "-timeout=5x"),
		})
		require.Error(t, err)
		assert.True(t, domain.IsConfigurationError(err))
		assert.ErrorIs(t, err, domain.ErrUnsupportedTimeoutUnit)
		assert.Nil(t, resp)
		assert.NoFileExists(t, marker)
	})
}

func TestClient_Run_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on Windows")
	}

	// Setup
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	client := NewClient(logger, nil)
	client.limit = func(domain.TimeoutSpec) time.Duration { return 100 * time.Millisecond }

	// Execute
	start := time.Now()
	resp, err := client.Run(context.Background(), domain.RunRequest{
		Command: domain.NewCommand("sleep", "5"),
		Timeout: domain.TimeoutSpec{Value: 1, Unit: domain.Minutes},
	})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExecutionTimeout)
	assert.Nil(t, resp)
	assert.Less(t, time.Since(start), 4*time.Second, "child should be killed")
	assert.Contains(t, buf.String(), "command execution timed out")
	assert.Contains(t, buf.String(), "process terminated")
}

func TestClient_Run_ContextCancelled(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on Windows")
	}

	client := NewClient(nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	resp, err := client.Run(ctx, domain.RunRequest{Command: domain.NewCommand("sleep", "5")})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProcessWait)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, resp)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestClient_Run_ResolvesTimeoutFromArgs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on Windows")
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	client := NewClient(logger, domain.NewTimeoutResolver(logger, domain.TimeoutSpec{}))

	resp, err := client.Run(context.Background(), domain.RunRequest{
		Command: domain.NewCommand("echo", "-timeout=2h"),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"-timeout=2h"}, resp.Stdout)
	assert.Contains(t, buf.String(), "timeout override set")
	assert.Contains(t, buf.String(), "timeout=2h")
}

func TestNewClient(t *testing.T) {
	client := NewClient(nil, nil)
	assert.NotNil(t, client)
	assert.Equal(t, domain.DefaultTimeout, client.resolver.Fallback())
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("first\nsecond\r\n\nlast"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "", "last"}, lines)

	lines, err = readLines(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, lines)
}
