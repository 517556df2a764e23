// Package app provides the dependency injection container for the application.
package app

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/runoshun/terrarun/internal/domain"
	"github.com/runoshun/terrarun/internal/infra/config"
	"github.com/runoshun/terrarun/internal/infra/executor"
	"github.com/runoshun/terrarun/internal/infra/filestore"
	"github.com/runoshun/terrarun/internal/infra/git"
	"github.com/runoshun/terrarun/internal/infra/logging"
	"github.com/runoshun/terrarun/internal/infra/report"
	"github.com/runoshun/terrarun/internal/usecase"
)

// Config holds the application paths and identifiers.
type Config struct {
	WorkDir string // Directory terrarun was started in
	LogDir  string // Run log directory; empty disables the run log file
	RunID   string // Unique id of this invocation
}

// newConfig creates a new Config for dir from the loaded configuration.
func newConfig(dir string, appConfig *domain.Config) Config {
	logDir := appConfig.Log.Dir
	if logDir != "" && !filepath.IsAbs(logDir) {
		logDir = filepath.Join(dir, logDir)
	}
	return Config{
		WorkDir: dir,
		LogDir:  logDir,
		RunID:   uuid.NewString(),
	}
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Runner        domain.ProcessRunner
	Artifacts     domain.ArtifactStore
	Repo          domain.RepoInspector
	Clock         domain.Clock
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager

	// Pointer fields
	Logger    *slog.Logger
	AppConfig *domain.Config
	runLog    *logging.Handler

	// Configuration
	Config Config
}

// New creates a new Container for the working directory dir.
// Log output goes to stderr and, when [log].dir is set, to the run log file.
func New(dir string, stderr io.Writer) (*Container, error) {
	configLoader := config.NewLoader(dir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, err
	}

	cfg := newConfig(dir, appConfig)

	// Create logger
	level := logging.ParseLevel(appConfig.Log.Level)
	runLog := logging.New(cfg.LogDir, cfg.RunID, level)
	logger := slog.New(logging.Fanout(
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
		runLog,
	))

	renderer, err := report.NewRenderer()
	if err != nil {
		return nil, err
	}

	resolver := domain.NewTimeoutResolver(logger, appConfig.Test.Timeout)

	return &Container{
		Runner:        executor.NewClient(logger, resolver),
		Artifacts:     filestore.New(renderer),
		Repo:          git.NewClient(),
		Clock:         domain.RealClock{},
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(dir),
		Logger:        logger,
		AppConfig:     appConfig,
		runLog:        runLog,
		Config:        cfg,
	}, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(
	cfg Config,
	appConfig *domain.Config,
	runner domain.ProcessRunner,
	artifacts domain.ArtifactStore,
	repo domain.RepoInspector,
	clock domain.Clock,
	logger *slog.Logger,
) *Container {
	return &Container{
		Runner:    runner,
		Artifacts: artifacts,
		Repo:      repo,
		Clock:     clock,
		Logger:    logger,
		AppConfig: appConfig,
		Config:    cfg,
	}
}

// RunLogPath returns the path of the run log file, or "" when it is disabled.
func (c *Container) RunLogPath() string {
	if c.runLog == nil {
		return ""
	}
	return c.runLog.Path()
}

// Close releases the run log file.
func (c *Container) Close() error {
	if c.runLog == nil {
		return nil
	}
	return c.runLog.Close()
}

// UseCase factory methods

// CheckGoUseCase returns a new CheckGo use case.
func (c *Container) CheckGoUseCase() *usecase.CheckGo {
	return usecase.NewCheckGo(c.Runner, c.AppConfig.GoBinary())
}

// CompileTestsUseCase returns a new CompileTests use case.
func (c *Container) CompileTestsUseCase() *usecase.CompileTests {
	return usecase.NewCompileTests(c.Runner, c.Logger, c.AppConfig.GoBinary())
}

// RunTestsUseCase returns a new RunTests use case.
func (c *Container) RunTestsUseCase() *usecase.RunTests {
	return usecase.NewRunTests(
		c.Runner,
		c.Artifacts,
		c.Repo,
		c.Clock,
		c.Logger,
		c.AppConfig.GoBinary(),
		c.Config.RunID,
	)
}

// RenderReportUseCase returns a new RenderReport use case.
func (c *Container) RenderReportUseCase() *usecase.RenderReport {
	return usecase.NewRenderReport(c.Artifacts, c.Logger, c.Config.RunID)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}
