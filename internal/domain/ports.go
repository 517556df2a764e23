package domain

import (
	"context"
	"io"
	"time"
)

// ProcessRunner runs external commands.
type ProcessRunner interface {
	// Run executes the request and returns its response.
	// The response is nil whenever err is non-nil; a non-zero exit code is not an error.
	Run(ctx context.Context, req RunRequest) (*CommandResponse, error)
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (global + repo).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// LoadConfigOptions selects which sources Load considers.
type LoadConfigOptions struct {
	IgnoreGlobal bool
	IgnoreRepo   bool
}

// ConfigSourceInfo describes a configuration file location.
type ConfigSourceInfo struct {
	Path    string
	Content string
	Exists  bool
}

// ConfigManager inspects and creates configuration files.
type ConfigManager interface {
	// GetRepoConfigInfo returns the location of the repository config.
	GetRepoConfigInfo() ConfigSourceInfo

	// GetGlobalConfigInfo returns the location of the global config.
	GetGlobalConfigInfo() ConfigSourceInfo

	// InitRepoConfig writes a config template to the repository config path.
	InitRepoConfig(cfg *Config) error

	// InitGlobalConfig writes a config template to the global config path.
	InitGlobalConfig(cfg *Config) error
}

// RepoInfo describes the git checkout holding the tests.
type RepoInfo struct {
	Root   string
	Branch string
	Commit string
}

// ShortCommit returns the first 12 characters of the commit hash.
func (r *RepoInfo) ShortCommit() string {
	if r == nil {
		return ""
	}
	if len(r.Commit) > 12 {
		return r.Commit[:12]
	}
	return r.Commit
}

// RepoInspector reads repository metadata.
type RepoInspector interface {
	// Inspect returns metadata of the repository containing dir.
	// Returns ErrNotGitRepository if dir is not inside a repository.
	Inspect(dir string) (*RepoInfo, error)
}

// ReportMeta is the run metadata shown in reports and summaries.
// Fields are ordered to minimize memory padding.
type ReportMeta struct {
	StartedAt time.Time
	Repo      *RepoInfo
	RunID     string
	TestPath  string
	Command   string
	Duration  time.Duration
	ExitCode  int
}

// ReportRenderer renders a TestReport as HTML.
type ReportRenderer interface {
	// Render writes the HTML report to w.
	Render(w io.Writer, report *TestReport, meta ReportMeta) error
}

// RunSummary is the machine-readable record of a run.
type RunSummary struct {
	Meta  ReportMeta
	Stats *TestStats // nil when go test did not emit -json events
}

// ArtifactStore writes run artifacts into a directory.
type ArtifactStore interface {
	// WriteLogs writes the stdout and stderr log files and returns their paths.
	WriteLogs(dir string, resp *CommandResponse) ([]string, error)

	// WriteSummary writes the run summary and returns its path.
	WriteSummary(dir string, summary RunSummary) (string, error)

	// WriteReport renders the HTML report into dir and returns its path.
	WriteReport(dir string, report *TestReport, meta ReportMeta) (string, error)

	// ReadLog reads a previously written log file as lines.
	ReadLog(path string) ([]string, error)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
