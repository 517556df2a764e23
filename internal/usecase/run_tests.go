package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/runoshun/terrarun/internal/domain"
	"github.com/runoshun/terrarun/internal/usecase/shared"
)

// RunTestsInput contains the parameters for a terratest run.
// Fields are ordered to minimize memory padding.
type RunTestsInput struct {
	Stdout       io.Writer          // Receives go test stdout lines (optional)
	Stderr       io.Writer          // Receives go test stderr lines (optional)
	Path         string             // Test directory (default: working directory)
	Packages     []string           // Package patterns (default: ./...)
	Args         []string           // Extra go test arguments; a timeout token here wins over Timeout
	Timeout      domain.TimeoutSpec // Run timeout (default: 10m)
	JSON         bool               // go test -json
	HTMLReport   bool               // Write terratest-report.html (implies JSON)
	DisableCache bool               // go test -count=1
	LogFiles     bool               // Write log files and the run summary
}

// RunTestsOutput contains the result of a terratest run.
// Fields are ordered to minimize memory padding.
type RunTestsOutput struct {
	Response  *domain.CommandResponse
	Report    *domain.TestReport // Parsed -json events; nil without JSON output
	Repo      *domain.RepoInfo   // nil outside a git repository
	Artifacts []string           // Paths of the files written into the test directory
	TestPath  string
	Command   string
	Timeout   domain.TimeoutSpec // Effective go test timeout
}

// RunTests runs go test against the terratests and records the result.
type RunTests struct {
	runner    domain.ProcessRunner
	artifacts domain.ArtifactStore
	repo      domain.RepoInspector
	clock     domain.Clock
	logger    *slog.Logger
	goCmd     domain.GoCommand
	runID     string
}

// NewRunTests creates a new RunTests use case.
func NewRunTests(
	runner domain.ProcessRunner,
	artifacts domain.ArtifactStore,
	repo domain.RepoInspector,
	clock domain.Clock,
	logger *slog.Logger,
	goBinary string,
	runID string,
) *RunTests {
	return &RunTests{
		runner:    runner,
		artifacts: artifacts,
		repo:      repo,
		clock:     clock,
		logger:    logger.With("component", "usecase"),
		goCmd:     domain.NewGoCommand(goBinary),
		runID:     runID,
	}
}

// Execute runs the tests in in.Path.
//
// Configuration errors are returned before go test is started. When go test could
// not be run to completion the error wraps ErrTestRunFailed and no artifacts are written.
// When it ran but failed, the output is returned together with ErrTestsFailed.
func (uc *RunTests) Execute(ctx context.Context, in RunTestsInput) (*RunTestsOutput, error) {
	dir, err := shared.ResolveTestDir(in.Path)
	if err != nil {
		return nil, err
	}

	// Only the caller's arguments may carry a timeout override, never the package patterns.
	timeout, err := domain.NewTimeoutResolver(uc.logger, in.Timeout).Resolve(in.Args)
	if err != nil {
		return nil, err
	}
	opts := domain.GoTestOptions{
		Packages:     in.Packages,
		Args:         in.Args,
		Timeout:      timeout,
		JSON:         in.JSON,
		HTMLReport:   in.HTMLReport,
		DisableCache: in.DisableCache,
	}
	cmd := uc.goCmd.Test(opts)

	repo := uc.inspectRepo(dir)
	started := uc.clock.Now()
	uc.logger.Info("running terratests", "path", dir, "timeout", timeout.String(), "run_id", uc.runID)

	resp, err := uc.runner.Run(ctx, domain.RunRequest{
		Stdout:  shared.LineWriter(in.Stdout),
		Stderr:  shared.LineWriter(in.Stderr),
		Dir:     dir,
		Command: cmd,
		Timeout: timeout.Extend(domain.GoTestGraceMinutes),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTestRunFailed, err)
	}
	if resp == nil {
		return nil, domain.ErrTestRunFailed
	}

	out := &RunTestsOutput{
		Response: resp,
		Repo:     repo,
		TestPath: dir,
		Command:  cmd.String(),
		Timeout:  timeout,
	}
	meta := domain.ReportMeta{
		StartedAt: started,
		Repo:      repo,
		RunID:     uc.runID,
		TestPath:  dir,
		Command:   out.Command,
		Duration:  uc.clock.Now().Sub(started),
		ExitCode:  resp.ExitCode,
	}

	if opts.UsesJSON() {
		out.Report = domain.ParseTestReport(resp.Stdout)
	}
	out.Artifacts = uc.writeArtifacts(dir, in, resp, out.Report, meta)

	if !resp.Succeeded() {
		uc.logger.Warn("terratests failed", "exit_code", resp.ExitCode)
		return out, fmt.Errorf("%w (exit code %d)", domain.ErrTestsFailed, resp.ExitCode)
	}
	uc.logger.Info("terratests passed")
	return out, nil
}

// writeArtifacts writes the requested files into dir and returns their paths.
// Failures are logged and do not change the outcome of the run.
func (uc *RunTests) writeArtifacts(dir string, in RunTestsInput, resp *domain.CommandResponse, report *domain.TestReport, meta domain.ReportMeta) []string {
	var written []string

	if in.LogFiles {
		paths, err := uc.artifacts.WriteLogs(dir, resp)
		written = append(written, paths...)
		if err != nil {
			uc.logger.Warn("failed to write log files", "error", err)
		}

		summary := domain.RunSummary{Meta: meta}
		if report != nil && !report.Empty() {
			stats := report.Stats()
			summary.Stats = &stats
		}
		if path, err := uc.artifacts.WriteSummary(dir, summary); err != nil {
			uc.logger.Warn("failed to write run summary", "error", err)
		} else {
			written = append(written, path)
		}
	}

	if in.HTMLReport {
		if report == nil || report.Empty() {
			uc.logger.Warn("no go test -json events in output, skipping HTML report")
		} else if path, err := uc.artifacts.WriteReport(dir, report, meta); err != nil {
			uc.logger.Warn("failed to write HTML report", "error", err)
		} else {
			written = append(written, path)
		}
	}

	for _, path := range written {
		uc.logger.Info("artifact written", "path", path)
	}
	return written
}

// inspectRepo returns repository metadata for dir, or nil when unavailable.
func (uc *RunTests) inspectRepo(dir string) *domain.RepoInfo {
	if uc.repo == nil {
		return nil
	}
	info, err := uc.repo.Inspect(dir)
	if err != nil {
		if errors.Is(err, domain.ErrNotGitRepository) {
			uc.logger.Debug("test path is not inside a git repository", "path", dir)
		} else {
			uc.logger.Warn("failed to read repository metadata", "error", err)
		}
		return nil
	}
	return info
}
