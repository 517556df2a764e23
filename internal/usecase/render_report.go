package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/runoshun/terrarun/internal/domain"
)

// RenderReportInput contains the parameters for re-rendering a report.
type RenderReportInput struct {
	LogPath   string // go test -json stdout log (required)
	OutputDir string // Directory for terratest-report.html (default: directory of LogPath)
}

// RenderReportOutput contains the result of re-rendering a report.
type RenderReportOutput struct {
	Report *domain.TestReport
	Path   string // Path of the written report
}

// RenderReport renders the HTML report from a saved go test -json log.
type RenderReport struct {
	artifacts domain.ArtifactStore
	logger    *slog.Logger
	runID     string
}

// NewRenderReport creates a new RenderReport use case.
func NewRenderReport(artifacts domain.ArtifactStore, logger *slog.Logger, runID string) *RenderReport {
	return &RenderReport{
		artifacts: artifacts,
		logger:    logger.With("component", "report"),
		runID:     runID,
	}
}

// Execute parses in.LogPath and writes the report.
// Returns ErrNoReportableInput if the log holds no go test -json events.
func (uc *RenderReport) Execute(_ context.Context, in RenderReportInput) (*RenderReportOutput, error) {
	if in.LogPath == "" {
		in.LogPath = domain.StdoutLogFileName
	}

	lines, err := uc.artifacts.ReadLog(in.LogPath)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	report := domain.ParseTestReport(lines)
	if report.Empty() {
		return nil, fmt.Errorf("%w in %s", domain.ErrNoReportableInput, in.LogPath)
	}
	uc.logger.Info("parsed test log", "path", in.LogPath, "packages", len(report.Packages), "unparsed_lines", report.Unparsed)

	dir := in.OutputDir
	if dir == "" {
		dir = filepath.Dir(in.LogPath)
	}

	meta := domain.ReportMeta{
		StartedAt: report.Started,
		RunID:     uc.runID,
		TestPath:  dir,
		Duration:  report.Duration(),
	}
	path, err := uc.artifacts.WriteReport(dir, report, meta)
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	return &RenderReportOutput{Report: report, Path: path}, nil
}
