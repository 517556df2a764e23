// Package filestore writes run artifacts next to the tests.
package filestore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/terrarun/internal/domain"
)

// Ensure Store implements domain.ArtifactStore interface.
var _ domain.ArtifactStore = (*Store)(nil)

// Store implements domain.ArtifactStore using plain files.
type Store struct {
	renderer domain.ReportRenderer
}

// New creates a new Store. renderer is used by WriteReport.
func New(renderer domain.ReportRenderer) *Store {
	return &Store{renderer: renderer}
}

// WriteLogs writes stdout and stderr lines into the log files in dir.
// ANSI escape sequences are stripped. Existing logs are replaced.
func (s *Store) WriteLogs(dir string, resp *domain.CommandResponse) ([]string, error) {
	if resp == nil {
		return nil, errors.New("no command response to write")
	}

	files := []struct {
		path  string
		lines []string
	}{
		{domain.StdoutLogPath(dir), resp.Stdout},
		{domain.StderrLogPath(dir), resp.Stderr},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		if err := writeAtomic(f.path, []byte(joinLines(f.lines)), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", filepath.Base(f.path), err)
		}
		paths = append(paths, f.path)
	}
	return paths, nil
}

// ReadLog reads a log file as lines.
func (s *Store) ReadLog(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 - path is chosen by the user
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// summaryFile is the YAML layout of terratest-summary.yaml.
type summaryFile struct {
	StartedAt time.Time     `yaml:"started_at"`
	Repo      *repoSummary  `yaml:"repo,omitempty"`
	Tests     *testsSummary `yaml:"tests,omitempty"`
	RunID     string        `yaml:"run_id"`
	TestPath  string        `yaml:"test_path"`
	Command   string        `yaml:"command"`
	Duration  string        `yaml:"duration"`
	ExitCode  int           `yaml:"exit_code"`
}

type repoSummary struct {
	Root   string `yaml:"root,omitempty"`
	Branch string `yaml:"branch,omitempty"`
	Commit string `yaml:"commit,omitempty"`
}

type testsSummary struct {
	Total   int `yaml:"total"`
	Passed  int `yaml:"passed"`
	Failed  int `yaml:"failed"`
	Skipped int `yaml:"skipped"`
	Running int `yaml:"unfinished"`
}

// WriteSummary writes the run summary as YAML into dir.
func (s *Store) WriteSummary(dir string, summary domain.RunSummary) (string, error) {
	meta := summary.Meta
	out := summaryFile{
		StartedAt: meta.StartedAt,
		RunID:     meta.RunID,
		TestPath:  meta.TestPath,
		Command:   meta.Command,
		Duration:  meta.Duration.Round(time.Millisecond).String(),
		ExitCode:  meta.ExitCode,
	}
	if meta.Repo != nil {
		out.Repo = &repoSummary{
			Root:   meta.Repo.Root,
			Branch: meta.Repo.Branch,
			Commit: meta.Repo.Commit,
		}
	}
	if st := summary.Stats; st != nil {
		out.Tests = &testsSummary{
			Total:   st.Total,
			Passed:  st.Passed,
			Failed:  st.Failed,
			Skipped: st.Skipped,
			Running: st.Running,
		}
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}

	path := domain.SummaryPath(dir)
	if err := writeAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, nil
}

// WriteReport renders report as HTML into dir.
func (s *Store) WriteReport(dir string, report *domain.TestReport, meta domain.ReportMeta) (string, error) {
	if s.renderer == nil {
		return "", errors.New("no report renderer configured")
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, report, meta); err != nil {
		return "", err
	}

	path := domain.ReportPath(dir)
	if err := writeAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// joinLines joins lines with trailing newlines and strips ANSI escape sequences.
func joinLines(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(stripansi.Strip(line))
		b.WriteByte('\n')
	}
	return b.String()
}

func writeAtomic(path string, content []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, perm); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
