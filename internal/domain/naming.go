package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// Artifact file names written into the test directory.
const (
	StdoutLogFileName = "terratest-output.log"
	StderrLogFileName = "terratest-error-output.log"
	SummaryFileName   = "terratest-summary.yaml"
	ReportFileName    = "terratest-report.html"
)

// StdoutLogPath returns the path to the stdout log file.
func StdoutLogPath(dir string) string {
	return filepath.Join(dir, StdoutLogFileName)
}

// StderrLogPath returns the path to the stderr log file.
func StderrLogPath(dir string) string {
	return filepath.Join(dir, StderrLogFileName)
}

// SummaryPath returns the path to the run summary file.
func SummaryPath(dir string) string {
	return filepath.Join(dir, SummaryFileName)
}

// ReportPath returns the path to the HTML report.
func ReportPath(dir string) string {
	return filepath.Join(dir, ReportFileName)
}

// RunLogPath returns the path to the run log file.
// Format: <logDir>/run-<runID>.log
func RunLogPath(logDir, runID string) string {
	return filepath.Join(logDir, fmt.Sprintf("run-%s.log", runID))
}

// runLogPattern matches run log file names: run-<uuid>.log
var runLogPattern = regexp.MustCompile(`^run-([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})\.log$`)

// ParseRunLogID extracts the run ID from a run log file name.
// Returns the run ID and true if the name follows the convention,
// or "" and false if not.
func ParseRunLogID(name string) (string, bool) {
	matches := runLogPattern.FindStringSubmatch(name)
	if matches == nil {
		return "", false
	}
	return matches[1], true
}
