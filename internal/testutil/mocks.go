// Package testutil provides test doubles for domain ports.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/runoshun/terrarun/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockProcessRunner is a test double for domain.ProcessRunner.
// Like the real executor, it delivers the response lines to the request consumers.
// Fields are ordered to minimize memory padding.
type MockProcessRunner struct {
	Response  *domain.CommandResponse
	RunErr    error
	RunFunc   func(req domain.RunRequest) (*domain.CommandResponse, error) // Overrides Response/RunErr when set
	Requests  []domain.RunRequest
	mu        sync.Mutex
	RunCalled bool
}

// Ensure MockProcessRunner implements domain.ProcessRunner interface.
var _ domain.ProcessRunner = (*MockProcessRunner)(nil)

// Run records the request and returns the configured response or error.
func (m *MockProcessRunner) Run(_ context.Context, req domain.RunRequest) (*domain.CommandResponse, error) {
	m.mu.Lock()
	m.RunCalled = true
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	resp, err := m.Response, m.RunErr
	if m.RunFunc != nil {
		resp, err = m.RunFunc(req)
	}
	if err != nil {
		return nil, err
	}
	if resp != nil {
		emit(req.Stdout, resp.Stdout)
		emit(req.Stderr, resp.Stderr)
	}
	return resp, nil
}

// LastRequest returns the most recent request, or a zero request if none was made.
func (m *MockProcessRunner) LastRequest() domain.RunRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return domain.RunRequest{}
	}
	return m.Requests[len(m.Requests)-1]
}

func emit(consumer domain.LineConsumer, lines []string) {
	if consumer == nil {
		return
	}
	for _, line := range lines {
		consumer(line)
	}
}

// MockArtifactStore is a test double for domain.ArtifactStore.
// Fields are ordered to minimize memory padding.
type MockArtifactStore struct {
	WrittenResponse *domain.CommandResponse
	WrittenSummary  *domain.RunSummary
	WrittenReport   *domain.TestReport
	WrittenMeta     *domain.ReportMeta
	WriteLogsErr    error
	WriteSummaryErr error
	WriteReportErr  error
	ReadLogErr      error
	Logs            map[string][]string // Contents returned by ReadLog, keyed by path
	Dirs            []string            // Directories passed to the write methods
}

// NewMockArtifactStore creates a new MockArtifactStore.
func NewMockArtifactStore() *MockArtifactStore {
	return &MockArtifactStore{
		Logs: make(map[string][]string),
	}
}

// Ensure MockArtifactStore implements domain.ArtifactStore interface.
var _ domain.ArtifactStore = (*MockArtifactStore)(nil)

// WriteLogs records the response and returns the standard log paths.
func (m *MockArtifactStore) WriteLogs(dir string, resp *domain.CommandResponse) ([]string, error) {
	if m.WriteLogsErr != nil {
		return nil, m.WriteLogsErr
	}
	m.Dirs = append(m.Dirs, dir)
	m.WrittenResponse = resp
	return []string{domain.StdoutLogPath(dir), domain.StderrLogPath(dir)}, nil
}

// WriteSummary records the summary and returns the standard summary path.
func (m *MockArtifactStore) WriteSummary(dir string, summary domain.RunSummary) (string, error) {
	if m.WriteSummaryErr != nil {
		return "", m.WriteSummaryErr
	}
	m.Dirs = append(m.Dirs, dir)
	m.WrittenSummary = &summary
	return domain.SummaryPath(dir), nil
}

// WriteReport records the report and returns the standard report path.
func (m *MockArtifactStore) WriteReport(dir string, report *domain.TestReport, meta domain.ReportMeta) (string, error) {
	if m.WriteReportErr != nil {
		return "", m.WriteReportErr
	}
	m.Dirs = append(m.Dirs, dir)
	m.WrittenReport = report
	m.WrittenMeta = &meta
	return domain.ReportPath(dir), nil
}

// ReadLog returns the configured lines for path.
func (m *MockArtifactStore) ReadLog(path string) ([]string, error) {
	if m.ReadLogErr != nil {
		return nil, m.ReadLogErr
	}
	return m.Logs[path], nil
}

// MockRepoInspector is a test double for domain.RepoInspector.
type MockRepoInspector struct {
	Info       *domain.RepoInfo
	InspectErr error
}

// Ensure MockRepoInspector implements domain.RepoInspector interface.
var _ domain.RepoInspector = (*MockRepoInspector)(nil)

// Inspect returns the configured info or error.
func (m *MockRepoInspector) Inspect(_ string) (*domain.RepoInfo, error) {
	if m.InspectErr != nil {
		return nil, m.InspectErr
	}
	return m.Info, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitRepoErr      error
	InitGlobalErr    error
	InitConfig       *domain.Config // Config passed to the last Init call
	RepoConfigInfo   domain.ConfigSourceInfo
	GlobalConfigInfo domain.ConfigSourceInfo
	InitRepoCalled   bool
	InitGlobalCalled bool
}

// NewMockConfigManager creates a new MockConfigManager.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		RepoConfigInfo: domain.ConfigSourceInfo{
			Path:   "/test/.terrarun.toml",
			Exists: false,
		},
		GlobalConfigInfo: domain.ConfigSourceInfo{
			Path:   "/home/test/.config/terrarun/config.toml",
			Exists: false,
		},
	}
}

// Ensure MockConfigManager implements domain.ConfigManager interface.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// GetRepoConfigInfo returns the configured repo config info.
func (m *MockConfigManager) GetRepoConfigInfo() domain.ConfigSourceInfo {
	return m.RepoConfigInfo
}

// GetGlobalConfigInfo returns the configured global config info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigSourceInfo {
	return m.GlobalConfigInfo
}

// InitRepoConfig records the call and returns configured error.
func (m *MockConfigManager) InitRepoConfig(cfg *domain.Config) error {
	m.InitRepoCalled = true
	m.InitConfig = cfg
	return m.InitRepoErr
}

// InitGlobalConfig records the call and returns configured error.
func (m *MockConfigManager) InitGlobalConfig(cfg *domain.Config) error {
	m.InitGlobalCalled = true
	m.InitConfig = cfg
	return m.InitGlobalErr
}
