package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/terrarun/internal/domain"
)

var sampleEvents = []string{
	`{"Time":"2025-01-02T10:00:00Z","Action":"start","Package":"example.com/infra/test"}`,
	`{"Time":"2025-01-02T10:00:00Z","Action":"run","Package":"example.com/infra/test","Test":"TestVpc"}`,
	`{"Time":"2025-01-02T10:00:01Z","Action":"output","Package":"example.com/infra/test","Test":"TestVpc","Output":"=== RUN   TestVpc\n"}`,
	`{"Time":"2025-01-02T10:00:02Z","Action":"run","Package":"example.com/infra/test","Test":"TestVpc/subnets"}`,
	`{"Time":"2025-01-02T10:00:03Z","Action":"output","Package":"example.com/infra/test","Test":"TestVpc/subnets","Output":"    vpc_test.go:42: expected 3 subnets <got 2>\n"}`,
	`{"Time":"2025-01-02T10:00:04Z","Action":"fail","Package":"example.com/infra/test","Test":"TestVpc/subnets","Elapsed":2}`,
	`{"Time":"2025-01-02T10:00:04Z","Action":"fail","Package":"example.com/infra/test","Test":"TestVpc","Elapsed":4}`,
	`{"Time":"2025-01-02T10:00:04Z","Action":"run","Package":"example.com/infra/test","Test":"TestBucket"}`,
	`{"Time":"2025-01-02T10:00:05Z","Action":"pass","Package":"example.com/infra/test","Test":"TestBucket","Elapsed":1}`,
	`{"Time":"2025-01-02T10:00:05Z","Action":"fail","Package":"example.com/infra/test","Elapsed":5}`,
}

func TestRenderer_Render(t *testing.T) {
	// Setup
	renderer, err := NewRenderer()
	require.NoError(t, err)
	report := domain.ParseTestReport(sampleEvents)
	meta := domain.ReportMeta{
		RunID:    "1a2b3c4d-0000-4000-8000-000000000000",
		TestPath: "./test",
		Command:  "go test -v -json ./...",
		ExitCode: 1,
		Repo:     &domain.RepoInfo{Branch: "main", Commit: "0123456789abcdef0123"},
	}

	// Execute
	var buf bytes.Buffer
	err = renderer.Render(&buf, report, meta)

	// Verify
	require.NoError(t, err)
	html := buf.String()
	assert.Contains(t, html, "Terratest Report: FAIL")
	assert.Contains(t, html, "example.com/infra/test")
	assert.Contains(t, html, "TestVpc")
	assert.Contains(t, html, ">subnets<")
	assert.Contains(t, html, "TestBucket")
	assert.Contains(t, html, "0123456789ab")
	assert.Contains(t, html, "main")
	assert.Contains(t, html, "5s", "duration falls back to event timestamps")
	// Output is escaped
	assert.Contains(t, html, "&lt;got 2&gt;")
	assert.NotContains(t, html, "<got 2>")
}

func TestRenderer_Render_Passed(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	report := domain.ParseTestReport([]string{
		`{"Action":"run","Package":"p","Test":"TestOK"}`,
		`{"Action":"pass","Package":"p","Test":"TestOK","Elapsed":0.5}`,
		`{"Action":"pass","Package":"p","Elapsed":0.6}`,
	})

	var buf bytes.Buffer
	require.NoError(t, renderer.Render(&buf, report, domain.ReportMeta{Duration: 2 * time.Second}))
	assert.Contains(t, buf.String(), "Terratest Report: PASS")
	assert.Contains(t, buf.String(), "2s")
	assert.NotContains(t, buf.String(), "Branch")
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, domain.ParseTestReport(sampleEvents))

	out := buf.String()
	assert.Contains(t, out, "Terratest Results")
	assert.Contains(t, out, "example.com/infra/test")
	assert.Contains(t, out, "├─ TestVpc")
	assert.Contains(t, out, "└─ subnets")
	assert.Contains(t, out, "└─ TestBucket")
	assert.Contains(t, out, "✗ fail")
	assert.Contains(t, out, "✓ pass")
	assert.Contains(t, strings.ToLower(out), "3 tests: 1 passed, 2 failed, 0 skipped")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "-", formatDuration(0))
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "2m0s", formatDuration(2*time.Minute+400*time.Microsecond))
}
