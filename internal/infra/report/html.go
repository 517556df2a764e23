// Package report renders parsed go test results as HTML and console tables.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/runoshun/terrarun/internal/domain"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

const reportTemplate = "report.html.tmpl"

// Ensure Renderer implements domain.ReportRenderer interface.
var _ domain.ReportRenderer = (*Renderer)(nil)

// Renderer renders TestReports with the embedded HTML template.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded report template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// pageData is the view model handed to the template.
type pageData struct {
	Meta     domain.ReportMeta
	Stats    domain.TestStats
	Started  string
	Duration string
	Packages []packageView
	Passed   bool
}

type packageView struct {
	Name    string
	Status  domain.TestStatus
	Elapsed string
	Rows    []testRow
}

// testRow is one test or subtest, flattened with its nesting depth.
type testRow struct {
	Name    string
	Status  domain.TestStatus
	Elapsed string
	Output  []string
	Indent  int
	Open    bool
}

// Render writes the HTML report to w.
func (r *Renderer) Render(w io.Writer, report *domain.TestReport, meta domain.ReportMeta) error {
	data := pageData{
		Meta:     meta,
		Stats:    report.Stats(),
		Passed:   report.Passed(),
		Duration: formatDuration(meta.Duration),
	}
	if meta.Duration == 0 {
		data.Duration = formatDuration(report.Duration())
	}
	started := meta.StartedAt
	if started.IsZero() {
		started = report.Started
	}
	if !started.IsZero() {
		data.Started = started.Format(time.RFC3339)
	}

	for _, pkg := range report.Packages {
		view := packageView{
			Name:    pkg.Name,
			Status:  pkg.Status,
			Elapsed: formatDuration(pkg.Elapsed),
		}
		appendRows(&view.Rows, pkg.Tests, 0)
		data.Packages = append(data.Packages, view)
	}

	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func appendRows(rows *[]testRow, tests []*domain.TestCase, depth int) {
	for _, tc := range tests {
		name := tc.Name
		if depth > 0 {
			name = tc.ShortName()
		}
		*rows = append(*rows, testRow{
			Name:    name,
			Status:  tc.Status,
			Elapsed: formatDuration(tc.Elapsed),
			Output:  tc.Output,
			Indent:  depth * 2,
			Open:    tc.Status == domain.TestStatusFail,
		})
		appendRows(rows, tc.SubTests, depth+1)
	}
}

// formatDuration renders d rounded to milliseconds, or "-" when unknown.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
