package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/runoshun/terrarun/internal/domain"
)

// WriteTable writes a console summary of report to w.
func WriteTable(w io.Writer, report *domain.TestReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Terratest Results (%s)", formatDuration(report.Duration())))

	t.AppendHeader(table.Row{"Type", "Name", "Duration", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Type", AutoMerge: true},
		{Name: "Name", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
	})

	for _, pkg := range report.Packages {
		t.AppendRow(table.Row{"Package", pkg.Name, formatDuration(pkg.Elapsed), statusString(pkg.Status)})
		appendTableRows(t, pkg.Tests, "")
	}

	stats := report.Stats()
	t.AppendFooter(table.Row{
		"Total",
		fmt.Sprintf("%d tests: %d passed, %d failed, %d skipped", stats.Total, stats.Passed, stats.Failed, stats.Skipped),
		"",
		statusString(overall(report)),
	})
	t.Render()
}

func appendTableRows(t table.Writer, tests []*domain.TestCase, indent string) {
	for i, tc := range tests {
		prefix := "├─"
		if i == len(tests)-1 {
			prefix = "└─"
		}
		t.AppendRow(table.Row{
			"",
			fmt.Sprintf("%s%s %s", indent, prefix, tc.ShortName()),
			formatDuration(tc.Elapsed),
			statusString(tc.Status),
		})
		appendTableRows(t, tc.SubTests, indent+"   ")
	}
}

func overall(report *domain.TestReport) domain.TestStatus {
	if report.Passed() {
		return domain.TestStatusPass
	}
	return domain.TestStatusFail
}

func statusString(status domain.TestStatus) string {
	switch status {
	case domain.TestStatusPass:
		return "✓ pass"
	case domain.TestStatusFail:
		return "✗ fail"
	case domain.TestStatusSkip:
		return "- skip"
	default:
		return "? running"
	}
}
