package domain

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// TestStatus is the outcome of a test or package.
type TestStatus string

// Test statuses, named after go test -json actions.
const (
	TestStatusPass    TestStatus = "pass"
	TestStatusFail    TestStatus = "fail"
	TestStatusSkip    TestStatus = "skip"
	TestStatusRunning TestStatus = "running" // Started but never finished (e.g. killed by timeout)
)

// go test -json actions.
const (
	ActionRun    = "run"
	ActionPause  = "pause"
	ActionCont   = "cont"
	ActionPass   = "pass"
	ActionFail   = "fail"
	ActionSkip   = "skip"
	ActionOutput = "output"
	ActionStart  = "start"
)

// TestEvent is one line of go test -json output.
type TestEvent struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Output  string    `json:"Output"`
	Elapsed float64   `json:"Elapsed"`
}

// TestCase is a single test function or subtest.
// Fields are ordered to minimize memory padding.
type TestCase struct {
	Name     string
	Status   TestStatus
	Output   []string
	SubTests []*TestCase
	Elapsed  time.Duration
}

// ShortName returns the last path element of a subtest name.
func (c *TestCase) ShortName() string {
	if i := strings.LastIndex(c.Name, "/"); i >= 0 {
		return c.Name[i+1:]
	}
	return c.Name
}

// PackageResult groups the tests of one package.
// Fields are ordered to minimize memory padding.
type PackageResult struct {
	Name    string
	Status  TestStatus
	Output  []string
	Tests   []*TestCase
	Elapsed time.Duration
}

// TestStats counts outcomes across a report.
type TestStats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Running int
}

// TestReport is the parsed form of a go test -json stream.
type TestReport struct {
	Packages []*PackageResult
	Started  time.Time
	Finished time.Time
	Unparsed int // Lines that were not go test -json events
}

// Stats returns outcome counts over all tests, subtests included.
func (r *TestReport) Stats() TestStats {
	var stats TestStats
	var walk func(tests []*TestCase)
	walk = func(tests []*TestCase) {
		for _, tc := range tests {
			stats.Total++
			switch tc.Status {
			case TestStatusPass:
				stats.Passed++
			case TestStatusFail:
				stats.Failed++
			case TestStatusSkip:
				stats.Skipped++
			default:
				stats.Running++
			}
			walk(tc.SubTests)
		}
	}
	for _, pkg := range r.Packages {
		walk(pkg.Tests)
	}
	return stats
}

// Passed reports whether no package or test failed or was left running.
func (r *TestReport) Passed() bool {
	for _, pkg := range r.Packages {
		if pkg.Status == TestStatusFail || pkg.Status == TestStatusRunning {
			return false
		}
	}
	s := r.Stats()
	return s.Failed == 0 && s.Running == 0
}

// Empty reports whether no event was recognised.
func (r *TestReport) Empty() bool {
	return len(r.Packages) == 0
}

// Duration returns the wall time between the first and last event.
func (r *TestReport) Duration() time.Duration {
	if r.Started.IsZero() || r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// reportBuilder accumulates events into packages and tests.
type reportBuilder struct {
	report   *TestReport
	packages map[string]*PackageResult
	tests    map[string]map[string]*TestCase
}

// ParseTestReport builds a TestReport from go test -json output lines.
// Lines that are not JSON events are counted in Unparsed and otherwise ignored.
func ParseTestReport(lines []string) *TestReport {
	b := &reportBuilder{
		report:   &TestReport{},
		packages: make(map[string]*PackageResult),
		tests:    make(map[string]map[string]*TestCase),
	}

	for _, raw := range lines {
		// A single captured entry may hold several newline-joined lines.
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var ev TestEvent
			if !strings.HasPrefix(line, "{") || json.Unmarshal([]byte(line), &ev) != nil || ev.Action == "" {
				b.report.Unparsed++
				continue
			}
			b.apply(ev)
		}
	}

	b.finish()
	return b.report
}

func (b *reportBuilder) apply(ev TestEvent) {
	if !ev.Time.IsZero() {
		if b.report.Started.IsZero() || ev.Time.Before(b.report.Started) {
			b.report.Started = ev.Time
		}
		if ev.Time.After(b.report.Finished) {
			b.report.Finished = ev.Time
		}
	}

	pkg := b.pkg(ev.Package)
	if ev.Test == "" {
		switch ev.Action {
		case ActionOutput:
			pkg.Output = append(pkg.Output, strings.TrimRight(ev.Output, "\n"))
		case ActionPass, ActionFail, ActionSkip:
			pkg.Status = TestStatus(ev.Action)
			pkg.Elapsed = elapsed(ev.Elapsed)
		}
		return
	}

	tc := b.test(pkg, ev.Test)
	switch ev.Action {
	case ActionOutput:
		tc.Output = append(tc.Output, strings.TrimRight(ev.Output, "\n"))
	case ActionPass, ActionFail, ActionSkip:
		tc.Status = TestStatus(ev.Action)
		tc.Elapsed = elapsed(ev.Elapsed)
	}
}

func (b *reportBuilder) pkg(name string) *PackageResult {
	if p, ok := b.packages[name]; ok {
		return p
	}
	p := &PackageResult{Name: name, Status: TestStatusRunning}
	b.packages[name] = p
	b.tests[name] = make(map[string]*TestCase)
	b.report.Packages = append(b.report.Packages, p)
	return p
}

// test returns the case for name, creating parents for subtests on demand.
func (b *reportBuilder) test(pkg *PackageResult, name string) *TestCase {
	byName := b.tests[pkg.Name]
	if tc, ok := byName[name]; ok {
		return tc
	}

	tc := &TestCase{Name: name, Status: TestStatusRunning}
	byName[name] = tc

	if i := strings.LastIndex(name, "/"); i >= 0 {
		parent := b.test(pkg, name[:i])
		parent.SubTests = append(parent.SubTests, tc)
	} else {
		pkg.Tests = append(pkg.Tests, tc)
	}
	return tc
}

// finish sorts packages and fails unfinished packages that already had a failing test.
func (b *reportBuilder) finish() {
	sort.SliceStable(b.report.Packages, func(i, j int) bool {
		return b.report.Packages[i].Name < b.report.Packages[j].Name
	})
	for _, pkg := range b.report.Packages {
		if pkg.Status != TestStatusRunning {
			continue
		}
		for _, tc := range pkg.Tests {
			if tc.Status == TestStatusFail {
				pkg.Status = TestStatusFail
				break
			}
		}
	}
}

func elapsed(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
