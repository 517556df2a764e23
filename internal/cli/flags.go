package cli

import (
	"github.com/spf13/cobra"

	"github.com/runoshun/terrarun/internal/domain"
)

// testFlags holds the flags shared by compile and test.
// Fields are ordered to minimize memory padding.
type testFlags struct {
	path         string
	timeout      string
	packages     []string
	json         bool
	htmlReport   bool
	disableCache bool
	logFiles     bool
}

// runOptions is the result of merging flags over the [test] config section.
// Fields are ordered to minimize memory padding.
type runOptions struct {
	Path         string
	Packages     []string
	Args         []string
	Timeout      domain.TimeoutSpec
	JSON         bool
	HTMLReport   bool
	DisableCache bool
	LogFiles     bool
}

// register adds the flags to cmd. Output flags are only added for test runs.
func (f *testFlags) register(cmd *cobra.Command, run bool) {
	cmd.Flags().StringVarP(&f.path, "path", "p", "", "Directory holding the terratests (default: current directory)")
	cmd.Flags().StringSliceVar(&f.packages, "package", nil, "Package pattern to test (repeatable, default: ./...)")
	cmd.Flags().StringVarP(&f.timeout, "timeout", "t", "", "Run timeout in minutes or hours, e.g. 30m or 2h (default: 10m)")

	if !run {
		return
	}
	cmd.Flags().BoolVar(&f.json, "json", false, "Use go test -json output and print a result table")
	cmd.Flags().BoolVar(&f.htmlReport, "html-report", false, "Write terratest-report.html into the test directory (implies --json)")
	cmd.Flags().BoolVar(&f.disableCache, "disable-cache", false, "Pass -count=1 to go test")
	cmd.Flags().BoolVar(&f.logFiles, "log-files", false, "Write stdout/stderr logs and a run summary into the test directory")
}

// resolve merges the flags that were set on the command line over cfg.
// Positional args are appended to the configured go test arguments.
func (f *testFlags) resolve(cmd *cobra.Command, cfg *domain.Config, args []string) (runOptions, error) {
	if cfg == nil {
		cfg = domain.NewDefaultConfig()
	}
	opts := runOptions{
		Path:         cfg.Test.Path,
		Packages:     cfg.Test.Packages,
		Args:         append(append([]string{}, cfg.Test.Args...), args...),
		Timeout:      cfg.Test.Timeout,
		JSON:         cfg.Test.JSON,
		HTMLReport:   cfg.Test.HTMLReport,
		DisableCache: cfg.Test.DisableCache,
		LogFiles:     cfg.Test.LogFiles,
	}

	flags := cmd.Flags()
	if flags.Changed("path") {
		opts.Path = f.path
	}
	if flags.Changed("package") {
		opts.Packages = f.packages
	}
	if flags.Changed("timeout") {
		timeout, err := domain.ParseTimeout(f.timeout)
		if err != nil {
			return runOptions{}, err
		}
		opts.Timeout = timeout
	}
	if flags.Changed("json") {
		opts.JSON = f.json
	}
	if flags.Changed("html-report") {
		opts.HTMLReport = f.htmlReport
	}
	if flags.Changed("disable-cache") {
		opts.DisableCache = f.disableCache
	}
	if flags.Changed("log-files") {
		opts.LogFiles = f.logFiles
	}
	return opts, nil
}
