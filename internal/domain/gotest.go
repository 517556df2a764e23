package domain

// go test flags.
const (
	goTestCommand    = "test"
	goVersionCommand = "version"
	verboseFlag      = "-v"
	jsonFlag         = "-json"
	noCacheFlag      = "-count=1"
	runFlag          = "-run"
	runNothing       = "^$"
	timeoutFlag      = "-timeout="
)

// GoTestGraceMinutes is added to the process deadline of a go test run.
// go test's -timeout only covers the test binaries and must fire first.
const GoTestGraceMinutes = 1

// GoTestOptions configures a go test invocation.
// Fields are ordered to minimize memory padding.
type GoTestOptions struct {
	Packages     []string    // Package patterns (default: ./...)
	Args         []string    // Extra arguments appended after the packages
	Timeout      TimeoutSpec // Typed timeout; emitted only when Args carry no timeout token
	JSON         bool        // -json
	HTMLReport   bool        // Requires JSON output
	DisableCache bool        // -count=1
}

// UsesJSON reports whether go test will emit -json events.
func (o GoTestOptions) UsesJSON() bool {
	return o.JSON || o.HTMLReport
}

// GoCommand builds go toolchain commands.
type GoCommand struct {
	binary string
}

// NewGoCommand creates a builder for the given go binary.
func NewGoCommand(binary string) GoCommand {
	if binary == "" {
		binary = DefaultGoBinary
	}
	return GoCommand{binary: binary}
}

// Version returns "go version".
func (g GoCommand) Version() Command {
	return NewCommand(g.binary, goVersionCommand)
}

// Compile returns a go test invocation that builds every test binary without running any test.
func (g GoCommand) Compile(packages, args []string) Command {
	cmd := NewCommand(g.binary, goTestCommand, noCacheFlag, runFlag, runNothing)
	cmd = append(cmd, packagesOrDefault(packages)...)
	return append(cmd, args...)
}

// Test returns the go test invocation for opts.
func (g GoCommand) Test(opts GoTestOptions) Command {
	cmd := NewCommand(g.binary, goTestCommand, verboseFlag)
	if opts.UsesJSON() {
		cmd = append(cmd, jsonFlag)
	}
	if opts.DisableCache {
		cmd = append(cmd, noCacheFlag)
	}
	if _, overridden := FindTimeoutOverride(opts.Args); !overridden && !opts.Timeout.IsZero() {
		cmd = append(cmd, timeoutFlag+opts.Timeout.String())
	}
	cmd = append(cmd, packagesOrDefault(opts.Packages)...)
	return append(cmd, opts.Args...)
}

func packagesOrDefault(packages []string) []string {
	if len(packages) == 0 {
		return []string{DefaultPackages}
	}
	return packages
}
