package domain

import (
	"errors"
	"fmt"
)

// Configuration errors. These abort a run before any process is spawned.
var (
	ErrInvalidTimeout         = errors.New("invalid timeout override")
	ErrUnsupportedTimeoutUnit = fmt.Errorf("%w: unsupported timeout unit", ErrInvalidTimeout)
	ErrInvalidTimeoutValue    = fmt.Errorf("%w: invalid timeout value", ErrInvalidTimeout)
	ErrInvalidTestPath        = errors.New("invalid test path")
	ErrConfigExists           = errors.New("config file already exists")
)

// Execution errors. The process executor returns no response alongside these.
var (
	ErrEmptyCommand     = errors.New("command cannot be empty")
	ErrSpawn            = errors.New("failed to start process")
	ErrStreamRead       = errors.New("failed to read process output")
	ErrExecutionTimeout = errors.New("command execution timed out")
	ErrProcessWait      = errors.New("failed waiting for process")
)

// Run outcome errors.
var (
	ErrGoNotFound        = errors.New("can't find go runtime")
	ErrCompileNotRun     = errors.New("couldn't compile go test(s)")
	ErrCompileFailed     = errors.New("failed to compile go test(s)")
	ErrTestRunFailed     = errors.New("can't run go test")
	ErrTestsFailed       = errors.New("there are failing terratests")
	ErrNotGitRepository  = errors.New("not a git repository (or any of the parent directories)")
	ErrNoReportableInput = errors.New("no go test -json events found")
)

// IsConfigurationError reports whether err aborts a run before spawning.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidTimeout) || errors.Is(err, ErrInvalidTestPath)
}
