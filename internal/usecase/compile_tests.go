package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/runoshun/terrarun/internal/domain"
	"github.com/runoshun/terrarun/internal/usecase/shared"
)

// CompileTestsInput contains the parameters for compiling the tests.
// Fields are ordered to minimize memory padding.
type CompileTestsInput struct {
	Stdout   io.Writer          // Receives compiler output (optional)
	Stderr   io.Writer          // Receives compiler errors (optional)
	Path     string             // Test directory (default: working directory)
	Packages []string           // Package patterns (default: ./...)
	Args     []string           // Extra go test arguments
	Timeout  domain.TimeoutSpec // Fallback when Args carry no timeout override
}

// CompileTestsOutput contains the result of compiling the tests.
type CompileTestsOutput struct {
	Response *domain.CommandResponse
	TestPath string // Resolved test directory
}

// CompileTests builds every test binary without running a test.
type CompileTests struct {
	runner domain.ProcessRunner
	logger *slog.Logger
	goCmd  domain.GoCommand
}

// NewCompileTests creates a new CompileTests use case.
func NewCompileTests(runner domain.ProcessRunner, logger *slog.Logger, goBinary string) *CompileTests {
	return &CompileTests{
		runner: runner,
		logger: logger.With("component", "compile"),
		goCmd:  domain.NewGoCommand(goBinary),
	}
}

// Execute compiles the tests in in.Path.
// On ErrCompileFailed the output still carries the compiler response.
func (uc *CompileTests) Execute(ctx context.Context, in CompileTestsInput) (*CompileTestsOutput, error) {
	dir, err := shared.ResolveTestDir(in.Path)
	if err != nil {
		return nil, err
	}

	// Only the caller's arguments may carry a timeout override, never the package patterns.
	timeout, err := domain.NewTimeoutResolver(uc.logger, in.Timeout).Resolve(in.Args)
	if err != nil {
		return nil, err
	}
	cmd := uc.goCmd.Compile(in.Packages, in.Args)

	uc.logger.Info("compiling go tests", "path", dir)
	resp, err := uc.runner.Run(ctx, domain.RunRequest{
		Stdout:  shared.LineWriter(in.Stdout),
		Stderr:  shared.LineWriter(in.Stderr),
		Dir:     dir,
		Command: cmd,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCompileNotRun, err)
	}
	if resp == nil {
		return nil, domain.ErrCompileNotRun
	}

	out := &CompileTestsOutput{Response: resp, TestPath: dir}
	if !resp.Succeeded() {
		return out, fmt.Errorf("%w (exit code %d)", domain.ErrCompileFailed, resp.ExitCode)
	}
	return out, nil
}
