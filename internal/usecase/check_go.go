// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/terrarun/internal/domain"
)

// CheckGoInput contains the input for the CheckGo use case.
type CheckGoInput struct{}

// CheckGoOutput contains the output of the CheckGo use case.
type CheckGoOutput struct {
	Version string // First line of "go version", e.g. "go version go1.23.4 linux/amd64"
}

// CheckGo verifies that the go toolchain can be executed.
type CheckGo struct {
	runner domain.ProcessRunner
	goCmd  domain.GoCommand
}

// NewCheckGo creates a new CheckGo use case.
func NewCheckGo(runner domain.ProcessRunner, goBinary string) *CheckGo {
	return &CheckGo{
		runner: runner,
		goCmd:  domain.NewGoCommand(goBinary),
	}
}

// Execute runs "go version" and returns the reported version.
func (uc *CheckGo) Execute(ctx context.Context, _ CheckGoInput) (*CheckGoOutput, error) {
	resp, err := uc.runner.Run(ctx, domain.RunRequest{Command: uc.goCmd.Version()})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGoNotFound, err)
	}
	if resp == nil || !resp.Succeeded() {
		return nil, domain.ErrGoNotFound
	}

	version := resp.FirstLine()
	if version == "" {
		return nil, domain.ErrGoNotFound
	}
	return &CheckGoOutput{Version: version}, nil
}
