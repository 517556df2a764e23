// Package shared holds helpers used by several use cases.
package shared

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/runoshun/terrarun/internal/domain"
)

// ResolveTestDir returns path as an absolute directory.
// An empty path resolves to the working directory. Returns domain.ErrInvalidTestPath
// if the path does not exist or is not a directory.
func ResolveTestDir(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrInvalidTestPath, path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrInvalidTestPath, path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidTestPath, path)
	}
	return abs, nil
}

// LineWriter returns a consumer that writes each line to w, or nil when w is nil.
func LineWriter(w io.Writer) domain.LineConsumer {
	if w == nil {
		return nil
	}
	return func(line string) {
		_, _ = io.WriteString(w, line+"\n")
	}
}
