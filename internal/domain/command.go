package domain

import "strings"

// Command is an external command to be executed.
// The first token is the executable, the remainder are its arguments.
type Command []string

// NewCommand creates a Command from a program and its arguments.
func NewCommand(program string, args ...string) Command {
	cmd := make(Command, 0, len(args)+1)
	cmd = append(cmd, program)
	return append(cmd, args...)
}

// Validate checks that the command has an executable.
func (c Command) Validate() error {
	if len(c) == 0 || strings.TrimSpace(c[0]) == "" {
		return ErrEmptyCommand
	}
	return nil
}

// Program returns the executable token.
func (c Command) Program() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns the argument tokens.
func (c Command) Args() []string {
	if len(c) < 2 {
		return nil
	}
	return c[1:]
}

// String returns the command joined by spaces, for logging.
func (c Command) String() string {
	return strings.Join(c, " ")
}

// LineConsumer receives captured output lines.
type LineConsumer func(line string)

// RunRequest describes a single process execution.
// Fields are ordered to minimize memory padding.
type RunRequest struct {
	Stdout  LineConsumer // Receives stdout lines once both streams are drained (optional)
	Stderr  LineConsumer // Receives stderr lines once both streams are drained (optional)
	Dir     string       // Working directory; empty inherits the caller's
	Command Command      // Command to run (required)
	Timeout TimeoutSpec  // Bound for stream draining and process exit; zero resolves from Command
}

// CommandResponse is the record of a finished process run.
// It is only built once the process exited and both streams were drained.
type CommandResponse struct {
	Stdout   []string // Captured standard output lines
	Stderr   []string // Captured standard error lines
	ExitCode int      // Process exit code
}

// Succeeded reports whether the process exited with code 0.
func (r *CommandResponse) Succeeded() bool {
	return r != nil && r.ExitCode == 0
}

// FirstLine returns the first non-empty stdout line, trimmed.
func (r *CommandResponse) FirstLine() string {
	if r == nil {
		return ""
	}
	for _, line := range r.Stdout {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}
