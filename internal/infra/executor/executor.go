// Package executor provides command execution functionality.
package executor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/runoshun/terrarun/internal/domain"
)

// Client implements domain.ProcessRunner by spawning OS processes.
type Client struct {
	logger   *slog.Logger
	resolver *domain.TimeoutResolver
	limit    func(domain.TimeoutSpec) time.Duration
}

// NewClient creates a new command executor client.
// The resolver supplies the timeout for requests that carry none.
func NewClient(logger *slog.Logger, resolver *domain.TimeoutResolver) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if resolver == nil {
		resolver = domain.NewTimeoutResolver(logger, domain.DefaultTimeout)
	}
	return &Client{
		logger:   logger.With("component", "executor"),
		resolver: resolver,
		limit:    domain.TimeoutSpec.Duration,
	}
}

// Ensure Client implements domain.ProcessRunner interface.
var _ domain.ProcessRunner = (*Client)(nil)

// streams holds the drained output of both pipes.
type streams struct {
	stdout []string
	stderr []string
}

// run tracks the state of a single invocation.
type run struct {
	logger *slog.Logger
	state  domain.RunState
}

func (r *run) transition(to domain.RunState) {
	if !r.state.CanTransitionTo(to) {
		r.logger.Warn("unexpected run state transition", "from", r.state, "to", to)
	}
	r.logger.Debug("run state", "from", r.state.Display(), "to", to.Display(),
		"terminal", to.IsTerminal(), "has_response", to.HasResponse())
	r.state = to
}

// Run spawns req.Command, drains stdout and stderr concurrently and waits for the
// process to exit. Both waits are bounded by the request timeout.
//
// A non-zero exit code yields a response. Spawn, read and wait failures, timeouts and
// context cancellation yield a nil response and an error; the child is killed in that case.
// An invalid timeout override in the command arguments fails before anything is spawned.
func (c *Client) Run(ctx context.Context, req domain.RunRequest) (*domain.CommandResponse, error) {
	if err := req.Command.Validate(); err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout.IsZero() {
		resolved, err := c.resolver.Resolve(req.Command.Args())
		if err != nil {
			return nil, err
		}
		timeout = resolved
	}

	logger := c.logger.With("command", req.Command.String())
	r := &run{logger: logger, state: domain.RunStateNotStarted}
	logger.Info("send command to runtime", "dir", req.Dir, "timeout", timeout.String())

	// #nosec G204 - commands are built by terrarun from configuration and flags
	cmd := exec.Command(req.Command.Program(), req.Command.Args()...)
	if req.Dir != "" {
		cmd.Dir = req.Dir
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		r.transition(domain.RunStateFailed)
		return nil, c.fail(logger, fmt.Errorf("%w: stdout pipe: %w", domain.ErrSpawn, err))
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		r.transition(domain.RunStateFailed)
		return nil, c.fail(logger, fmt.Errorf("%w: stderr pipe: %w", domain.ErrSpawn, err))
	}

	if err := cmd.Start(); err != nil {
		r.transition(domain.RunStateFailed)
		return nil, c.fail(logger, fmt.Errorf("%w: %w", domain.ErrSpawn, err))
	}
	r.transition(domain.RunStateRunning)

	// Each reader owns its own slice until the group is joined.
	var out streams
	var g errgroup.Group
	g.Go(func() error {
		lines, err := readLines(stdoutPipe)
		if err != nil {
			return fmt.Errorf("%w: stdout: %w", domain.ErrStreamRead, err)
		}
		out.stdout = lines
		return nil
	})
	g.Go(func() error {
		lines, err := readLines(stderrPipe)
		if err != nil {
			return fmt.Errorf("%w: stderr: %w", domain.ErrStreamRead, err)
		}
		out.stderr = lines
		return nil
	})

	drained := make(chan error, 1)
	go func() {
		drained <- g.Wait()
	}()

	if abandoned, err := c.await(ctx, drained, timeout); err != nil {
		// Readers only fail once the pipes break, so the child still needs reaping.
		c.terminate(cmd, logger, true)
		if abandoned {
			r.transition(stateFor(err))
		} else {
			r.transition(domain.RunStateFailed)
		}
		return nil, c.fail(logger, fmt.Errorf("draining output: %w", err))
	}

	deliver(req.Stdout, out.stdout)
	deliver(req.Stderr, out.stderr)

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	abandoned, waitErr := c.await(ctx, exited, timeout)
	if abandoned {
		// The goroutine above is still in cmd.Wait and reaps the child once killed.
		c.terminate(cmd, logger, false)
		r.transition(stateFor(waitErr))
		return nil, c.fail(logger, waitErr)
	}

	exitCode, err := exitCodeOf(waitErr)
	if err != nil {
		r.transition(domain.RunStateFailed)
		return nil, c.fail(logger, err)
	}

	resp := &domain.CommandResponse{
		Stdout:   out.stdout,
		Stderr:   out.stderr,
		ExitCode: exitCode,
	}
	r.transition(domain.RunStateCompleted)
	logger.Info("command response",
		"exit_code", resp.ExitCode,
		"stdout_lines", len(resp.Stdout),
		"stderr_lines", len(resp.Stderr))
	return resp, nil
}

// await blocks until done yields, the timeout elapses or ctx is cancelled.
// abandoned is true when the wait gave up before done yielded.
func (c *Client) await(ctx context.Context, done <-chan error, timeout domain.TimeoutSpec) (abandoned bool, err error) {
	timer := time.NewTimer(c.limit(timeout))
	defer timer.Stop()

	select {
	case err := <-done:
		return false, err
	case <-timer.C:
		return true, fmt.Errorf("%w after %s", domain.ErrExecutionTimeout, timeout.String())
	case <-ctx.Done():
		return true, fmt.Errorf("%w: %w", domain.ErrProcessWait, ctx.Err())
	}
}

// terminate kills the child. With reap set it also waits for it, which closes the
// pipes and ends both readers.
func (c *Client) terminate(cmd *exec.Cmd, logger *slog.Logger, reap bool) {
	if cmd.Process == nil {
		return
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logger.Warn("failed to kill process", "pid", cmd.Process.Pid, "error", err)
	}
	if reap {
		go func() {
			_ = cmd.Wait()
		}()
	}
	logger.Info("process terminated", "pid", cmd.Process.Pid)
}

func (c *Client) fail(logger *slog.Logger, err error) error {
	if errors.Is(err, domain.ErrExecutionTimeout) {
		logger.Error("command execution timed out", "error", err)
	} else {
		logger.Error("error happened executing the command", "error", err)
	}
	return err
}

// exitCodeOf maps the result of cmd.Wait to an exit code.
func exitCodeOf(waitErr error) (int, error) {
	if waitErr == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("%w: %w", domain.ErrProcessWait, waitErr)
}

func stateFor(err error) domain.RunState {
	if errors.Is(err, domain.ErrExecutionTimeout) {
		return domain.RunStateTimedOut
	}
	return domain.RunStateFailed
}

// readLines reads r to EOF and returns its lines without line terminators.
func readLines(r io.Reader) ([]string, error) {
	lines := []string{}
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// deliver passes non-empty payloads to consumer.
func deliver(consumer domain.LineConsumer, lines []string) {
	if consumer == nil || len(lines) == 0 {
		return
	}
	for _, line := range lines {
		consumer(line)
	}
}
