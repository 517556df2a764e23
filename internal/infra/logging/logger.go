// Package logging provides file-based logging for terrarun.
// Each run appends to its own log file (<dir>/run-<run-id>.log) through an slog.Handler.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/terrarun/internal/domain"
)

// componentKey is the attribute promoted to the category column.
const componentKey = "component"

// Ensure Handler implements slog.Handler interface.
var _ slog.Handler = (*Handler)(nil)

// sink is the log file shared by a Handler and all handlers derived from it.
// Fields are ordered to minimize memory padding.
type sink struct {
	file  *os.File
	dir   string
	runID string
	mu    sync.Mutex
	level slog.Level
}

// Handler writes log records to the run log file.
type Handler struct {
	sink      *sink
	component string
	attrs     []slog.Attr
	groups    []string
}

// New creates a Handler that writes to the run log in dir.
// If dir is empty, logging is disabled (the handler drops every record).
func New(dir, runID string, level slog.Level) *Handler {
	return &Handler{
		sink:      &sink{dir: dir, runID: runID, level: level},
		component: "main",
	}
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Path returns the run log path, or "" when logging is disabled.
func (h *Handler) Path() string {
	if h.sink.dir == "" {
		return ""
	}
	return domain.RunLogPath(h.sink.dir, h.sink.runID)
}

// Enabled reports whether records at level are written.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.sink.dir != "" && level >= h.sink.level
}

// Handle formats the record and appends it to the run log.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	component := h.component
	fields := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields = append(fields, formatAttr(a))
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == componentKey && len(h.groups) == 0 {
			component = a.Value.String()
			return true
		}
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		fields = append(fields, formatAttr(a))
		return true
	})

	f, err := h.sink.ensureFile()
	if err != nil {
		return err
	}

	entry := formatLog(r.Time, r.Level, h.sink.runID, component, r.Message, fields)
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	_, err = io.WriteString(f, entry)
	return err
}

// WithAttrs returns a handler that adds attrs to every record.
// A component attribute replaces the category column instead.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	prefix := strings.Join(h.groups, ".")
	for _, a := range attrs {
		if a.Key == componentKey && prefix == "" {
			next.component = a.Value.String()
			continue
		}
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return next
}

// WithGroup returns a handler that qualifies subsequent attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

func (h *Handler) clone() *Handler {
	return &Handler{
		sink:      h.sink,
		component: h.component,
		attrs:     append([]slog.Attr{}, h.attrs...),
		groups:    append([]string{}, h.groups...),
	}
}

// Close closes the run log file.
func (h *Handler) Close() error {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	if h.sink.file == nil {
		return nil
	}
	err := h.sink.file.Close()
	h.sink.file = nil
	return err
}

// ensureFile opens or returns the run log file.
func (s *sink) ensureFile() (*os.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		return s.file, nil
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}

	path := domain.RunLogPath(s.dir, s.runID)
	// G302: Log files are append-only and need read access by repository users
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open run log file: %w", err)
	}
	s.file = f
	return f, nil
}

// formatLog renders a log entry as a single bracketed line.
// Format: [2025-12-30 09:32:51] [INFO] [run-1a2b3c4d] [executor] message key=value
func formatLog(t time.Time, level slog.Level, runID, component, msg string, fields []string) string {
	runStr := "run"
	if runID != "" {
		runStr = "run-" + shortID(runID)
	}
	line := fmt.Sprintf("[%s] [%s] [%s] [%s] %s",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		runStr,
		component,
		msg,
	)
	if len(fields) > 0 {
		line += " " + strings.Join(fields, " ")
	}
	return line + "\n"
}

func formatAttr(a slog.Attr) string {
	v := a.Value.Resolve().String()
	if strings.ContainsAny(v, " \t\n\"=") {
		v = fmt.Sprintf("%q", v)
	}
	return a.Key + "=" + v
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func levelToString(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// Ensure fanout implements slog.Handler interface.
var _ slog.Handler = fanout(nil)

// fanout dispatches every record to each handler that accepts its level.
type fanout []slog.Handler

// Fanout returns a handler that writes to all handlers.
func Fanout(handlers ...slog.Handler) slog.Handler {
	return fanout(handlers)
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (f fanout) WithGroup(name string) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}
	return next
}
