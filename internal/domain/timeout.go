package domain

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeUnit is the unit of a TimeoutSpec.
type TimeUnit int

// Supported timeout units.
const (
	Minutes TimeUnit = iota + 1
	Hours
)

// timeoutKeyword marks an argument token as a timeout override.
const timeoutKeyword = "timeout"

// String returns the single-character suffix of the unit.
func (u TimeUnit) String() string {
	switch u {
	case Minutes:
		return "m"
	case Hours:
		return "h"
	default:
		return "?"
	}
}

// Duration returns the length of one unit.
func (u TimeUnit) Duration() time.Duration {
	switch u {
	case Minutes:
		return time.Minute
	case Hours:
		return time.Hour
	default:
		return 0
	}
}

// TimeoutSpec bounds both stream draining and process exit of a run.
type TimeoutSpec struct {
	Value int64
	Unit  TimeUnit
}

// DefaultTimeout is used when no override is configured.
var DefaultTimeout = TimeoutSpec{Value: 10, Unit: Minutes}

// IsZero reports whether the timeout is unset.
func (t TimeoutSpec) IsZero() bool {
	return t.Value == 0 && t.Unit == 0
}

// Duration converts the timeout to a time.Duration.
// Values beyond the range of time.Duration saturate at its maximum.
func (t TimeoutSpec) Duration() time.Duration {
	unit := t.Unit.Duration()
	if unit == 0 {
		return 0
	}
	if t.Value > maxTimeoutValue(t.Unit) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(t.Value) * unit
}

// Extend returns t lengthened by the given number of minutes.
func (t TimeoutSpec) Extend(minutes int64) TimeoutSpec {
	if minutes <= 0 {
		return t
	}
	value := t.Value
	if t.Unit == Hours {
		value *= int64(time.Hour / time.Minute)
	}
	if value > math.MaxInt64-minutes {
		return TimeoutSpec{Value: math.MaxInt64, Unit: Minutes}
	}
	return TimeoutSpec{Value: value + minutes, Unit: Minutes}
}

// maxTimeoutValue is the largest value of unit that fits in a time.Duration.
func maxTimeoutValue(unit TimeUnit) int64 {
	d := unit.Duration()
	if d == 0 {
		return 0
	}
	return math.MaxInt64 / int64(d)
}

// String returns the timeout in its textual form, e.g. "10m".
func (t TimeoutSpec) String() string {
	return strconv.FormatInt(t.Value, 10) + t.Unit.String()
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeoutSpec) MarshalText() ([]byte, error) {
	if t.IsZero() {
		return []byte{}, nil
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so config files can hold "30m".
func (t *TimeoutSpec) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*t = TimeoutSpec{}
		return nil
	}
	spec, err := ParseTimeout(string(text))
	if err != nil {
		return err
	}
	*t = spec
	return nil
}

// ParseTimeout parses "<integer><unit>" where unit is "m" or "h".
// Zero, negative and values too large for a time.Duration are rejected.
func ParseTimeout(s string) (TimeoutSpec, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return TimeoutSpec{}, fmt.Errorf("%w: %q", ErrInvalidTimeoutValue, s)
	}

	valuePart, unitPart := s[:len(s)-1], s[len(s)-1:]

	var unit TimeUnit
	switch unitPart {
	case "m":
		unit = Minutes
	case "h":
		unit = Hours
	default:
		return TimeoutSpec{}, fmt.Errorf("%w: %s", ErrUnsupportedTimeoutUnit, unitPart)
	}

	value, err := strconv.ParseInt(valuePart, 10, 64)
	if err != nil {
		return TimeoutSpec{}, fmt.Errorf("%w: %q", ErrInvalidTimeoutValue, valuePart)
	}
	if value <= 0 {
		return TimeoutSpec{}, fmt.Errorf("%w: must be positive, got %d", ErrInvalidTimeoutValue, value)
	}
	if limit := maxTimeoutValue(unit); value > limit {
		return TimeoutSpec{}, fmt.Errorf("%w: %d%s exceeds the maximum of %d%s", ErrInvalidTimeoutValue, value, unit, limit, unit)
	}

	return TimeoutSpec{Value: value, Unit: unit}, nil
}

// FindTimeoutOverride returns the first argument containing "timeout".
func FindTimeoutOverride(args []string) (string, bool) {
	for _, arg := range args {
		if strings.Contains(arg, timeoutKeyword) {
			return arg, true
		}
	}
	return "", false
}

// TimeoutResolver derives the TimeoutSpec of a run from its argument list.
type TimeoutResolver struct {
	logger   *slog.Logger
	fallback TimeoutSpec
}

// NewTimeoutResolver creates a resolver. A zero fallback means DefaultTimeout.
func NewTimeoutResolver(logger *slog.Logger, fallback TimeoutSpec) *TimeoutResolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if fallback.IsZero() {
		fallback = DefaultTimeout
	}
	return &TimeoutResolver{logger: logger, fallback: fallback}
}

// Fallback returns the timeout used when no override token is present.
func (r *TimeoutResolver) Fallback() TimeoutSpec {
	return r.fallback
}

// Resolve scans args for a "timeout=<N><unit>" token.
// Only the first matching token is honored.
func (r *TimeoutResolver) Resolve(args []string) (TimeoutSpec, error) {
	token, ok := FindTimeoutOverride(args)
	if !ok {
		r.logger.Info("no timeout override provided, using fallback", "timeout", r.fallback.String())
		return r.fallback, nil
	}

	_, value, found := strings.Cut(token, "=")
	if !found {
		return TimeoutSpec{}, fmt.Errorf("%w: %q must have the form timeout=<N><m|h>", ErrInvalidTimeout, token)
	}

	spec, err := ParseTimeout(value)
	if err != nil {
		return TimeoutSpec{}, err
	}

	r.logger.Info("timeout override set", "timeout", spec.String())
	return spec, nil
}
