package domain

import (
	"bytes"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeoutSpec
		wantErr error
	}{
		{"5m", TimeoutSpec{5, Minutes}, nil},
		{"2h", TimeoutSpec{2, Hours}, nil},
		{"90m", TimeoutSpec{90, Minutes}, nil},
		{" 15m ", TimeoutSpec{15, Minutes}, nil},
		{"2562047h", TimeoutSpec{2562047, Hours}, nil},
		{"153722867m", TimeoutSpec{153722867, Minutes}, nil},
		{"2562048h", TimeoutSpec{}, ErrInvalidTimeoutValue},
		{"3000000h", TimeoutSpec{}, ErrInvalidTimeoutValue},
		{"153722868m", TimeoutSpec{}, ErrInvalidTimeoutValue},
		{"5x", TimeoutSpec{}, ErrUnsupportedTimeoutUnit},
		{"5s", TimeoutSpec{}, ErrUnsupportedTimeoutUnit},
		{"1h30m", TimeoutSpec{}, ErrInvalidTimeoutValue},
		{"abcm", TimeoutSpec{}, ErrInvalidTimeoutValue},
		{"1.5h", TimeoutSpec{}, ErrInvalidTimeoutValue},
		{"0m", TimeoutSpec{}, ErrInvalidTimeoutValue},
		{"-3m", TimeoutSpec{}, ErrInvalidTimeoutValue},
		{"m", TimeoutSpec{}, ErrInvalidTimeoutValue},
		{"", TimeoutSpec{}, ErrInvalidTimeoutValue},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeout(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrInvalidTimeout)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeoutSpec_Duration(t *testing.T) {
	assert.Equal(t, 10*time.Minute, DefaultTimeout.Duration())
	assert.Equal(t, 2*time.Hour, TimeoutSpec{2, Hours}.Duration())
	assert.Equal(t, time.Duration(0), TimeoutSpec{}.Duration())

	// Out of range values saturate instead of wrapping negative
	assert.Equal(t, time.Duration(math.MaxInt64), TimeoutSpec{3000000, Hours}.Duration())
	assert.Equal(t, time.Duration(math.MaxInt64), TimeoutSpec{math.MaxInt64, Minutes}.Duration())
	assert.Positive(t, TimeoutSpec{2562047, Hours}.Duration())
}

func TestTimeoutSpec_Extend(t *testing.T) {
	tests := []struct {
		name    string
		spec    TimeoutSpec
		minutes int64
		want    TimeoutSpec
	}{
		{"minutes", TimeoutSpec{10, Minutes}, 1, TimeoutSpec{11, Minutes}},
		{"hours become minutes", TimeoutSpec{2, Hours}, 1, TimeoutSpec{121, Minutes}},
		{"no extension", TimeoutSpec{2, Hours}, 0, TimeoutSpec{2, Hours}},
		{"saturates", TimeoutSpec{math.MaxInt64, Minutes}, 1, TimeoutSpec{math.MaxInt64, Minutes}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.Extend(tt.minutes))
		})
	}
}

func TestTimeoutSpec_String(t *testing.T) {
	assert.Equal(t, "10m", DefaultTimeout.String())
	assert.Equal(t, "2h", TimeoutSpec{2, Hours}.String())
}

func TestTimeoutSpec_TextRoundTrip(t *testing.T) {
	var spec TimeoutSpec
	require.NoError(t, spec.UnmarshalText([]byte("45m")))
	assert.Equal(t, TimeoutSpec{45, Minutes}, spec)

	text, err := spec.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "45m", string(text))

	require.NoError(t, spec.UnmarshalText(nil))
	assert.True(t, spec.IsZero())

	err = spec.UnmarshalText([]byte("45d"))
	assert.ErrorIs(t, err, ErrUnsupportedTimeoutUnit)
}

func TestFindTimeoutOverride(t *testing.T) {
	token, ok := FindTimeoutOverride([]string{"test", "-v", "-timeout=5m", "timeout=1h"})
	assert.True(t, ok)
	assert.Equal(t, "-timeout=5m", token)

	_, ok = FindTimeoutOverride([]string{"test", "-v", "./..."})
	assert.False(t, ok)

	_, ok = FindTimeoutOverride([]string{"-run=TestTimeoutHandling"})
	assert.False(t, ok, "match is case-sensitive")
}

func TestTimeoutResolver_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    TimeoutSpec
		wantErr error
	}{
		{"no override uses default", []string{"go", "test", "./..."}, TimeoutSpec{10, Minutes}, nil},
		{"empty args uses default", nil, TimeoutSpec{10, Minutes}, nil},
		{"minutes", []string{"go", "test", "timeout=5m"}, TimeoutSpec{5, Minutes}, nil},
		{"hours", []string{"go", "test", "-timeout=2h"}, TimeoutSpec{2, Hours}, nil},
		{"first token wins", []string{"-timeout=3h", "-timeout=7m"}, TimeoutSpec{3, Hours}, nil},
		{"unsupported unit", []string{"go", "test", "timeout=5x"}, TimeoutSpec{}, ErrUnsupportedTimeoutUnit},
		{"malformed number", []string{"-timeout=fivem"}, TimeoutSpec{}, ErrInvalidTimeoutValue},
		{"zero", []string{"-timeout=0m"}, TimeoutSpec{}, ErrInvalidTimeoutValue},
		{"missing equals", []string{"-timeout", "5m"}, TimeoutSpec{}, ErrInvalidTimeout},
		{"first token is malformed", []string{"-timeout", "-timeout=5m"}, TimeoutSpec{}, ErrInvalidTimeout},
	}

	resolver := NewTimeoutResolver(nil, TimeoutSpec{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(tt.args)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsConfigurationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeoutResolver_ConfiguredFallback(t *testing.T) {
	resolver := NewTimeoutResolver(nil, TimeoutSpec{30, Minutes})
	assert.Equal(t, TimeoutSpec{30, Minutes}, resolver.Fallback())

	got, err := resolver.Resolve([]string{"go", "test"})
	require.NoError(t, err)
	assert.Equal(t, TimeoutSpec{30, Minutes}, got)

	// An argument override still wins over the configured value
	got, err = resolver.Resolve([]string{"go", "test", "-timeout=1h"})
	require.NoError(t, err)
	assert.Equal(t, TimeoutSpec{1, Hours}, got)
}

func TestTimeoutResolver_LogsSource(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	resolver := NewTimeoutResolver(logger, TimeoutSpec{})

	_, err := resolver.Resolve(nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no timeout override provided")
	assert.Contains(t, buf.String(), "timeout=10m")

	buf.Reset()
	_, err = resolver.Resolve([]string{"timeout=2h"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "timeout override set")
	assert.Contains(t, buf.String(), "timeout=2h")
}
