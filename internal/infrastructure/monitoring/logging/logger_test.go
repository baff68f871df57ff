package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newObservedLogger returns a Logger whose entries can be inspected.
func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo, Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelDebug, Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_DefaultsApplied(t *testing.T) {
	// Empty config: level info, json, stdout/stderr.
	l, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_InvalidOutputPath(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{"scheme://bad"}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestLogger_EmitsStructuredFields(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	l.Info("evaluation completed",
		String("profile_id", "prf-1"),
		Float64("score", 87.25),
		Int("honors", 3),
		Bool("disqualified", false),
		Duration("elapsed", 5*time.Millisecond),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "evaluation completed", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "prf-1", fields["profile_id"])
	assert.Equal(t, 87.25, fields["score"])
	assert.Equal(t, int64(3), fields["honors"])
	assert.Equal(t, false, fields["disqualified"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, logs := newObservedLogger(zapcore.WarnLevel)

	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("visible")
	l.Error("also visible")

	assert.Equal(t, 2, logs.Len())
}

func TestLogger_With_InheritsFields(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	child := l.With(String("component", "gatekeeper"))
	child.Info("downgrade applied")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "gatekeeper", entries[0].ContextMap()["component"])
}

func TestLogger_Named(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	l.Named("http").Info("request served")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "http", entries[0].LoggerName)
}

func TestErr_NilError(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestErr_NonNilError(t *testing.T) {
	f := Err(errors.New("boom"))
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "boom", f.Value)
}

func TestNopLogger_DiscardsEverything(t *testing.T) {
	l := NewNopLogger()
	// Must not panic, including through With/Named chains.
	l.With(String("k", "v")).Named("x").Info("ignored")
	l.Debug("ignored")
	l.Error("ignored")
}

func TestDefault_SetAndGet(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	l, logs := newObservedLogger(zapcore.DebugLevel)
	SetDefault(l)
	Default().Info("via default")

	assert.Equal(t, 1, logs.Len())
}

func TestSetDefault_IgnoresNil(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	SetDefault(nil)
	assert.NotNil(t, Default())
}
