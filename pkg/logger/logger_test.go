package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core).Sugar(), logs
}

func TestPackageLevelFunctions(t *testing.T) {
	observed, logs := newObserved(zapcore.DebugLevel)
	prev := Get()
	Set(observed)
	t.Cleanup(func() { Set(prev) })

	Debug("debug message")
	Debugf("debug %s", "formatted")
	Info("info message")
	Infof("info %d", 42)
	Warnw("warn message", "key", "value")
	Errorf("error %v", "formatted")

	entries := logs.All()
	require.Len(t, entries, 6)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "debug message", entries[0].Message)
	assert.Equal(t, "debug formatted", entries[1].Message)
	assert.Equal(t, "info 42", entries[3].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[4].Level)
	assert.Equal(t, "value", entries[4].ContextMap()["key"])
	assert.Equal(t, zapcore.ErrorLevel, entries[5].Level)
}

func TestLevelFiltering(t *testing.T) {
	observed, logs := newObserved(zapcore.InfoLevel)
	prev := Get()
	Set(observed)
	t.Cleanup(func() { Set(prev) })

	Debug("should be dropped")
	Info("should be kept")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "should be kept", entries[0].Message)
}

func TestDefaultLoggerDoesNotPanic(t *testing.T) {
	// The init default must be usable without Initialize.
	assert.NotNil(t, Get())
	assert.NotPanics(t, func() { Infof("startup %s", "probe") })
}
