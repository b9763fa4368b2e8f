package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFacadeWritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Replace(zap.New(core))

	Info("run finished", "rows", 3)
	Error("event skipped", errors.New("boom"), "uid", "abc")

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "run finished", entries[0].Message)
	assert.Equal(t, int64(3), entries[0].ContextMap()["rows"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["err"])
	assert.Equal(t, "abc", entries[1].ContextMap()["uid"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" Warn "))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}
