package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit_Levels(t *testing.T) {
	t.Cleanup(func() { Logger = nil })

	require.NoError(t, Init("development", ""))
	assert.True(t, Get().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Init("production", ""))
	assert.False(t, Get().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, Get().Core().Enabled(zapcore.InfoLevel))

	require.NoError(t, Init("production", "warn"))
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Get().Core().Enabled(zapcore.WarnLevel))
}

func TestInit_InvalidLevel(t *testing.T) {
	t.Cleanup(func() { Logger = nil })

	err := Init("development", "chatty")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "chatty")
}

func TestGet_Uninitialized(t *testing.T) {
	Logger = nil
	assert.NotNil(t, Get())
}
