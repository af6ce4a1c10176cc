package debuglog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelOff, "OFF"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{" INFO ", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"Error", LevelError},
		{"off", LevelOff},
		{"", LevelOff},
		{"verbose", LevelOff},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogLevel(tt.input))
		})
	}
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, Close())
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestSetupFiltersByLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "kn.log")

	require.NoError(t, Setup(LevelInfo, logPath))
	assert.Equal(t, LevelInfo, GetLevel())

	Debugf("debug message")
	Infof("info message")
	Warnf("warn message")
	Errorf("error message")

	content := readLog(t, logPath)
	assert.NotContains(t, content, "debug message")
	assert.Contains(t, content, "[INFO] info message")
	assert.Contains(t, content, "[WARN] warn message")
	assert.Contains(t, content, "[ERROR] error message")
	assert.Contains(t, content, "kn ")
}

func TestSetupOffWritesNothing(t *testing.T) {
	require.NoError(t, Setup(LevelOff, filepath.Join(t.TempDir(), "never.log")))
	assert.Equal(t, LevelOff, GetLevel())
	assert.False(t, Enabled(LevelError))

	Errorf("dropped")
	require.NoError(t, Close())
}

func TestFieldLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fields.log")
	require.NoError(t, Setup(LevelDebug, logPath))

	WithFields(Fields{
		"page":  3,
		"query": "dp",
	}).Infof("fetched %d items", 25)

	content := readLog(t, logPath)
	assert.Contains(t, content, "fetched 25 items [page=3 query=dp]")
}

func TestSetLevel(t *testing.T) {
	defer SetLevel(LevelOff)

	SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, GetLevel())

	SetLevel(LevelError)
	assert.Equal(t, LevelError, GetLevel())
}
