package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsNop(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)
	l.Log.Info("discarded")
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "client.log")

	l := New()
	require.NoError(t, l.Init("debug", path))
	l.Log.Debug("fetched issues")
	_ = l.Log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "fetched issues"), "log file content: %s", data)
}

func TestInit_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")

	l := New()
	require.NoError(t, l.Init("warn", path))
	l.Log.Info("hidden")
	l.Log.Warn("shown")
	_ = l.Log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestInit_BadLevel(t *testing.T) {
	l := New()
	err := l.Init("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
