package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit_WritesPerLevelFiles(t *testing.T) {
	dir := t.TempDir()
	log, level, err := Init(config.LoggingConfig{Directory: dir, Level: "warn", MaxSize: 1, MaxBackups: 1, MaxAge: 1})
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level.Level())

	log.Info("hello", zap.String("k", "v"))
	log.Error("boom")
	_ = log.Sync()

	matches, err := filepath.Glob(filepath.Join(dir, "*-info.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.NotContains(t, string(data), "boom")

	matches, err = filepath.Glob(filepath.Join(dir, "*-error.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err = os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "boom")
}

func TestSetLevel(t *testing.T) {
	level := zap.NewAtomicLevel()
	require.NoError(t, SetLevel(level, "debug"))
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	require.NoError(t, SetLevel(level, ""))
	assert.Equal(t, zapcore.InfoLevel, level.Level())

	assert.Error(t, SetLevel(level, "loud"))
}
