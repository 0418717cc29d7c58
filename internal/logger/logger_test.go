package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lexdesk/training-monitor/internal/config"
	"lexdesk/training-monitor/internal/logger"
)

func TestNew_WritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	log := logger.New(config.LogConfig{Level: "debug", File: file, MaxSizeMB: 1})

	log.Debug("comment posted", zap.String("itemId", "v1"))
	_ = log.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"comment posted"`)
	assert.Contains(t, string(data), `"itemId":"v1"`)
}

func TestNew_InfoLevelDropsDebug(t *testing.T) {
	log := logger.New(config.LogConfig{Level: "info"})
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
	assert.True(t, log.Core().Enabled(zap.InfoLevel))
}

func TestNew_LevelParsing(t *testing.T) {
	warn := logger.New(config.LogConfig{Level: "WARN"})
	assert.False(t, warn.Core().Enabled(zap.InfoLevel))
	assert.True(t, warn.Core().Enabled(zap.WarnLevel))

	fallback := logger.New(config.LogConfig{Level: "chatty"})
	assert.True(t, fallback.Core().Enabled(zap.InfoLevel))
	assert.False(t, fallback.Core().Enabled(zap.DebugLevel))
}
