package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"input-portal/internal/config"
)

func TestGetLogLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"unknown": zapcore.InfoLevel,
	}
	for in, exp := range cases {
		assert.Equal(t, exp, getLogLevel(in), in)
	}
}

func TestSetLoggerDefaults(t *testing.T) {
	cfg := &config.LoggerConfig{}
	setLoggerDefaults(cfg)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.Equal(t, 100, cfg.MaxSize)
	assert.Equal(t, 3, cfg.MaxBackups)
	assert.Equal(t, 7, cfg.MaxAge)
	assert.Equal(t, "UTC", cfg.TimeZone)
	assert.NotEmpty(t, cfg.TimeFormat)
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "portal.log")
	lg, err := NewLogger(&config.LoggerConfig{Output: "file", FilePath: path, Format: "console", Color: true, Stacktrace: true})
	require.NoError(t, err)

	lg.Info("hello from test")
	require.NoError(t, lg.Sync())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello from test")
}

func TestNewLogger_Stdout(t *testing.T) {
	lg, err := NewLogger(&config.LoggerConfig{Level: "debug"})
	require.NoError(t, err)
	assert.True(t, lg.Core().Enabled(zapcore.DebugLevel))
}
