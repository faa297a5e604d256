package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/docuscribe/internal/home"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			assert.True(t, logger.Enabled(context.Background(), tt.want))
			if tt.want > slog.LevelDebug {
				assert.False(t, logger.Enabled(context.Background(), tt.want-1))
			}
		})
	}
}

func TestLoadConfig_PrefersHomeFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	h, err := home.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(h.ConfigPath(), []byte("server:\n  port: \"9555\"\n"), 0o644))

	cfgFile = ""
	mgr, err := loadConfig(h)
	require.NoError(t, err)
	assert.Equal(t, "9555", mgr.Get().Server.Port)
	assert.Equal(t, h.ConfigPath(), mgr.ConfigFileUsed())
}

func TestLoadConfig_FlagWins(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	h, err := home.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(h.ConfigPath(), []byte("server:\n  port: \"9555\"\n"), 0o644))

	explicit := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("server:\n  port: \"9666\"\n"), 0o644))

	cfgFile = explicit
	t.Cleanup(func() { cfgFile = "" })

	mgr, err := loadConfig(h)
	require.NoError(t, err)
	assert.Equal(t, "9666", mgr.Get().Server.Port)
}
