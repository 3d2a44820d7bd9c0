package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Empty(t, cfg.InstallDir)
	assert.Zero(t, cfg.RestartDelay)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
}

func TestLoad_ParsesAllFields(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeSettings(t, `
install_dir = "  ~/apps/ariang  "
restart_delay = "1500ms"
log_level = "debug"
download_dir = "~/Media"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "apps", "ariang"), cfg.InstallDir)
	assert.Equal(t, 1500*time.Millisecond, cfg.RestartDelay)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.Equal(t, filepath.Join(home, "Media"), cfg.DownloadDir)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeSettings(t, `restart_delay = "5s"`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.RestartDelay)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	assert.Empty(t, cfg.DownloadDir)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid toml", `install_dir = `},
		{"bad duration", `restart_delay = "soon"`},
		{"negative duration", `restart_delay = "-1s"`},
		{"unknown level", `log_level = "chatty"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeSettings(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("  ")
	assert.Error(t, err)
}
