// Package config loads the shell's settings file.
//
// Settings live in <user data dir>/settings.toml. A missing file is not an
// error; every field is optional and falls back to its default:
//
//	install_dir   = "~/Applications/AriaNg GUI"  # default: executable's dir
//	restart_delay = "2s"                         # default: "0s", restart at once
//	log_level     = "debug"                      # default: "info"
//	download_dir  = "~/Downloads"                # default: per-OS profile
//
// Paths support tilde expansion.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
)

// FileName is the settings file name inside the user data directory.
const FileName = "settings.toml"

const defaultLogLevel = "info"

// Settings captures the user-tunable parts of the shell.
type Settings struct {
	InstallDir   string // empty means the executable's directory
	RestartDelay time.Duration
	LogLevel     zapcore.Level
	DownloadDir  string // empty means the platform default
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{LogLevel: zapcore.InfoLevel}
}

// Load parses the settings at path, falling back to defaults when missing.
func Load(path string) (Settings, error) {
	cfg := Default()

	resolved, err := expandPath(path)
	if err != nil {
		return Settings{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Settings{}, fmt.Errorf("open settings: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	var raw struct {
		InstallDir   string `toml:"install_dir"`
		RestartDelay string `toml:"restart_delay"`
		LogLevel     string `toml:"log_level"`
		DownloadDir  string `toml:"download_dir"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}

	if dir := strings.TrimSpace(raw.InstallDir); dir != "" {
		if cfg.InstallDir, err = expandPath(dir); err != nil {
			return Settings{}, fmt.Errorf("install_dir: %w", err)
		}
	}

	if delay := strings.TrimSpace(raw.RestartDelay); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return Settings{}, fmt.Errorf("restart_delay: %w", err)
		}
		if d < 0 {
			return Settings{}, fmt.Errorf("restart_delay must not be negative: %s", delay)
		}
		cfg.RestartDelay = d
	}

	level := strings.TrimSpace(raw.LogLevel)
	if level == "" {
		level = defaultLogLevel
	}
	if cfg.LogLevel, err = zapcore.ParseLevel(level); err != nil {
		return Settings{}, fmt.Errorf("log_level: %w", err)
	}

	if dir := strings.TrimSpace(raw.DownloadDir); dir != "" {
		if cfg.DownloadDir, err = expandPath(dir); err != nil {
			return Settings{}, fmt.Errorf("download_dir: %w", err)
		}
	}

	return cfg, nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
