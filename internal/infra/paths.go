// Package infra implements infrastructure concerns (process, filesystem, registry).
package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/putao520/aria-ng-gui/internal/domain"
)

const (
	// AppName names the per-user data directory.
	AppName = "AriaNg GUI"

	engineDirName   = "aria2"
	configFileName  = "aria2.conf"
	sessionFileName = "aria2.session"
)

// AppPaths holds every filesystem location the shell touches.
type AppPaths struct {
	InstallDir       string // where the shell and its bundle live
	UserDataDir      string // per-user, stable across upgrades
	BinDir           string // <install>/aria2, holds <platform>/<arch>/<exe>
	LogDir           string
	SettingsPath     string
	RegistryPath     string
	LockPath         string
	InstanceInfoPath string
	Engine           domain.PathSet
}

// NewAppPaths builds the path layout for an install and a user data directory.
func NewAppPaths(installDir, userDataDir string) *AppPaths {
	legacyBase := filepath.Join(installDir, engineDirName)

	return &AppPaths{
		InstallDir:       installDir,
		UserDataDir:      userDataDir,
		BinDir:           legacyBase,
		LogDir:           filepath.Join(userDataDir, "logs"),
		SettingsPath:     filepath.Join(userDataDir, "settings.toml"),
		RegistryPath:     filepath.Join(userDataDir, "engine.json"),
		LockPath:         filepath.Join(userDataDir, "instance.lock"),
		InstanceInfoPath: filepath.Join(userDataDir, "instance.json"),
		Engine: domain.PathSet{
			LegacyBase:         legacyBase,
			CurrentBase:        userDataDir,
			LegacyConfigPath:   filepath.Join(legacyBase, configFileName),
			CurrentConfigPath:  filepath.Join(userDataDir, configFileName),
			LegacySessionPath:  filepath.Join(legacyBase, sessionFileName),
			CurrentSessionPath: filepath.Join(userDataDir, sessionFileName),
		},
	}
}

// DefaultInstallDir returns the directory holding the running executable.
func DefaultInstallDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// DefaultUserDataDir returns <os config dir>/AriaNg GUI.
func DefaultUserDataDir() (string, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(cfgDir, AppName), nil
}

// DetectAppPaths resolves paths for the running process. An empty installDir
// means the executable's directory.
func DetectAppPaths(installDir string) (*AppPaths, error) {
	if installDir == "" {
		dir, err := DefaultInstallDir()
		if err != nil {
			return nil, err
		}
		installDir = dir
	}

	userData, err := DefaultUserDataDir()
	if err != nil {
		return nil, err
	}

	return NewAppPaths(installDir, userData), nil
}

// EnsureUserDataDir creates the user data and log directories.
func (p *AppPaths) EnsureUserDataDir() error {
	if err := os.MkdirAll(p.UserDataDir, 0755); err != nil {
		return fmt.Errorf("failed to create user data dir: %w", err)
	}
	if err := os.MkdirAll(p.LogDir, 0755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}
	return nil
}
