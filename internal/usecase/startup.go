// Package usecase contains application business logic.
package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/putao520/aria-ng-gui/internal/domain"
)

// StartupConfig describes the engine this host should run.
type StartupConfig struct {
	Platform string // bundle platform name, e.g. "linux" or "win32"
	Arch     string // bundle arch name, e.g. "x64"
	Paths    domain.PathSet
}

// Launcher prepares the engine for its first spawn: locate the binary,
// migrate legacy files, sync the config, and make the binary executable.
type Launcher struct {
	config    StartupConfig
	locator   domain.BinaryLocator
	migrator  domain.ConfigMigrator
	editor    domain.ConfigEditor
	processes domain.ProcessManager
	registry  domain.EngineRegistry
	logger    *zap.Logger

	chmod     func(name string, mode os.FileMode) error
	chmodDone bool
}

// NewLauncher creates a new startup launcher. processes and registry may be
// nil, which disables orphan reaping.
func NewLauncher(
	config StartupConfig,
	locator domain.BinaryLocator,
	migrator domain.ConfigMigrator,
	editor domain.ConfigEditor,
	processes domain.ProcessManager,
	registry domain.EngineRegistry,
	logger *zap.Logger,
) *Launcher {
	return &Launcher{
		config:    config,
		locator:   locator,
		migrator:  migrator,
		editor:    editor,
		processes: processes,
		registry:  registry,
		logger:    logger,
		chmod:     os.Chmod,
	}
}

// Prepare runs the startup sequence and returns the engine binary path.
// Every error is fatal to startup.
func (l *Launcher) Prepare() (string, error) {
	binary, err := l.locator.Resolve(l.config.Platform, l.config.Arch)
	if err != nil {
		return "", fmt.Errorf("failed to locate engine: %w", err)
	}
	l.logger.Info("engine located",
		zap.String("path", binary),
		zap.String("platform", l.config.Platform),
		zap.String("arch", l.config.Arch))

	if err := l.migrator.MigrateAll(l.config.Paths); err != nil {
		return "", fmt.Errorf("failed to migrate engine files: %w", err)
	}

	if err := l.editor.Edit(l.config.Paths.CurrentConfigPath); err != nil {
		return "", fmt.Errorf("failed to update engine config: %w", err)
	}

	if !l.chmodDone {
		if err := l.chmod(binary, 0777); err != nil {
			return "", fmt.Errorf("failed to mark engine executable: %w", err)
		}
		l.chmodDone = true
	}

	l.ReapOrphan(filepath.Base(binary))
	return binary, nil
}

// ReapOrphan interrupts an engine left behind by a host that crashed. The
// recorded PID is only trusted when its process name still matches exeName,
// since PIDs are reused. Returns true when an orphan was interrupted.
func (l *Launcher) ReapOrphan(exeName string) bool {
	if l.registry == nil || l.processes == nil {
		return false
	}

	rec, err := l.registry.Load()
	if err != nil {
		l.logger.Warn("failed to read engine registry", zap.Error(err))
		return false
	}
	if rec == nil || rec.EnginePID <= 0 {
		return false
	}
	if rec.HostPID == l.processes.GetCurrentPID() {
		return false
	}
	if !l.processes.IsRunning(rec.EnginePID) {
		return false
	}

	name, err := l.processes.Name(rec.EnginePID)
	if err != nil || !sameExecutable(name, exeName) {
		l.logger.Debug("recorded engine pid belongs to another process",
			zap.Int("pid", rec.EnginePID),
			zap.String("name", name))
		return false
	}

	if err := l.processes.Interrupt(rec.EnginePID); err != nil {
		l.logger.Warn("failed to stop orphaned engine",
			zap.Int("pid", rec.EnginePID),
			zap.Error(err))
		return false
	}

	l.logger.Info("stopped orphaned engine",
		zap.Int("pid", rec.EnginePID),
		zap.Int("old_host_pid", rec.HostPID))
	return true
}

func sameExecutable(a, b string) bool {
	trim := func(s string) string {
		return strings.TrimSuffix(strings.ToLower(s), ".exe")
	}
	return a != "" && trim(a) == trim(b)
}
