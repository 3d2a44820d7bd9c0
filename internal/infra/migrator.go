package infra

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/putao520/aria-ng-gui/internal/domain"
)

// Migrator moves legacy engine files from the install directory to the
// user data directory. A file already present at the destination wins.
type Migrator struct {
	fs     domain.FileSystemManager
	logger *zap.Logger
}

// NewMigrator creates a new migrator.
func NewMigrator(fs domain.FileSystemManager, logger *zap.Logger) *Migrator {
	return &Migrator{fs: fs, logger: logger}
}

// Migrate moves src to dest. It does nothing when src is absent and only
// deletes src when dest already exists.
func (m *Migrator) Migrate(src, dest string) error {
	if !m.fs.Exists(src) {
		return nil
	}

	if m.fs.Exists(dest) {
		if err := m.fs.Delete(src); err != nil {
			return fmt.Errorf("failed to remove legacy file %s: %w", src, err)
		}
		m.logger.Info("removed legacy file, current copy kept",
			zap.String("legacy", src),
			zap.String("current", dest))
		return nil
	}

	if err := m.fs.Move(src, dest); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", src, err)
	}
	m.logger.Info("migrated legacy file",
		zap.String("from", src),
		zap.String("to", dest))
	return nil
}

// MigrateAll migrates the config file and then the session file.
func (m *Migrator) MigrateAll(paths domain.PathSet) error {
	if err := m.Migrate(paths.LegacyConfigPath, paths.CurrentConfigPath); err != nil {
		return err
	}
	return m.Migrate(paths.LegacySessionPath, paths.CurrentSessionPath)
}

var _ domain.ConfigMigrator = (*Migrator)(nil)
