package infra

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/putao520/aria-ng-gui/internal/domain"
	"github.com/putao520/aria-ng-gui/internal/platform"
)

// ErrBinaryNotFound means no bundled engine could be located.
var ErrBinaryNotFound = errors.New("engine binary not found")

// Locator finds the bundled engine executable for a platform/arch pair.
type Locator struct {
	binDir string
	logger *zap.Logger
}

// NewLocator creates a locator rooted at binDir (<install>/aria2).
func NewLocator(binDir string, logger *zap.Logger) *Locator {
	return &Locator{binDir: binDir, logger: logger}
}

// Resolve returns the path of the engine binary for platform and arch.
func (l *Locator) Resolve(platformName, arch string) (string, error) {
	_, path, err := l.Locate(platformName, arch)
	return path, err
}

// Locate returns the descriptor that was selected together with its path.
// When <binDir>/<platform>/<arch>/<exe> is missing, the first platform
// directory and its first arch directory are used instead. os.ReadDir sorts
// entries by name, so the fallback is deterministic.
func (l *Locator) Locate(platformName, arch string) (domain.BinaryDescriptor, string, error) {
	if arch == "x32" {
		arch = "ia32"
	}

	desc := domain.BinaryDescriptor{
		Platform:       platformName,
		Arch:           arch,
		ExecutableName: platform.ExecutableFor(platformName),
	}
	path := filepath.Join(l.binDir, desc.Platform, desc.Arch, desc.ExecutableName)
	if _, err := os.Stat(path); err == nil {
		return desc, path, nil
	}

	fallbackPlatform, err := firstSubdirName(l.binDir)
	if err != nil {
		return domain.BinaryDescriptor{}, "", err
	}
	platformDir := filepath.Join(l.binDir, fallbackPlatform)

	fallbackArch, err := firstSubdirName(platformDir)
	if err != nil {
		return domain.BinaryDescriptor{}, "", err
	}

	l.logger.Warn("engine binary for this system not bundled, using fallback",
		zap.String("wanted", path),
		zap.String("platform", fallbackPlatform),
		zap.String("arch", fallbackArch))

	// The executable name stays tied to the running system.
	desc.Platform = fallbackPlatform
	desc.Arch = fallbackArch
	return desc, filepath.Join(platformDir, fallbackArch, desc.ExecutableName), nil
}

// firstSubdirName returns the name of the first directory entry under dir.
func firstSubdirName(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: cannot read %s: %v", ErrBinaryNotFound, dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			return e.Name(), nil
		}
	}
	return "", fmt.Errorf("%w: no subdirectory in %s", ErrBinaryNotFound, dir)
}

var _ domain.BinaryLocator = (*Locator)(nil)
