// Package platform implements per-OS profiles for the bundled engine.
// Each OS (Linux, macOS, Windows) has its own profile defining where the
// engine binary lives in the bundle and which config defaults suit it.
package platform

import (
	"os"
	"runtime"
	"strings"
)

// Setting is a single key=value line of the engine configuration.
type Setting struct {
	Key   string
	Value string
}

// Profile defines the strategy interface for one operating system.
type Profile interface {
	// ID returns the GOOS this profile serves (e.g., "linux", "windows").
	ID() string

	// Platform returns the directory name used by the bundle layout.
	Platform() string

	// ExecutableName returns the engine binary file name.
	ExecutableName() string

	// DownloadDir returns the default download directory.
	DownloadDir() string

	// ConfigDefaults returns settings applied only when the config lacks them.
	ConfigDefaults() []Setting
}

// NodePlatform maps a GOOS value to the platform directory name of the bundle.
func NodePlatform(goos string) string {
	if goos == "windows" {
		return "win32"
	}
	return goos
}

// NodeArch maps a GOARCH value to the architecture directory name of the bundle.
func NodeArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x64"
	case "386":
		return "ia32"
	default:
		return goarch
	}
}

// ExecutableFor returns the engine binary name for a bundle platform name.
func ExecutableFor(platform string) string {
	if platform == "win32" || platform == "windows" {
		return "aria2c.exe"
	}
	return "aria2c"
}

// Locale picks the menu locale from the environment.
func Locale() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			if strings.Contains(strings.ToLower(v), "zh") {
				return "zh-CN"
			}
			return "en-US"
		}
	}
	return "en-US"
}

// CurrentArch returns the bundle arch name of the running system.
func CurrentArch() string {
	return NodeArch(runtime.GOARCH)
}
