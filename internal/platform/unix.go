package platform

import (
	"os"
	"path/filepath"
)

// UnixProfile implements Profile for Linux and other unix-like systems.
type UnixProfile struct {
	goos    string
	homeDir string
}

// NewUnixProfile creates a profile for a unix-like GOOS.
func NewUnixProfile(goos string) *UnixProfile {
	home, _ := os.UserHomeDir()
	return &UnixProfile{goos: goos, homeDir: home}
}

// NewUnixProfileWithHome creates a unix profile with a custom home directory (for testing).
func NewUnixProfileWithHome(goos, homeDir string) *UnixProfile {
	return &UnixProfile{goos: goos, homeDir: homeDir}
}

func (p *UnixProfile) ID() string {
	return p.goos
}

func (p *UnixProfile) Platform() string {
	return NodePlatform(p.goos)
}

func (p *UnixProfile) ExecutableName() string {
	return ExecutableFor(p.Platform())
}

// DownloadDir honors XDG_DOWNLOAD_DIR before falling back to ~/Downloads.
func (p *UnixProfile) DownloadDir() string {
	if dir := os.Getenv("XDG_DOWNLOAD_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(p.homeDir, "Downloads")
}

func (p *UnixProfile) ConfigDefaults() []Setting {
	return []Setting{
		{Key: "file-allocation", Value: "prealloc"},
	}
}

var _ Profile = (*UnixProfile)(nil)
