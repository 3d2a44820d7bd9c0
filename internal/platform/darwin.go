package platform

import (
	"os"
	"path/filepath"
)

// DarwinProfile implements Profile for macOS.
type DarwinProfile struct {
	homeDir string
}

// NewDarwinProfile creates a new macOS profile.
func NewDarwinProfile() *DarwinProfile {
	home, _ := os.UserHomeDir()
	return &DarwinProfile{homeDir: home}
}

// NewDarwinProfileWithHome creates a macOS profile with a custom home directory (for testing).
func NewDarwinProfileWithHome(homeDir string) *DarwinProfile {
	return &DarwinProfile{homeDir: homeDir}
}

func (p *DarwinProfile) ID() string {
	return "darwin"
}

func (p *DarwinProfile) Platform() string {
	return "darwin"
}

func (p *DarwinProfile) ExecutableName() string {
	return "aria2c"
}

func (p *DarwinProfile) DownloadDir() string {
	return filepath.Join(p.homeDir, "Downloads")
}

// ConfigDefaults disables preallocation; APFS handles sparse files itself.
func (p *DarwinProfile) ConfigDefaults() []Setting {
	return []Setting{
		{Key: "file-allocation", Value: "none"},
	}
}

var _ Profile = (*DarwinProfile)(nil)
