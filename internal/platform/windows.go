package platform

import (
	"os"
	"path/filepath"
)

// WindowsProfile implements Profile for Windows.
type WindowsProfile struct {
	homeDir string
}

// NewWindowsProfile creates a new Windows profile.
func NewWindowsProfile() *WindowsProfile {
	home, _ := os.UserHomeDir()
	return &WindowsProfile{homeDir: home}
}

// NewWindowsProfileWithHome creates a Windows profile with a custom home directory (for testing).
func NewWindowsProfileWithHome(homeDir string) *WindowsProfile {
	return &WindowsProfile{homeDir: homeDir}
}

func (p *WindowsProfile) ID() string {
	return "windows"
}

func (p *WindowsProfile) Platform() string {
	return "win32"
}

func (p *WindowsProfile) ExecutableName() string {
	return "aria2c.exe"
}

func (p *WindowsProfile) DownloadDir() string {
	return filepath.Join(p.homeDir, "Downloads")
}

// ConfigDefaults uses falloc, which is fast on NTFS.
func (p *WindowsProfile) ConfigDefaults() []Setting {
	return []Setting{
		{Key: "file-allocation", Value: "falloc"},
	}
}

var _ Profile = (*WindowsProfile)(nil)
