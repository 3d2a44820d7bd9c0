// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FakeInstall creates an install directory with a bundled fake engine and
// an empty per-user data directory.
type FakeInstall struct {
	Root        string
	InstallDir  string
	UserDataDir string
	ArgsLog     string // every engine launch appends its arguments here
}

// NewFakeInstall lays out a fake install under root.
func NewFakeInstall(root string) *FakeInstall {
	return &FakeInstall{
		Root:        root,
		InstallDir:  filepath.Join(root, "install"),
		UserDataDir: filepath.Join(root, "userdata"),
		ArgsLog:     filepath.Join(root, "engine-args.log"),
	}
}

// Create writes a shell-script engine at aria2/<platform>/<arch>/aria2c. The
// script records its arguments and then sleeps until interrupted. The file
// is written without the executable bit, as an unpacked bundle would be.
func (f *FakeInstall) Create(platform, arch string) (string, error) {
	dir := filepath.Join(f.InstallDir, "aria2", platform, arch)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := os.MkdirAll(f.UserDataDir, 0755); err != nil {
		return "", err
	}

	script := fmt.Sprintf("#!/bin/sh\necho \"$@\" >> '%s'\nexec sleep 60\n", f.ArgsLog)
	path := filepath.Join(dir, "aria2c")
	if err := os.WriteFile(path, []byte(script), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// WithLegacyConfig writes aria2.conf into the install directory.
func (f *FakeInstall) WithLegacyConfig(content string) error {
	return f.writeLegacy("aria2.conf", content)
}

// WithLegacySession writes aria2.session into the install directory.
func (f *FakeInstall) WithLegacySession(content string) error {
	return f.writeLegacy("aria2.session", content)
}

func (f *FakeInstall) writeLegacy(name, content string) error {
	dir := filepath.Join(f.InstallDir, "aria2")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
}

// Launches returns the argument lines of every engine launch so far.
func (f *FakeInstall) Launches() []string {
	data, err := os.ReadFile(f.ArgsLog)
	if err != nil {
		return nil
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
