package infra

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/putao520/aria-ng-gui/internal/domain"
	"github.com/putao520/aria-ng-gui/internal/platform"
)

const defaultRPCPort = "6800"

// confLine is one line of the engine config. key is empty for comments
// and blank lines, which are kept verbatim.
type confLine struct {
	raw string
	key string
}

// ConfEditor keeps the engine configuration in sync with the environment.
// Managed keys are always overwritten; defaults only fill gaps, so user
// edits to everything else survive.
type ConfEditor struct {
	profile     platform.Profile
	sessionPath string
	downloadDir string
	logger      *zap.Logger
}

// NewConfEditor creates a config editor. An empty downloadDir means the
// profile's default download directory.
func NewConfEditor(profile platform.Profile, sessionPath, downloadDir string, logger *zap.Logger) *ConfEditor {
	if downloadDir == "" {
		downloadDir = profile.DownloadDir()
	}
	return &ConfEditor{
		profile:     profile,
		sessionPath: sessionPath,
		downloadDir: downloadDir,
		logger:      logger,
	}
}

// Edit creates the config at path or rewrites it in place.
func (e *ConfEditor) Edit(path string) error {
	lines, perm, err := readConf(path)
	if err != nil {
		return err
	}

	lines = set(lines, "enable-rpc", "true")
	lines = set(lines, "input-file", e.sessionPath)
	lines = set(lines, "save-session", e.sessionPath)

	lines = setDefault(lines, "dir", e.downloadDir)
	lines = setDefault(lines, "rpc-listen-port", defaultRPCPort)
	lines = setDefault(lines, "continue", "true")
	for _, s := range e.profile.ConfigDefaults() {
		lines = setDefault(lines, s.Key, s.Value)
	}

	// The engine refuses to start when input-file is missing.
	if err := ensureFile(e.sessionPath); err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	if dir := valueOf(lines, "dir"); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			e.logger.Warn("failed to create download dir", zap.String("dir", dir), zap.Error(err))
		}
	}

	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l.raw)
		buf.WriteByte('\n')
	}

	if err := writeFileAtomic(path, buf.Bytes(), perm); err != nil {
		return fmt.Errorf("failed to write engine config: %w", err)
	}

	e.logger.Debug("engine config updated", zap.String("path", path))
	return nil
}

// readConf loads the config as lines, with no limit on line length.
func readConf(path string) ([]confLine, os.FileMode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0644, nil
		}
		return nil, 0, fmt.Errorf("failed to read engine config: %w", err)
	}

	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, perm, nil
	}

	raws := strings.Split(text, "\n")
	lines := make([]confLine, 0, len(raws))
	for _, raw := range raws {
		raw = strings.TrimRight(raw, "\r")
		lines = append(lines, confLine{raw: raw, key: keyOf(raw)})
	}
	return lines, perm, nil
}

func keyOf(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return ""
	}
	key, _, ok := strings.Cut(trimmed, "=")
	if !ok {
		return ""
	}
	return strings.TrimSpace(key)
}

func valueOf(lines []confLine, key string) string {
	for _, l := range lines {
		if l.key == key {
			_, v, _ := strings.Cut(l.raw, "=")
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// set replaces the first occurrence of key, drops any duplicates, and
// appends the key when absent.
func set(lines []confLine, key, value string) []confLine {
	entry := confLine{raw: key + "=" + value, key: key}

	out := lines[:0:0]
	found := false
	for _, l := range lines {
		if l.key != key {
			out = append(out, l)
			continue
		}
		if !found {
			out = append(out, entry)
			found = true
		}
	}
	if !found {
		out = append(out, entry)
	}
	return out
}

// setDefault sets key only when it is missing or empty.
func setDefault(lines []confLine, key, value string) []confLine {
	if valueOf(lines, key) != "" {
		return lines
	}
	return set(lines, key, value)
}

func ensureFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}

// writeFileAtomic writes data to a temp file beside path and renames it
// into place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpPath := fmt.Sprintf("%s.%d.tmp", path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

var _ domain.ConfigEditor = (*ConfEditor)(nil)
