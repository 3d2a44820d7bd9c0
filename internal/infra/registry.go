package infra

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/putao520/aria-ng-gui/internal/domain"
)

const registryVersion = 1

// FileRegistry implements domain.EngineRegistry using a JSON file in the
// user data directory.
type FileRegistry struct {
	path string
}

// NewFileRegistry creates a registry at path.
func NewFileRegistry(path string) *FileRegistry {
	return &FileRegistry{path: path}
}

// GetRegistryPath returns the registry file path.
func (r *FileRegistry) GetRegistryPath() string {
	return r.path
}

// Save replaces the stored record.
func (r *FileRegistry) Save(record domain.EngineRecord) error {
	record.Version = registryVersion

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(r.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}

// Load returns the stored record, or nil if none exists.
func (r *FileRegistry) Load() (*domain.EngineRecord, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var record domain.EngineRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("corrupt registry %s: %w", r.path, err)
	}
	return &record, nil
}

// Clear removes the registry file.
func (r *FileRegistry) Clear() error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Ensure FileRegistry implements domain.EngineRegistry.
var _ domain.EngineRegistry = (*FileRegistry)(nil)
