// Package yaml persists idmbatch settings as a YAML file.
package yaml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/idmbatch"
	"gopkg.in/yaml.v3"
)

// Ensure SettingsStore implements idmbatch.SettingsStore at compile time.
var _ idmbatch.SettingsStore = (*SettingsStore)(nil)

// SettingsStore implements idmbatch.SettingsStore backed by a single file.
// Saves write a temporary file next to the target and rename it into place,
// so a crash never leaves a truncated settings file behind.
type SettingsStore struct {
	path string
}

// NewSettingsStore creates a store for the file at path.
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// DefaultPath returns the per-user settings location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "idmbatch", "settings.yaml"), nil
}

// Path returns the file the store reads and writes.
func (s *SettingsStore) Path() string {
	return s.path
}

// Load reads settings from disk. A missing file yields defaults.
// Fields that are missing or invalid are replaced with defaults.
func (s *SettingsStore) Load() (*idmbatch.Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return idmbatch.DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	var settings idmbatch.Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, idmbatch.Errorf(idmbatch.EINVALID, "settings file %s is not valid YAML: %v", s.path, err)
	}
	settings.Normalize()
	return &settings, nil
}

// Save writes settings to disk atomically.
func (s *SettingsStore) Save(settings *idmbatch.Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}
