package idmbatch

import (
	"strconv"
	"strings"
)

// Batch size bounds offered by the slider. Typed values outside this range
// are still accepted as long as they are positive.
const (
	MinBatchSize     = 1
	MaxBatchSize     = 16
	DefaultBatchSize = 5
)

// DefaultExecPath is where Internet Download Manager installs by default.
const DefaultExecPath = `C:\Program Files (x86)\Internet Download Manager\IDMan.exe`

// ValidateBatchSize returns EINVALID unless n is positive.
func ValidateBatchSize(n int) error {
	if n <= 0 {
		return Errorf(EINVALID, "batch size must be positive")
	}
	return nil
}

// ParseBatchSize parses a user-typed batch size.
func ParseBatchSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, Errorf(EINVALID, "batch size cannot be empty")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, Errorf(EINVALID, "invalid batch size %q, please enter a number", s)
	}
	if err := ValidateBatchSize(n); err != nil {
		return 0, err
	}
	return n, nil
}

// ClampBatchSize limits n to the slider range for display.
func ClampBatchSize(n int) int {
	return min(max(n, MinBatchSize), MaxBatchSize)
}

// Settings are the values remembered between runs.
type Settings struct {
	ExecPath  string  `yaml:"idm_path"`
	Browser   Browser `yaml:"browser"`
	BatchSize int     `yaml:"batch_size"`
	Source    string  `yaml:"last_url"`
}

// DefaultSettings returns the settings used when nothing has been saved.
func DefaultSettings() *Settings {
	return &Settings{
		ExecPath:  DefaultExecPath,
		Browser:   DefaultBrowser,
		BatchSize: DefaultBatchSize,
	}
}

// Normalize replaces missing or invalid fields with defaults.
func (s *Settings) Normalize() {
	d := DefaultSettings()
	if strings.TrimSpace(s.ExecPath) == "" {
		s.ExecPath = d.ExecPath
	}
	if s.Browser.Validate() != nil {
		s.Browser = d.Browser
	}
	if s.BatchSize <= 0 {
		s.BatchSize = d.BatchSize
	}
}

// SettingsStore loads and saves Settings.
type SettingsStore interface {
	// Load returns saved settings, or defaults if none were saved.
	Load() (*Settings, error)

	// Save persists settings.
	Save(settings *Settings) error
}
