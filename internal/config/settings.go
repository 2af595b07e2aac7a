package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lmstudio-tray/lmstray/internal/models"
)

// LoadSettings loads the global settings from ~/.lmstray/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadSettingsFrom(path)
}

// LoadSettingsFrom loads and validates settings from path.
func LoadSettingsFrom(path string) (*models.Settings, error) {
	s, err := LoadYAMLOrDefault(path, models.NewSettings)
	if err != nil {
		return nil, err
	}
	if err := ValidateSettings(s); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings saves the global settings to ~/.lmstray/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// EnsureSettingsFile writes the default settings to ~/.lmstray/settings.yaml
// unless the file already exists, and returns its path.
func EnsureSettingsFile() (string, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return "", err
	}
	return path, ensureSettingsFile(path)
}

func ensureSettingsFile(path string) error {
	if FileExists(path) {
		return nil
	}
	return SaveYAML(path, models.NewSettings())
}

// ValidateSettings checks the timing invariants: the model query must finish
// well inside one poll interval.
func ValidateSettings(s *models.Settings) error {
	m := s.Monitor
	if m.PollInterval < time.Second {
		return fmt.Errorf("monitor.poll_interval %v is below 1s", m.PollInterval)
	}
	if m.QueryTimeout <= 0 || m.QueryTimeout >= m.PollInterval {
		return fmt.Errorf("monitor.query_timeout %v must be positive and shorter than poll_interval %v", m.QueryTimeout, m.PollInterval)
	}
	if m.Cooldown < 0 {
		return fmt.Errorf("monitor.cooldown %v is negative", m.Cooldown)
	}
	if s.Updates.Enabled && s.Updates.Schedule != "" {
		if _, err := cron.ParseStandard(s.Updates.Schedule); err != nil {
			return fmt.Errorf("updates.schedule %q: %w", s.Updates.Schedule, err)
		}
	}
	return nil
}
