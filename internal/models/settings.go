// Package models defines the persisted tray configuration and runtime records.
package models

import "time"

// MonitorConfig holds the poll loop timing.
type MonitorConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
	Cooldown     time.Duration `yaml:"cooldown"`
}

// UpdatesConfig holds settings for update checking.
type UpdatesConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron spec, e.g. "@every 24h"
}

// NotificationsConfig holds desktop notification settings.
type NotificationsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Settings represents global tray settings.
// This corresponds to ~/.lmstray/settings.yaml.
type Settings struct {
	Version       int                 `yaml:"version"`
	Monitor       MonitorConfig       `yaml:"monitor"`
	Updates       UpdatesConfig       `yaml:"updates"`
	Notifications NotificationsConfig `yaml:"notifications"`
	// AppImageDirs are searched for a desktop app image in addition to the
	// built-in locations.
	AppImageDirs []string `yaml:"appimage_dirs,omitempty"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Monitor: MonitorConfig{
			PollInterval: 10 * time.Second,
			QueryTimeout: 800 * time.Millisecond,
			Cooldown:     2 * time.Second,
		},
		Updates: UpdatesConfig{
			Enabled:  true,
			Schedule: "@every 24h",
		},
		Notifications: NotificationsConfig{
			Enabled: true,
		},
	}
}
