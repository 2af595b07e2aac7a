// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global tray directory.
	GlobalDirName = ".lmstray"

	// LogsDirName is the name of the per-working-directory logs directory.
	LogsDirName = ".logs"
)

// File names
const (
	InstanceFileName = "tray.yaml"
	SettingsFileName = "settings.yaml"
	LogFileName      = "lmstudio_tray.log"
)

// GlobalDir returns the path to the global tray directory (~/.lmstray/).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalInstanceFile returns the path to the tray.yaml file.
func GlobalInstanceFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, InstanceFileName), nil
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// LogFile returns the log file path for a working directory.
func LogFile(workDir string) string {
	return filepath.Join(workDir, LogsDirName, LogFileName)
}

// EnsureGlobalDir creates the global tray directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
