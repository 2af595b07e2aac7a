package config

import (
	"os"
	"syscall"

	"github.com/lmstudio-tray/lmstray/internal/models"
)

// LoadInstanceInfo loads the running tray's record from ~/.lmstray/tray.yaml.
// Returns nil if the file doesn't exist.
func LoadInstanceInfo() (*models.InstanceInfo, error) {
	path, err := GlobalInstanceFile()
	if err != nil {
		return nil, err
	}
	return loadInstanceInfo(path)
}

func loadInstanceInfo(path string) (*models.InstanceInfo, error) {
	if !FileExists(path) {
		return nil, nil
	}
	var info models.InstanceInfo
	if err := LoadYAML(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SaveInstanceInfo saves the tray's record to ~/.lmstray/tray.yaml.
func SaveInstanceInfo(info *models.InstanceInfo) error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}
	path, err := GlobalInstanceFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, info)
}

// RemoveInstanceInfo removes the tray.yaml file.
func RemoveInstanceInfo() error {
	path, err := GlobalInstanceFile()
	if err != nil {
		return err
	}
	return removeIfExists(path)
}

func removeIfExists(path string) error {
	if !FileExists(path) {
		return nil
	}
	return os.Remove(path)
}

// IsTrayRunning reports whether a tray instance is alive.
// Returns true if tray.yaml exists and its PID answers signal 0; a stale file
// is removed.
func IsTrayRunning() (bool, *models.InstanceInfo, error) {
	path, err := GlobalInstanceFile()
	if err != nil {
		return false, nil, err
	}
	return isTrayRunning(path)
}

func isTrayRunning(path string) (bool, *models.InstanceInfo, error) {
	info, err := loadInstanceInfo(path)
	if err != nil {
		return false, nil, err
	}
	if info == nil {
		return false, nil, nil
	}

	if !pidAlive(info.PID) {
		_ = removeIfExists(path)
		return false, info, nil
	}
	return true, info, nil
}

func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	// On Unix, FindProcess always succeeds
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return p.Signal(syscall.Signal(0)) == nil
}
