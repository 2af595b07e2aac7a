package models

import "time"

// InstanceInfo describes the running tray instance.
// This corresponds to ~/.lmstray/tray.yaml.
type InstanceInfo struct {
	Version   int       `yaml:"version"`
	PID       int       `yaml:"pid"`
	Model     string    `yaml:"model"`
	WorkDir   string    `yaml:"work_dir"`
	LogFile   string    `yaml:"log_file"`
	StartedAt time.Time `yaml:"started_at"`
}

// NewInstanceInfo creates instance info with current values.
func NewInstanceInfo(pid int, model, workDir, logFile string) *InstanceInfo {
	return &InstanceInfo{
		Version:   1,
		PID:       pid,
		Model:     model,
		WorkDir:   workDir,
		LogFile:   logFile,
		StartedAt: time.Now().UTC(),
	}
}
