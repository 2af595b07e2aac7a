// Package monitor classifies LM Studio daemon and desktop app state, runs the
// start/stop action sequences and drives the tray's poll loop.
package monitor

// Status is the observed lifecycle state of one monitored target.
type Status string

// Target statuses.
const (
	StatusRunning  Status = "running"
	StatusStopped  Status = "stopped"
	StatusNotFound Status = "not_found"
)

// Indicator returns the coloured dot shown next to the target in the menu.
func (s Status) Indicator() string {
	switch s {
	case StatusRunning:
		return "🟢"
	case StatusStopped:
		return "🟡"
	default:
		return "🔴"
	}
}

// Label returns the human-readable status.
func (s Status) Label() string {
	switch s {
	case StatusRunning:
		return "Running"
	case StatusStopped:
		return "Stopped"
	default:
		return "Not Installed"
	}
}

// ModelStatus is the composite condition of the expected model.
type ModelStatus string

// Model statuses. The empty value means no status has been observed yet.
const (
	ModelOK          ModelStatus = "OK"
	ModelInfo        ModelStatus = "INFO"
	ModelWarn        ModelStatus = "WARN"
	ModelFail        ModelStatus = "FAIL"
	ModelMonitorOnly ModelStatus = "MONITOR_ONLY"
)

// Target identifies a monitored process family.
type Target string

// Monitored targets.
const (
	TargetDaemon     Target = "daemon"
	TargetDesktopApp Target = "desktop_app"
)

// PollResult is one classification pass.
type PollResult struct {
	Daemon Status
	App    Status
	Model  ModelStatus
	// Loaded holds model identifiers parsed from the CLI listing (INFO only).
	Loaded []string
	// Stale is set when the model query timed out and Model carries the
	// previously observed value.
	Stale bool
}
