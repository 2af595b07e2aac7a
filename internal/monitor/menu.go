package monitor

import (
	"fmt"
	"strings"
)

// Action names a menu-triggered operation.
type Action string

// Menu actions.
const (
	ActionNone            Action = ""
	ActionStartDaemon     Action = "start_daemon"
	ActionStopDaemon      Action = "stop_daemon"
	ActionStartDesktopApp Action = "start_desktop_app"
	ActionStopDesktopApp  Action = "stop_desktop_app"
	ActionReloadModel     Action = "reload_model"
	ActionShowStatus      Action = "show_status"
	ActionCheckUpdates    Action = "check_updates"
	ActionAbout           Action = "about"
	ActionQuit            Action = "quit"
)

// MenuItem is one declarative menu entry. A separator carries no label.
type MenuItem struct {
	Label     string
	Enabled   bool
	Action    Action
	Separator bool
}

// View is everything the rendering layer needs for one rebuild.
type View struct {
	Model   ModelStatus
	Tooltip string
	Items   []MenuItem
}

// MenuState is the input of BuildMenu.
type MenuState struct {
	Daemon          Status
	App             Status
	Model           ModelStatus
	ExpectedModel   string
	LMSAvailable    bool
	UpdateAvailable string
}

var separator = MenuItem{Separator: true}

// BuildMenu computes the menu from the current state. It has no side effects.
func BuildMenu(st MenuState) []MenuItem {
	items := []MenuItem{
		{Label: fmt.Sprintf("%s Daemon (%s)", st.Daemon.Indicator(), st.Daemon.Label())},
	}
	switch st.Daemon {
	case StatusRunning:
		items = append(items, MenuItem{Label: "Stop Daemon", Enabled: true, Action: ActionStopDaemon})
	case StatusStopped:
		items = append(items, MenuItem{Label: "Start Daemon (Headless)", Enabled: true, Action: ActionStartDaemon})
	}

	items = append(items, separator,
		MenuItem{Label: fmt.Sprintf("%s Desktop App (%s)", st.App.Indicator(), st.App.Label())},
	)
	switch st.App {
	case StatusRunning:
		items = append(items, MenuItem{Label: "Stop Desktop App", Enabled: true, Action: ActionStopDesktopApp})
	case StatusStopped:
		items = append(items, MenuItem{
			Label:   "Start Desktop App",
			Enabled: st.LMSAvailable,
			Action:  ActionStartDesktopApp,
		})
	}

	hasModel := st.ExpectedModel != "" && st.ExpectedModel != NoModel
	items = append(items, separator,
		MenuItem{Label: "Reload Model", Enabled: hasModel && st.LMSAvailable, Action: ActionReloadModel},
		MenuItem{Label: "Show Status", Enabled: true, Action: ActionShowStatus},
	)

	updates := MenuItem{Label: "Check for Updates", Enabled: true, Action: ActionCheckUpdates}
	if st.UpdateAvailable != "" {
		updates.Label = fmt.Sprintf("Update Available (%s)", st.UpdateAvailable)
	}
	items = append(items, updates,
		MenuItem{Label: "About", Enabled: true, Action: ActionAbout},
		separator,
		MenuItem{Label: "Quit Tray", Enabled: true, Action: ActionQuit},
	)
	return items
}

// Tooltip describes the model status for the tray icon.
func Tooltip(status ModelStatus, model string, loaded []string) string {
	switch status {
	case ModelOK:
		return "✅ Model active: " + model
	case ModelInfo:
		tip := fmt.Sprintf("ℹ️ Loaded model changed (expected: %s)", model)
		if len(loaded) > 0 {
			if len(loaded) > 3 {
				loaded = loaded[:3]
			}
			tip += "\nLoaded: " + strings.Join(loaded, ", ")
		}
		return tip
	case ModelWarn:
		return fmt.Sprintf("⚠️ No model loaded (expected: %s)", model)
	case ModelMonitorOnly:
		return "ℹ️ lms CLI not found, monitoring only"
	case ModelFail:
		return "❌ LM Studio is not running"
	default:
		return "LM Studio Tray"
	}
}

// TransitionMessage returns the notification body for entering status.
func TransitionMessage(status ModelStatus, model string) string {
	switch status {
	case ModelOK:
		return fmt.Sprintf("✅ Model %s is now active", model)
	case ModelInfo:
		return "ℹ️ Model changed to another one"
	case ModelWarn:
		return fmt.Sprintf("⚠️ No model loaded (expected: %s)", model)
	case ModelMonitorOnly:
		return "ℹ️ lms CLI not found, monitoring only"
	default:
		return "❌ LM Studio has stopped"
	}
}
