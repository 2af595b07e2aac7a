package tui

import "github.com/lmstudio-tray/lmstray/internal/monitor"

// viewMsg carries a new controller view.
type viewMsg monitor.View

// noteMsg carries a notification to show in the event list.
type noteMsg struct {
	title string
	body  string
}
