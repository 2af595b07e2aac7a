package tray

import "github.com/lmstudio-tray/lmstray/internal/monitor"

const separatorTitle = "────────────"

// slotState is what one pre-allocated menu item shows.
type slotState struct {
	Visible bool
	Title   string
	Enabled bool
	Action  monitor.Action
}

// layout maps a declarative menu onto n fixed slots. Items beyond n are
// dropped, unused slots are hidden.
func layout(items []monitor.MenuItem, n int) []slotState {
	out := make([]slotState, n)
	for i, it := range items {
		if i >= n {
			break
		}
		if it.Separator {
			out[i] = slotState{Visible: true, Title: separatorTitle}
			continue
		}
		out[i] = slotState{
			Visible: true,
			Title:   it.Label,
			Enabled: it.Enabled && it.Action != monitor.ActionNone,
			Action:  it.Action,
		}
	}
	return out
}
