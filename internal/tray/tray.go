// Package tray renders the monitor's menu as a system tray icon.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog/log"

	"github.com/lmstudio-tray/lmstray/internal/monitor"
)

const maxSlots = 16

// Tray is a monitor.Renderer backed by the system tray. Menu items cannot be
// removed from a systray menu, so a fixed set of slots is allocated once and
// retitled, enabled and hidden on every render.
type Tray struct {
	trigger func(monitor.Action)

	mu      sync.Mutex
	ready   bool
	slots   [maxSlots]*systray.MenuItem
	actions [maxSlots]monitor.Action
	pending *monitor.View
	status  monitor.ModelStatus
	iconSet bool
}

// New returns a Tray that forwards clicks to trigger.
func New(trigger func(monitor.Action)) *Tray {
	return &Tray{trigger: trigger}
}

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStart is called once the tray is ready, onExit when it exits.
func (t *Tray) Run(onStart, onExit func()) {
	systray.Run(func() {
		t.onReady()
		if onStart != nil {
			onStart()
		}
	}, func() {
		if onExit != nil {
			onExit()
		}
	})
}

// Quit signals the tray to exit.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetIcon(Icon(""))
	systray.SetTitle("")
	systray.SetTooltip("LM Studio Tray")

	for i := range t.slots {
		t.slots[i] = systray.AddMenuItem("", "")
		t.slots[i].Hide()
		go t.forwardClicks(i)
	}

	t.mu.Lock()
	t.ready = true
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	if pending != nil {
		t.Render(*pending)
	}
}

func (t *Tray) forwardClicks(slot int) {
	for range t.slots[slot].ClickedCh {
		t.mu.Lock()
		action := t.actions[slot]
		t.mu.Unlock()
		if action == monitor.ActionNone {
			continue
		}
		log.Debug().Str("action", string(action)).Int("slot", slot).Msg("Menu click")
		t.trigger(action)
	}
}

// Render applies v. Views that arrive before the tray is ready are kept and
// applied once it is.
func (t *Tray) Render(v monitor.View) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ready {
		t.pending = &v
		return
	}

	if !t.iconSet || v.Model != t.status {
		systray.SetIcon(Icon(v.Model))
		t.status = v.Model
		t.iconSet = true
	}
	systray.SetTooltip(v.Tooltip)

	for i, s := range layout(v.Items, maxSlots) {
		item := t.slots[i]
		t.actions[i] = s.Action
		if !s.Visible {
			item.Hide()
			continue
		}
		item.SetTitle(s.Title)
		if s.Enabled {
			item.Enable()
		} else {
			item.Disable()
		}
		item.Show()
	}
}
