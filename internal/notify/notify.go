// Package notify delivers desktop notifications.
package notify

import (
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog/log"
)

// Desktop sends notifications through the platform notification service.
// Delivery failures are logged and otherwise ignored.
type Desktop struct {
	// Icon is an optional path to an icon shown with each notification.
	Icon string

	mu       sync.Mutex
	disabled bool
	send     func(title, message, icon string) error
}

// NewDesktop returns a Desktop notifier registered under appName.
func NewDesktop(appName string) *Desktop {
	if appName != "" {
		beeep.AppName = appName
	}
	return &Desktop{send: func(title, message, icon string) error {
		return beeep.Notify(title, message, icon)
	}}
}

// SetEnabled toggles delivery, e.g. after a settings reload.
func (d *Desktop) SetEnabled(enabled bool) {
	d.mu.Lock()
	d.disabled = !enabled
	d.mu.Unlock()
}

// Notify sends one notification.
func (d *Desktop) Notify(title, body string) {
	d.mu.Lock()
	disabled := d.disabled
	d.mu.Unlock()

	log.Info().Str("title", title).Str("body", body).Msg("Notification")
	if disabled {
		return
	}
	if err := d.send(title, body, d.Icon); err != nil {
		log.Error().Err(err).Str("title", title).Msg("Failed to send notification")
	}
}
