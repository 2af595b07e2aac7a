package monitor

import (
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCooldown is the minimum time between accepted control actions.
const DefaultCooldown = 2 * time.Second

// Guard rejects control actions that arrive while a previous one is still
// inside its cooldown window. The window is shared by all actions.
type Guard struct {
	now          func() time.Time
	lockedUntil  time.Time
	lockedAction string
}

// NewGuard returns a Guard reading time from now. time.Now carries a monotonic
// reading, so wall-clock jumps do not affect the window.
func NewGuard(now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{now: now}
}

// TryBegin accepts action unless the guard is locked. On rejection it returns
// the remaining wait.
func (g *Guard) TryBegin(action string, window time.Duration) (bool, time.Duration) {
	now := g.now()
	if now.Before(g.lockedUntil) {
		remaining := g.lockedUntil.Sub(now)
		log.Info().
			Str("action", action).
			Str("locked_by", g.lockedAction).
			Dur("remaining", remaining).
			Msg("Action ignored during cooldown")
		return false, remaining
	}
	g.lockedUntil = now.Add(window)
	g.lockedAction = action
	return true, 0
}

// LockedAction returns the name of the most recently accepted action.
func (g *Guard) LockedAction() string {
	return g.lockedAction
}
