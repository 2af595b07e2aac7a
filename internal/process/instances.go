package process

import (
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
)

// maxCommLen is the kernel's limit on the process name reported for a PID.
const maxCommLen = 15

// InstanceMatcher recognises long-running copies of a command-line program.
type InstanceMatcher struct {
	// Executable is the program's base name, e.g. "lmstray".
	Executable string
	// Transient lists subcommands and flags that make an invocation exit
	// right away, e.g. "status" or "--version".
	Transient []string
}

// Matches reports whether e runs the program itself, not a subcommand from
// Transient and not another program that merely mentions it in its arguments.
func (m InstanceMatcher) Matches(e Entry) bool {
	if m.Executable == "" || len(e.Args) == 0 {
		return false
	}
	if filepath.Base(e.Args[0]) != m.Executable {
		return false
	}
	if e.Name != "" && e.Name != m.Executable &&
		(len(e.Name) != maxCommLen || !strings.HasPrefix(m.Executable, e.Name)) {
		return false
	}
	for _, arg := range e.Args[1:] {
		if slices.Contains(m.Transient, arg) {
			return false
		}
		if !strings.HasPrefix(arg, "-") {
			// The first positional argument selects the subcommand.
			break
		}
	}
	return true
}

// TerminateOthers sends SIGTERM to every instance matched by m, except self.
// It returns the PIDs that were signalled.
func TerminateOthers(l Lister, s Signaller, m InstanceMatcher, self int) []int {
	entries, err := l.List()
	if err != nil {
		log.Warn().Err(err).Msg("Cannot list processes to find old instances")
		return nil
	}
	var killed []int
	for _, e := range entries {
		if e.PID == self || !m.Matches(e) {
			continue
		}
		if err := s.Signal(e.PID, syscall.SIGTERM); err != nil {
			log.Warn().Err(err).Int("pid", e.PID).Msg("Error terminating old instance")
			continue
		}
		log.Info().Int("pid", e.PID).Msg("Terminating old instance")
		killed = append(killed, e.PID)
	}
	return killed
}
