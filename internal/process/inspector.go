package process

import (
	"path"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
)

// AppMatcher describes how to recognise the root process of a multi-process
// GUI application.
type AppMatcher struct {
	// Executable is the bare command name, e.g. "lm-studio".
	Executable string
	// InstallPaths are absolute invocation paths that identify the app even when
	// the command line was rewritten into a single string.
	InstallPaths []string
	// HelperMarker is present on every helper/renderer subprocess.
	HelperMarker string
}

// IsRoot reports whether e is the application's main process.
func (m AppMatcher) IsRoot(e Entry) bool {
	if len(e.Args) == 0 {
		return false
	}
	line := e.Cmdline()
	if m.HelperMarker != "" && strings.Contains(line, m.HelperMarker) {
		return false
	}

	argv0 := e.Args[0]
	if argv0 == m.Executable {
		return true
	}
	if strings.HasPrefix(argv0, "/") && path.Base(argv0) == m.Executable {
		return true
	}

	// Command lines rewritten into one string: fall back to textual forms.
	if line == m.Executable || strings.HasPrefix(line, m.Executable+" ") {
		return true
	}
	for _, p := range m.InstallPaths {
		if line == p || strings.HasPrefix(line, p+" ") {
			return true
		}
	}
	return false
}

// Inspector answers liveness questions against a Lister.
type Inspector struct {
	Lister Lister
}

// NewInspector returns an Inspector over l.
func NewInspector(l Lister) *Inspector {
	return &Inspector{Lister: l}
}

// IsRunning reports whether a process named name is alive. The exact-name
// probe decides; the full command lines are searched for name only when that
// probe cannot run. Probe failures degrade to false.
func (i *Inspector) IsRunning(name string) bool {
	pids, err := i.Lister.PIDsByExactName(name)
	if err == nil {
		return len(pids) > 0
	}
	log.Debug().Err(err).Str("name", name).Msg("exact-name probe failed, trying pattern probe")

	pids, err = i.Lister.PIDsByPattern(name)
	if err != nil {
		log.Debug().Err(err).Str("name", name).Msg("pattern probe failed")
		return false
	}
	return len(pids) > 0
}

// RootPIDs returns the PIDs of every root process matched by m, in discovery order.
func (i *Inspector) RootPIDs(m AppMatcher) []int {
	entries, err := i.Lister.List()
	if err != nil {
		log.Debug().Err(err).Msg("process listing failed")
		return nil
	}
	var pids []int
	for _, e := range entries {
		if m.IsRoot(e) {
			pids = append(pids, e.PID)
		}
	}
	return pids
}

// SignalAll sends sig to every pid and returns how many deliveries succeeded.
func SignalAll(s Signaller, pids []int, sig syscall.Signal) int {
	sent := 0
	for _, pid := range pids {
		if err := s.Signal(pid, sig); err != nil {
			log.Debug().Err(err).Int("pid", pid).Str("signal", sig.String()).Msg("signal failed")
			continue
		}
		sent++
	}
	return sent
}

// KillByExactName signals every process named name.
func KillByExactName(l Lister, s Signaller, name string, sig syscall.Signal) int {
	pids, err := l.PIDsByExactName(name)
	if err != nil {
		return 0
	}
	return SignalAll(s, pids, sig)
}

// KillByPattern signals every process whose command line contains pattern.
func KillByPattern(l Lister, s Signaller, pattern string, sig syscall.Signal) int {
	pids, err := l.PIDsByPattern(pattern)
	if err != nil {
		return 0
	}
	return SignalAll(s, pids, sig)
}
