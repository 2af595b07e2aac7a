package monitor

import (
	"path/filepath"
	"strings"
)

// Attempt is one concrete command invocation.
type Attempt struct {
	Path string
	Args []string
}

func (a Attempt) String() string {
	return strings.Join(append([]string{a.Path}, a.Args...), " ")
}

// Direction selects start or stop variants.
type Direction int

// Attempt directions.
const (
	DirStart Direction = iota
	DirStop
)

// DaemonAttempts builds the ordered fallback list for starting or stopping the
// daemon. Subcommand variants cover differences between CLI releases.
func DaemonAttempts(tools Tools, dir Direction) []Attempt {
	up, start := "up", "start"
	if dir == DirStop {
		up, start = "down", "stop"
	}

	var out []Attempt
	if lms, ok := tools.LMS(); ok {
		out = append(out,
			Attempt{Path: lms, Args: []string{"daemon", up}},
			Attempt{Path: lms, Args: []string{"daemon", start}},
		)
	}
	if llmster, ok := tools.Llmster(); ok {
		out = append(out,
			Attempt{Path: llmster, Args: []string{"daemon", up}},
			Attempt{Path: llmster, Args: []string{"daemon", start}},
			Attempt{Path: llmster, Args: []string{up}},
			Attempt{Path: llmster, Args: []string{start}},
		)
	}
	return out
}

// runnable reports whether the attempt names an absolute executable path.
func (a Attempt) runnable() bool {
	return a.Path != "" && filepath.IsAbs(a.Path)
}
