// Package processtest provides in-memory process tables and signal recorders
// for tests of code built on package process.
package processtest

import (
	"strings"
	"syscall"

	"github.com/lmstudio-tray/lmstray/internal/process"
)

// Snapshot is a fixed process table implementing process.Lister.
type Snapshot []process.Entry

// List returns the snapshot entries.
func (s Snapshot) List() ([]process.Entry, error) {
	return []process.Entry(s), nil
}

// PIDsByExactName returns PIDs whose name equals name.
func (s Snapshot) PIDsByExactName(name string) ([]int, error) {
	var out []int
	for _, e := range s {
		if e.Name == name {
			out = append(out, e.PID)
		}
	}
	return out, nil
}

// PIDsByPattern returns PIDs whose command line contains pattern.
func (s Snapshot) PIDsByPattern(pattern string) ([]int, error) {
	var out []int
	for _, e := range s {
		if strings.Contains(e.Cmdline(), pattern) {
			out = append(out, e.PID)
		}
	}
	return out, nil
}

// Without returns a copy of s with the given PIDs removed.
func (s Snapshot) Without(pids ...int) Snapshot {
	drop := make(map[int]bool, len(pids))
	for _, p := range pids {
		drop[p] = true
	}
	out := make(Snapshot, 0, len(s))
	for _, e := range s {
		if !drop[e.PID] {
			out = append(out, e)
		}
	}
	return out
}

// SignalRecorder implements process.Signaller by recording deliveries.
type SignalRecorder struct {
	Sent []SentSignal
	// OnSignal, when set, runs after recording and its result is returned.
	OnSignal func(pid int, sig syscall.Signal) error
}

// SentSignal is one recorded delivery.
type SentSignal struct {
	PID    int
	Signal syscall.Signal
}

// Signal records the delivery.
func (r *SignalRecorder) Signal(pid int, sig syscall.Signal) error {
	r.Sent = append(r.Sent, SentSignal{PID: pid, Signal: sig})
	if r.OnSignal != nil {
		return r.OnSignal(pid, sig)
	}
	return nil
}

// Count returns how many times sig was sent.
func (r *SignalRecorder) Count(sig syscall.Signal) int {
	n := 0
	for _, s := range r.Sent {
		if s.Signal == sig {
			n++
		}
	}
	return n
}

// PIDs returns the recorded PIDs in delivery order.
func (r *SignalRecorder) PIDs() []int {
	out := make([]int, 0, len(r.Sent))
	for _, s := range r.Sent {
		out = append(out, s.PID)
	}
	return out
}
