// Package process inspects and signals processes in the OS process table.
package process

import (
	"os"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

// Entry is one row of the process table.
type Entry struct {
	PID  int
	Name string
	Args []string
}

// Cmdline returns the arguments joined by spaces.
func (e Entry) Cmdline() string {
	return strings.Join(e.Args, " ")
}

// Lister enumerates the process table.
type Lister interface {
	List() ([]Entry, error)
	PIDsByExactName(name string) ([]int, error)
	PIDsByPattern(pattern string) ([]int, error)
}

// Signaller delivers signals to processes by PID.
type Signaller interface {
	Signal(pid int, sig syscall.Signal) error
}

// SystemLister reads the live process table through gopsutil.
type SystemLister struct{}

// List returns every process whose command line is readable.
func (SystemLister) List() ([]Entry, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	self := os.Getpid()
	out := make([]Entry, 0, len(procs))
	for _, p := range procs {
		if int(p.Pid) == self {
			continue
		}
		args, err := p.CmdlineSlice()
		if err != nil || len(args) == 0 {
			continue
		}
		name, _ := p.Name()
		out = append(out, Entry{PID: int(p.Pid), Name: name, Args: args})
	}
	return out, nil
}

// PIDsByExactName returns all PIDs whose process name equals name.
func (SystemLister) PIDsByExactName(name string) ([]int, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, 4)
	for _, p := range procs {
		n, err := p.Name()
		if err != nil {
			continue
		}
		if n == name {
			out = append(out, int(p.Pid))
		}
	}
	return out, nil
}

// PIDsByPattern returns all PIDs whose full command line contains pattern.
// The calling process is never included.
func (l SystemLister) PIDsByPattern(pattern string) ([]int, error) {
	entries, err := l.List()
	if err != nil {
		return nil, err
	}
	return matchPattern(entries, pattern), nil
}

func matchPattern(entries []Entry, pattern string) []int {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	var out []int
	for _, e := range entries {
		if strings.Contains(e.Cmdline(), pattern) {
			out = append(out, e.PID)
		}
	}
	return out
}

// SystemSignaller signals live processes through gopsutil.
type SystemSignaller struct{}

// Signal sends sig to pid.
func (SystemSignaller) Signal(pid int, sig syscall.Signal) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return err
	}
	return p.SendSignal(sig)
}
