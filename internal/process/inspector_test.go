package process_test

import (
	"errors"
	"reflect"
	"syscall"
	"testing"

	"github.com/lmstudio-tray/lmstray/internal/process"
	"github.com/lmstudio-tray/lmstray/internal/process/processtest"
)

var lmStudio = process.AppMatcher{
	Executable:   "lm-studio",
	InstallPaths: []string{"/opt/LM Studio/lm-studio", "/usr/bin/lm-studio"},
	HelperMarker: "--type=",
}

func entry(pid int, args ...string) process.Entry {
	return process.Entry{PID: pid, Args: args}
}

func TestAppMatcherIsRoot(t *testing.T) {
	tests := []struct {
		name     string
		entry    process.Entry
		expected bool
	}{
		{"absolute install path", entry(123, "/opt/LM Studio/lm-studio"), true},
		{"bare command", entry(234, "lm-studio"), true},
		{"command with args", entry(789, "lm-studio", "--flag"), true},
		{"rewritten single string", entry(790, "lm-studio --flag"), true},
		{"renderer helper", entry(345, "/usr/bin/lm-studio", "--type=renderer"), false},
		{"utility helper rewritten", entry(101, "/opt/LM Studio/lm-studio --type=utility"), false},
		{"daemon binary", entry(567, "/home/user/.lmstudio/llmster/0.0.3/bin/llmster"), false},
		{"node worker", entry(678, "/home/user/.lmstudio/.internal/utils/node", "systemresourcesworker"), false},
		{"relative path other dir", entry(12, "bin/lm-studio"), false},
		{"empty", entry(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lmStudio.IsRoot(tt.entry); got != tt.expected {
				t.Errorf("IsRoot(%q) = %v, want %v", tt.entry.Args, got, tt.expected)
			}
		})
	}
}

func TestRootPIDsDiscoveryOrder(t *testing.T) {
	snap := processtest.Snapshot{
		entry(567, "/home/user/.lmstudio/llmster/0.0.3/bin/llmster"),
		entry(789, "/usr/bin/lm-studio"),
		entry(790, "/usr/bin/lm-studio", "--type=gpu-process"),
		entry(12, "lm-studio"),
	}
	got := process.NewInspector(snap).RootPIDs(lmStudio)
	if want := []int{789, 12}; !reflect.DeepEqual(got, want) {
		t.Errorf("RootPIDs() = %v, want %v", got, want)
	}
}

type probeLister struct {
	exact      []int
	exactErr   error
	pattern    []int
	patternErr error
	calls      []string
}

func (p *probeLister) List() ([]process.Entry, error) { return nil, nil }

func (p *probeLister) PIDsByExactName(string) ([]int, error) {
	p.calls = append(p.calls, "exact")
	return p.exact, p.exactErr
}

func (p *probeLister) PIDsByPattern(string) ([]int, error) {
	p.calls = append(p.calls, "pattern")
	return p.pattern, p.patternErr
}

func TestIsRunningProbes(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		lister    *probeLister
		expected  bool
		wantCalls int
	}{
		{"exact hit", &probeLister{exact: []int{1}}, true, 1},
		{"miss does not fall back", &probeLister{pattern: []int{2}}, false, 1},
		{"pattern after probe error", &probeLister{exactErr: boom, pattern: []int{3}}, true, 2},
		{"both miss after probe error", &probeLister{exactErr: boom}, false, 2},
		{"both fail", &probeLister{exactErr: boom, patternErr: boom}, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := process.NewInspector(tt.lister).IsRunning("llmster"); got != tt.expected {
				t.Errorf("IsRunning() = %v, want %v", got, tt.expected)
			}
			if len(tt.lister.calls) != tt.wantCalls {
				t.Errorf("probes = %v, want %d calls", tt.lister.calls, tt.wantCalls)
			}
		})
	}
}

func TestIsRunningIsIdempotent(t *testing.T) {
	snap := processtest.Snapshot{{PID: 5, Name: "llmster", Args: []string{"/usr/bin/llmster"}}}
	insp := process.NewInspector(snap)
	first, second := insp.IsRunning("llmster"), insp.IsRunning("llmster")
	if !first || first != second {
		t.Errorf("IsRunning twice = %v, %v; want true, true", first, second)
	}
}

func TestIsRunningIgnoresCommandLineMentions(t *testing.T) {
	snap := processtest.Snapshot{
		{PID: 77, Name: "tail", Args: []string{"tail", "-f", "/home/u/.lmstudio/llmster/server.log"}},
		{PID: 78, Name: "vim", Args: []string{"vim", "/home/u/.lmstudio/llmster/config.json"}},
	}
	if process.NewInspector(snap).IsRunning("llmster") {
		t.Error("IsRunning(llmster) = true for processes that only mention it")
	}
}

func TestKillHelpers(t *testing.T) {
	snap := processtest.Snapshot{
		{PID: 5, Name: "llmster", Args: []string{"/usr/bin/llmster"}},
		{PID: 6, Name: "node", Args: []string{"node", "/x/llmster/worker.js"}},
	}
	rec := &processtest.SignalRecorder{}
	if n := process.KillByExactName(snap, rec, "llmster", syscall.SIGKILL); n != 1 {
		t.Errorf("KillByExactName sent %d, want 1", n)
	}
	if n := process.KillByPattern(snap, rec, "llmster", syscall.SIGKILL); n != 2 {
		t.Errorf("KillByPattern sent %d, want 2", n)
	}
	if rec.Count(syscall.SIGKILL) != 3 {
		t.Errorf("recorded %d SIGKILLs, want 3", rec.Count(syscall.SIGKILL))
	}
}

func TestInstanceMatcher(t *testing.T) {
	m := process.InstanceMatcher{Executable: "lmstray", Transient: []string{"status", "version", "--version", "-v"}}
	tests := []struct {
		name     string
		entry    process.Entry
		expected bool
	}{
		{"absolute path", process.Entry{Name: "lmstray", Args: []string{"/usr/local/bin/lmstray", "qwen3"}}, true},
		{"bare name from PATH", process.Entry{Name: "lmstray", Args: []string{"lmstray", "qwen3"}}, true},
		{"flags before model", process.Entry{Name: "lmstray", Args: []string{"lmstray", "-d", "qwen3"}}, true},
		{"no arguments", process.Entry{Name: "lmstray", Args: []string{"lmstray"}}, true},
		{"unknown name", process.Entry{Args: []string{"lmstray"}}, true},
		{"editor on the binary", process.Entry{Name: "vim", Args: []string{"vim", "/usr/local/bin/lmstray"}}, false},
		{"shell wrapper", process.Entry{Name: "sh", Args: []string{"sh", "-c", "lmstray qwen3"}}, false},
		{"tracer", process.Entry{Name: "strace", Args: []string{"strace", "/usr/local/bin/lmstray"}}, false},
		{"status subcommand", process.Entry{Name: "lmstray", Args: []string{"lmstray", "status"}}, false},
		{"status after flag", process.Entry{Name: "lmstray", Args: []string{"lmstray", "-d", "status"}}, false},
		{"version flag", process.Entry{Name: "lmstray", Args: []string{"lmstray", "--version"}}, false},
		{"model named like a subcommand later", process.Entry{Name: "lmstray", Args: []string{"lmstray", "qwen3", "status"}}, true},
		{"renamed process", process.Entry{Name: "python3", Args: []string{"/opt/lmstray"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Matches(tt.entry); got != tt.expected {
				t.Errorf("Matches(%q) = %v, want %v", tt.entry.Args, got, tt.expected)
			}
		})
	}
}

func TestInstanceMatcherTruncatedName(t *testing.T) {
	m := process.InstanceMatcher{Executable: "lmstudio-tray-monitor"}
	e := process.Entry{Name: "lmstudio-tray-m", Args: []string{"/usr/bin/lmstudio-tray-monitor"}}
	if !m.Matches(e) {
		t.Errorf("Matches(%q) = false for a name truncated by the kernel", e.Args)
	}
}

func TestTerminateOthers(t *testing.T) {
	snap := processtest.Snapshot{
		{PID: 10, Name: "lmstray", Args: []string{"lmstray", "qwen3"}},
		{PID: 11, Name: "vim", Args: []string{"vim", "/usr/local/bin/lmstray"}},
		{PID: 12, Name: "lmstray", Args: []string{"/usr/local/bin/lmstray", "status"}},
		{PID: 20, Name: "lmstray", Args: []string{"/usr/local/bin/lmstray", "qwen3"}},
	}
	rec := &processtest.SignalRecorder{}
	m := process.InstanceMatcher{Executable: "lmstray", Transient: []string{"status"}}

	got := process.TerminateOthers(snap, rec, m, 20)
	if !reflect.DeepEqual(got, []int{10}) {
		t.Errorf("TerminateOthers() = %v, want [10]", got)
	}
	if len(rec.Sent) != 1 || rec.Sent[0] != (processtest.SentSignal{PID: 10, Signal: syscall.SIGTERM}) {
		t.Errorf("sent %v, want SIGTERM to 10", rec.Sent)
	}
}
