package monitor

import (
	"context"
	"strings"
	"time"

	"github.com/lmstudio-tray/lmstray/internal/process"
	"github.com/lmstudio-tray/lmstray/internal/process/processtest"
)

const (
	lmsPath     = "/home/user/.lmstudio/bin/lms"
	llmsterPath = "/home/user/.lmstudio/llmster/0.0.3/llmster"
)

type fakeTools struct {
	lms, llmster, desktop, appImage string
}

func (f fakeTools) LMS() (string, bool)                   { return f.lms, f.lms != "" }
func (f fakeTools) Llmster() (string, bool)               { return f.llmster, f.llmster != "" }
func (f fakeTools) Desktop() (string, bool)               { return f.desktop, f.desktop != "" }
func (f fakeTools) AppImageDirs(extra ...string) []string { return extra }
func (f fakeTools) AppImage([]string) (string, bool)      { return f.appImage, f.appImage != "" }

var allTools = fakeTools{lms: lmsPath, llmster: llmsterPath}

// fakeTable is a mutable process table. onList runs before every List call
// with the running count of calls.
type fakeTable struct {
	procs  processtest.Snapshot
	lists  int
	onList func(n int)
}

func (f *fakeTable) List() ([]process.Entry, error) {
	f.lists++
	if f.onList != nil {
		f.onList(f.lists)
	}
	return f.procs.List()
}

func (f *fakeTable) PIDsByExactName(name string) ([]int, error) {
	return f.procs.PIDsByExactName(name)
}

func (f *fakeTable) PIDsByPattern(pattern string) ([]int, error) {
	return f.procs.PIDsByPattern(pattern)
}

func daemonEntry(pid int) process.Entry {
	return process.Entry{PID: pid, Name: "llmster", Args: []string{llmsterPath}}
}

func appEntries() processtest.Snapshot {
	return processtest.Snapshot{
		{PID: 100, Name: "lm-studio", Args: []string{"/opt/LM Studio/lm-studio"}},
		{PID: 101, Name: "lm-studio", Args: []string{"/opt/LM Studio/lm-studio", "--type=renderer"}},
	}
}

// scriptRunner answers commands through respond and records every call
// together with the time left before its deadline (-1 when unbounded).
type scriptRunner struct {
	calls   []string
	budgets []time.Duration
	started []string
	respond func(cmd string) (Result, error)
	err     error
}

func (r *scriptRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, cmd)
	budget := time.Duration(-1)
	if d, ok := ctx.Deadline(); ok {
		budget = time.Until(d)
	}
	r.budgets = append(r.budgets, budget)
	if r.respond == nil {
		return Result{ExitCode: 1}, nil
	}
	return r.respond(cmd)
}

func (r *scriptRunner) Start(name string, args ...string) (int, error) {
	r.started = append(r.started, strings.Join(append([]string{name}, args...), " "))
	return 4242, r.err
}

// callsTo returns the recorded calls whose executable is name.
func (r *scriptRunner) callsTo(name string) []string {
	var out []string
	for _, c := range r.calls {
		if strings.HasPrefix(c, name+" ") {
			out = append(out, c)
		}
	}
	return out
}

type note struct {
	title, body string
}

type recordNotifier struct {
	notes []note
}

func (n *recordNotifier) Notify(title, body string) {
	n.notes = append(n.notes, note{title, body})
}

func (n *recordNotifier) last() note {
	if len(n.notes) == 0 {
		return note{}
	}
	return n.notes[len(n.notes)-1]
}

type recordRenderer struct {
	views []View
}

func (r *recordRenderer) Render(v View) { r.views = append(r.views, v) }

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) Sleep(d time.Duration) { s.calls = append(s.calls, d) }

func newSequencer(tools Tools, table *fakeTable, sig *processtest.SignalRecorder, run *scriptRunner, n *recordNotifier, clock *fakeClock, sleep *sleepRecorder) *Sequencer {
	return &Sequencer{
		Classifier: &Classifier{
			Tools:     tools,
			Inspector: process.NewInspector(table),
			Runner:    run,
			App:       DesktopMatcher,
			Model:     "qwen3",
		},
		Lister:    table,
		Signaller: sig,
		Runner:    run,
		Notifier:  n,
		Guard:     NewGuard(clock.Now),
		Sleep:     sleep.Sleep,
	}
}
