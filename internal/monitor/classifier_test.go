package monitor

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/lmstudio-tray/lmstray/internal/process"
	"github.com/lmstudio-tray/lmstray/internal/process/processtest"
)

func newClassifier(tools Tools, procs processtest.Snapshot, run *scriptRunner) *Classifier {
	return &Classifier{
		Tools:     tools,
		Inspector: process.NewInspector(&fakeTable{procs: procs}),
		Runner:    run,
		App:       DesktopMatcher,
		Model:     "qwen3",
	}
}

func TestClassificationIsIdempotent(t *testing.T) {
	procs := append(appEntries(), daemonEntry(200))
	c := newClassifier(allTools, procs, &scriptRunner{})

	for _, classify := range []func() Status{c.Daemon, c.DesktopApp} {
		first, second := classify(), classify()
		if first != second {
			t.Errorf("classification changed between calls: %q then %q", first, second)
		}
		if first != StatusRunning {
			t.Errorf("status = %q, want %q", first, StatusRunning)
		}
	}
}

func TestNothingInstalledIsMonitorOnly(t *testing.T) {
	c := newClassifier(fakeTools{}, nil, &scriptRunner{})

	res := c.Poll(context.Background(), "")
	if res.Daemon != StatusNotFound {
		t.Errorf("Daemon = %q, want %q", res.Daemon, StatusNotFound)
	}
	if res.App != StatusNotFound {
		t.Errorf("App = %q, want %q", res.App, StatusNotFound)
	}
	if res.Model != ModelMonitorOnly {
		t.Errorf("Model = %q, want %q", res.Model, ModelMonitorOnly)
	}

	items := BuildMenu(MenuState{Daemon: res.Daemon, App: res.App, Model: res.Model})
	for _, want := range []string{"🔴 Daemon (Not Installed)", "🔴 Desktop App (Not Installed)"} {
		if !hasLabel(items, want) {
			t.Errorf("menu is missing %q: %v", want, labels(items))
		}
	}
}

func TestDaemonStoppedIsFail(t *testing.T) {
	run := &scriptRunner{}
	c := newClassifier(allTools, nil, run)

	res := c.Poll(context.Background(), ModelOK)
	if res.Daemon != StatusStopped {
		t.Errorf("Daemon = %q, want %q", res.Daemon, StatusStopped)
	}
	if res.Model != ModelFail {
		t.Errorf("Model = %q, want %q", res.Model, ModelFail)
	}
	if got := run.callsTo(lmsPath); len(got) != 0 {
		t.Errorf("lms was queried while the daemon was down: %v", got)
	}
}

func TestModelStatusFromListing(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		err    error
		want   ModelStatus
		loaded []string
	}{
		{
			name:   "expected model loaded",
			result: Result{Stdout: "IDENTIFIER MODEL\n1 qwen3 8B\n"},
			want:   ModelOK,
		},
		{
			name:   "other model loaded",
			result: Result{Stdout: "IDENTIFIER MODEL\nx llama-3 8B\ny mistral 7B\n"},
			want:   ModelInfo,
			loaded: []string{"llama-3", "mistral"},
		},
		{
			name:   "nothing loaded",
			result: Result{Stdout: "  \n"},
			want:   ModelWarn,
		},
		{
			name:   "non-zero exit",
			result: Result{ExitCode: 1, Stdout: "qwen3"},
			want:   ModelFail,
		},
		{
			name: "exec failure",
			err:  errors.New("permission denied"),
			want: ModelFail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &scriptRunner{respond: func(string) (Result, error) { return tt.result, tt.err }}
			c := newClassifier(allTools, processtest.Snapshot{daemonEntry(200)}, run)

			got, loaded, err := c.ModelStatus(context.Background(), StatusRunning)
			if err != nil {
				t.Fatalf("ModelStatus() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ModelStatus() = %q, want %q", got, tt.want)
			}
			if !reflect.DeepEqual(loaded, tt.loaded) {
				t.Errorf("loaded = %v, want %v", loaded, tt.loaded)
			}
		})
	}
}

func TestQueryTimeoutKeepsPreviousStatus(t *testing.T) {
	run := &scriptRunner{respond: func(cmd string) (Result, error) {
		if cmd == lmsPath+" ps" {
			return Result{}, ErrTimeout
		}
		return Result{ExitCode: 1}, nil
	}}
	c := newClassifier(allTools, processtest.Snapshot{daemonEntry(200)}, run)

	res := c.Poll(context.Background(), ModelInfo)
	if res.Model != ModelInfo {
		t.Errorf("Model = %q, want previous %q", res.Model, ModelInfo)
	}
	if !res.Stale {
		t.Error("Stale = false, want true")
	}
}

func TestDesktopAppInstallDetection(t *testing.T) {
	dpkgInstalled := func(cmd string) (Result, error) {
		if cmd == "dpkg -s lm-studio" {
			return Result{Stdout: "Package: lm-studio\nStatus: install ok installed\n"}, nil
		}
		return Result{ExitCode: 1}, nil
	}

	tests := []struct {
		name    string
		tools   fakeTools
		respond func(string) (Result, error)
		procs   processtest.Snapshot
		want    Status
	}{
		{"root process", allTools, nil, appEntries(), StatusRunning},
		{"service mode", allTools, nil, processtest.Snapshot{{PID: 5, Args: []string{"lm-studio", "--run-as-service"}}}, StatusRunning},
		{"only helpers", allTools, nil, appEntries().Without(100), StatusNotFound},
		{"package launcher", fakeTools{desktop: "/usr/bin/lm-studio"}, nil, nil, StatusStopped},
		{"dpkg reports installed", allTools, dpkgInstalled, nil, StatusStopped},
		{"appimage", fakeTools{appImage: "/home/user/Apps/LM-Studio-0.3.5.AppImage"}, nil, nil, StatusStopped},
		{"absent", allTools, nil, nil, StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClassifier(tt.tools, tt.procs, &scriptRunner{respond: tt.respond})
			if got := c.DesktopApp(); got != tt.want {
				t.Errorf("DesktopApp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPollQueriesShareTimeout(t *testing.T) {
	run := &scriptRunner{respond: func(cmd string) (Result, error) {
		if cmd == lmsPath+" ps" {
			return Result{Stdout: "qwen3"}, nil
		}
		return Result{ExitCode: 1}, nil
	}}
	c := newClassifier(allTools, processtest.Snapshot{daemonEntry(200)}, run)
	c.QueryTimeout = 300 * time.Millisecond

	c.Poll(context.Background(), "")

	if len(run.calls) != 2 || run.calls[0] != "dpkg -s lm-studio" {
		t.Fatalf("calls = %v, want dpkg query then lms ps", run.calls)
	}
	for i, budget := range run.budgets {
		if budget <= 0 || budget > c.QueryTimeout {
			t.Errorf("%s ran with budget %v, want within %v", run.calls[i], budget, c.QueryTimeout)
		}
	}
}

func TestParseLoadedModels(t *testing.T) {
	listing := "IDENTIFIER   MODEL\n\nid1 model-a Q4\nlonely\n"
	want := []string{"model-a", "Unknown"}
	if got := ParseLoadedModels(listing); !reflect.DeepEqual(got, want) {
		t.Errorf("ParseLoadedModels() = %v, want %v", got, want)
	}
	if got := ParseLoadedModels("HEADER ONLY"); got != nil {
		t.Errorf("ParseLoadedModels(header) = %v, want nil", got)
	}
}

func hasLabel(items []MenuItem, label string) bool {
	for _, it := range items {
		if it.Label == label {
			return true
		}
	}
	return false
}

func labels(items []MenuItem) []string {
	var out []string
	for _, it := range items {
		if !it.Separator {
			out = append(out, it.Label)
		}
	}
	return out
}
