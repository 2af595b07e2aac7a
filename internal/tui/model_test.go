package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lmstudio-tray/lmstray/internal/monitor"
)

func testView() monitor.View {
	return monitor.View{
		Model:   monitor.ModelOK,
		Tooltip: "✅ Model active: qwen3",
		Items: monitor.BuildMenu(monitor.MenuState{
			Daemon:        monitor.StatusRunning,
			App:           monitor.StatusStopped,
			Model:         monitor.ModelOK,
			ExpectedModel: "qwen3",
			LMSAvailable:  true,
		}),
	}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelShowsSpinnerUntilFirstView(t *testing.T) {
	m := NewModel("LM Studio Tray", func(monitor.Action) {})
	if !strings.Contains(m.View(), "Checking LM Studio status") {
		t.Errorf("View() = %q, want loading text", m.View())
	}

	m = update(t, m, viewMsg(testView()))
	out := m.View()
	for _, want := range []string{"OK", "Model active: qwen3", "Daemon (Running)", "Stop Daemon"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModelEnterTriggersSelectedAction(t *testing.T) {
	var got []monitor.Action
	m := NewModel("t", func(a monitor.Action) { got = append(got, a) })
	m = update(t, m, viewMsg(testView()))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	want := []monitor.Action{monitor.ActionStopDaemon, monitor.ActionStartDesktopApp}
	if len(got) != len(want) {
		t.Fatalf("triggered %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("action %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestModelCursorWraps(t *testing.T) {
	m := NewModel("t", func(monitor.Action) {})
	m = update(t, m, viewMsg(testView()))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})

	if want := len(m.actionable()) - 1; m.cursor != want {
		t.Errorf("cursor = %d, want %d", m.cursor, want)
	}
}

func TestModelQuit(t *testing.T) {
	var got monitor.Action
	m := NewModel("t", func(a monitor.Action) { got = a })
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	if got != monitor.ActionQuit {
		t.Errorf("triggered %q, want quit", got)
	}
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not produce tea.QuitMsg")
	}
}

func TestModelKeepsRecentNotes(t *testing.T) {
	m := NewModel("t", func(monitor.Action) {})
	m = update(t, m, viewMsg(testView()))
	for i := 0; i < maxNotes+2; i++ {
		m = update(t, m, noteMsg{title: "LM Studio", body: string(rune('a' + i))})
	}
	if len(m.notes) != maxNotes {
		t.Errorf("notes = %d, want %d", len(m.notes), maxNotes)
	}
	if m.notes[0].body != "c" {
		t.Errorf("oldest note = %q, want c", m.notes[0].body)
	}
}
