// Package tui implements the foreground terminal monitor, an alternative
// renderer to the system tray.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lmstudio-tray/lmstray/internal/monitor"
)

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Monitor renders controller views in the terminal and doubles as a
// notifier that keeps recent notifications on screen.
type Monitor struct {
	ref   *programRef
	model Model

	mu   sync.Mutex
	last *monitor.View
}

// New returns a Monitor whose key presses are forwarded to trigger.
func New(title string, trigger func(monitor.Action)) *Monitor {
	ref := &programRef{}
	return &Monitor{ref: ref, model: NewModel(title, trigger)}
}

// Render implements monitor.Renderer.
func (m *Monitor) Render(v monitor.View) {
	m.mu.Lock()
	m.last = &v
	m.mu.Unlock()
	m.ref.Send(viewMsg(v))
}

// Notify implements monitor.Notifier.
func (m *Monitor) Notify(title, body string) {
	m.ref.Send(noteMsg{title: title, body: body})
}

// Run blocks until the user quits.
func (m *Monitor) Run() error {
	// Views rendered before the program exists seed the initial model.
	m.mu.Lock()
	model := m.model
	if m.last != nil {
		v := *m.last
		model.view = &v
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	m.ref.Set(p)
	m.mu.Unlock()
	defer m.ref.Clear()

	_, err := p.Run()
	return err
}

// Quit stops a running program.
func (m *Monitor) Quit() {
	m.ref.Send(tea.Quit())
}
