package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lmstudio-tray/lmstray/internal/monitor"
)

const maxNotes = 5

type note struct {
	at    time.Time
	title string
	body  string
}

// Model is the bubbletea model of the foreground monitor.
type Model struct {
	title   string
	trigger func(monitor.Action)

	view    *monitor.View
	cursor  int
	notes   []note
	spinner spinner.Model
	help    help.Model
	width   int
}

// NewModel creates the model. trigger receives the chosen actions.
func NewModel(title string, trigger func(monitor.Action)) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = dimStyle
	return Model{
		title:   title,
		trigger: trigger,
		spinner: sp,
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case viewMsg:
		v := monitor.View(msg)
		m.view = &v
		m.cursor = m.clampCursor(m.cursor)
		return m, nil

	case noteMsg:
		m.notes = append(m.notes, note{at: time.Now(), title: msg.title, body: msg.body})
		if len(m.notes) > maxNotes {
			m.notes = m.notes[len(m.notes)-maxNotes:]
		}
		return m, nil

	case spinner.TickMsg:
		if m.view != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.trigger(monitor.ActionQuit)
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		m.cursor = m.step(-1)
	case key.Matches(msg, keys.Down):
		m.cursor = m.step(1)
	case key.Matches(msg, keys.Refresh):
		m.trigger(monitor.ActionShowStatus)
	case key.Matches(msg, keys.Enter):
		actions := m.actionable()
		if len(actions) == 0 {
			break
		}
		a := actions[m.cursor].Action
		m.trigger(a)
		if a == monitor.ActionQuit {
			return m, tea.Quit
		}
	}
	return m, nil
}

// actionable returns the enabled menu entries, the ones the cursor visits.
func (m Model) actionable() []monitor.MenuItem {
	if m.view == nil {
		return nil
	}
	var out []monitor.MenuItem
	for _, it := range m.view.Items {
		if it.Enabled && !it.Separator && it.Action != monitor.ActionNone {
			out = append(out, it)
		}
	}
	return out
}

func (m Model) clampCursor(c int) int {
	n := len(m.actionable())
	if n == 0 || c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}

func (m Model) step(delta int) int {
	n := len(m.actionable())
	if n == 0 {
		return 0
	}
	return (m.cursor + delta + n) % n
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.title))
	b.WriteString("\n\n")

	if m.view == nil {
		b.WriteString(m.spinner.View() + " Checking LM Studio status...\n")
		return b.String()
	}

	status := string(m.view.Model)
	if status == "" {
		status = "UNKNOWN"
	}
	b.WriteString(modelStatusStyle(m.view.Model).Render(status))
	b.WriteString("  " + strings.ReplaceAll(m.view.Tooltip, "\n", " · "))
	b.WriteString("\n\n")

	b.WriteString(panelStyle.Render(m.renderMenu()))
	b.WriteString("\n")

	if len(m.notes) > 0 {
		b.WriteString("\n")
		for _, n := range m.notes {
			line := fmt.Sprintf("%s  %s: %s", n.at.Format("15:04:05"), n.title, strings.ReplaceAll(n.body, "\n", " "))
			b.WriteString(dimStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n" + m.help.View(keys))
	return b.String()
}

func (m Model) renderMenu() string {
	var lines []string
	idx := 0
	for _, it := range m.view.Items {
		switch {
		case it.Separator:
			lines = append(lines, dimStyle.Render("─────"))
		case !it.Enabled || it.Action == monitor.ActionNone:
			lines = append(lines, disabledStyle.Render("  "+it.Label))
		default:
			if idx == m.cursor {
				lines = append(lines, selectedStyle.Render("▸ "+it.Label))
			} else {
				lines = append(lines, itemStyle.Render("  "+it.Label))
			}
			idx++
		}
	}
	return strings.Join(lines, "\n")
}
