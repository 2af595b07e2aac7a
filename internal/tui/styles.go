package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lmstudio-tray/lmstray/internal/monitor"
)

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	itemStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	disabledStyle = lipgloss.NewStyle().Foreground(colorDim)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

func modelStatusStyle(s monitor.ModelStatus) lipgloss.Style {
	switch s {
	case monitor.ModelOK:
		return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	case monitor.ModelInfo:
		return lipgloss.NewStyle().Foreground(colorCyan)
	case monitor.ModelWarn:
		return lipgloss.NewStyle().Foreground(colorYellow)
	case monitor.ModelFail:
		return lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	default:
		return dimStyle
	}
}
