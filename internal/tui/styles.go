package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jasperwreed/astroguide/internal/models"
	"github.com/jasperwreed/astroguide/internal/notify"
)

type palette struct {
	accent    lipgloss.Color
	text      lipgloss.Color
	muted     lipgloss.Color
	user      lipgloss.Color
	assistant lipgloss.Color
	danger    lipgloss.Color
	warning   lipgloss.Color
	success   lipgloss.Color
}

var (
	darkPalette = palette{
		accent:    lipgloss.Color("#7D56F4"),
		text:      lipgloss.Color("#FAFAFA"),
		muted:     lipgloss.Color("#626262"),
		user:      lipgloss.Color("#00FF00"),
		assistant: lipgloss.Color("#00BFFF"),
		danger:    lipgloss.Color("#FF5F87"),
		warning:   lipgloss.Color("#FFAF00"),
		success:   lipgloss.Color("#5FD787"),
	}

	lightPalette = palette{
		accent:    lipgloss.Color("#5A3FC0"),
		text:      lipgloss.Color("#1C1C1C"),
		muted:     lipgloss.Color("#8A8A8A"),
		user:      lipgloss.Color("#008700"),
		assistant: lipgloss.Color("#005FAF"),
		danger:    lipgloss.Color("#D70000"),
		warning:   lipgloss.Color("#AF5F00"),
		success:   lipgloss.Color("#008700"),
	}
)

type styles struct {
	title     lipgloss.Style
	pane      lipgloss.Style
	focused   lipgloss.Style
	help      lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	meta      lipgloss.Style
	errorText lipgloss.Style
	citation  lipgloss.Style
	toasts    map[notify.Level]lipgloss.Style
}

func stylesFor(theme models.Theme) styles {
	p := darkPalette
	if theme == models.ThemeLight {
		p = lightPalette
	}

	toast := lipgloss.NewStyle().Padding(0, 1).Bold(true)

	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),
		pane: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.muted),
		focused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.accent),
		help: lipgloss.NewStyle().
			Foreground(p.muted),
		user:      lipgloss.NewStyle().Bold(true).Foreground(p.user),
		assistant: lipgloss.NewStyle().Bold(true).Foreground(p.assistant),
		meta:      lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		errorText: lipgloss.NewStyle().Foreground(p.danger),
		citation:  lipgloss.NewStyle().Foreground(p.muted),
		toasts: map[notify.Level]lipgloss.Style{
			notify.LevelInfo:    toast.Foreground(p.text).Background(p.accent),
			notify.LevelSuccess: toast.Foreground(p.text).Background(p.success),
			notify.LevelWarning: toast.Foreground(p.text).Background(p.warning),
			notify.LevelError:   toast.Foreground(p.text).Background(p.danger),
		},
	}
}
