package viewport

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the style of every span the renderer paints.
type Theme struct {
	Text        lipgloss.Style
	Link        lipgloss.Style
	LinkURL     lipgloss.Style
	InvalidLink lipgloss.Style
	Active      lipgloss.Style

	StatusCode   lipgloss.Style
	StatusURL    lipgloss.Style
	StatusError  lipgloss.Style
	StatusPrompt lipgloss.Style
	StatusLoad   lipgloss.Style
}

type palette struct {
	fg, subtle, link, bad, accent, selected, selectedFg lipgloss.TerminalColor
}

// NewTheme returns the theme for name: "dark", "light", or anything else
// for colors that adapt to the terminal background.
func NewTheme(name string) Theme {
	return NewRendererTheme(lipgloss.DefaultRenderer(), name)
}

// NewRendererTheme is NewTheme with styles bound to r, for output that is
// not the UI terminal.
func NewRendererTheme(r *lipgloss.Renderer, name string) Theme {
	pick := func(light, dark string) lipgloss.TerminalColor {
		switch strings.ToLower(name) {
		case "dark":
			return lipgloss.Color(dark)
		case "light":
			return lipgloss.Color(light)
		default:
			return lipgloss.AdaptiveColor{Light: light, Dark: dark}
		}
	}

	p := palette{
		fg:         pick("#1a1a1a", "#e0e0e0"),
		subtle:     pick("#555555", "#888888"),
		link:       pick("#00008b", "#5fafff"),
		bad:        pick("#8b0000", "#ff5f5f"),
		accent:     pick("#008b8b", "#00ffff"),
		selected:   pick("#d3d3d3", "#3a3a3a"),
		selectedFg: pick("#000000", "#ffffff"),
	}

	return Theme{
		Text:        r.NewStyle().Foreground(p.fg),
		Link:        r.NewStyle().Foreground(p.link).Bold(true),
		LinkURL:     r.NewStyle().Foreground(p.subtle),
		InvalidLink: r.NewStyle().Foreground(p.bad).Italic(true),
		Active:      r.NewStyle().Background(p.selected).Foreground(p.selectedFg),

		StatusCode:   r.NewStyle().Foreground(p.accent).Bold(true),
		StatusURL:    r.NewStyle().Foreground(p.fg),
		StatusError:  r.NewStyle().Foreground(p.bad),
		StatusPrompt: r.NewStyle().Foreground(p.accent),
		StatusLoad:   r.NewStyle().Foreground(p.subtle),
	}
}

// highlight applies the active-row background on top of style.
func (t Theme) highlight(style lipgloss.Style) lipgloss.Style {
	return t.Active.Inherit(style)
}
