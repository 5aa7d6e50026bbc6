package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	DefaultTheme = ThemeDark
)

// ParseTheme maps a stored preference to a theme, falling back to the default.
func ParseTheme(raw string) Theme {
	switch Theme(strings.ToLower(strings.TrimSpace(raw))) {
	case ThemeLight:
		return ThemeLight
	case ThemeDark:
		return ThemeDark
	default:
		return DefaultTheme
	}
}

func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

type Styles struct {
	Theme    Theme
	Header   lipgloss.Style
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Panel    lipgloss.Style
	Modal    lipgloss.Style
	Focused  lipgloss.Style
	Badge    lipgloss.Style
	Footer   lipgloss.Style
	Selected lipgloss.Style
	Table    table.Styles
}

type colors struct {
	accent, text, muted, ok, bad, border, highlight lipgloss.Color
}

var palettes = map[Theme]colors{
	ThemeDark:  {accent: "12", text: "15", muted: "8", ok: "10", bad: "9", border: "63", highlight: "57"},
	ThemeLight: {accent: "4", text: "0", muted: "242", ok: "28", bad: "160", border: "25", highlight: "153"},
}

func StylesFor(t Theme) Styles {
	c, ok := palettes[t]
	if !ok {
		t = DefaultTheme
		c = palettes[t]
	}
	tbl := table.DefaultStyles()
	tbl.Header = tbl.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(c.border).
		BorderBottom(true).
		Bold(true)
	tbl.Selected = tbl.Selected.
		Foreground(c.text).
		Background(c.highlight).
		Bold(false)

	return Styles{
		Theme:    t,
		Header:   lipgloss.NewStyle().Bold(true).Foreground(c.accent),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(c.text),
		Muted:    lipgloss.NewStyle().Foreground(c.muted),
		Status:   lipgloss.NewStyle().Foreground(c.ok),
		Error:    lipgloss.NewStyle().Foreground(c.bad),
		Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c.border).Padding(0, 1),
		Modal:    lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(c.accent).Padding(1, 2),
		Focused:  lipgloss.NewStyle().Foreground(c.accent).Bold(true),
		Badge:    lipgloss.NewStyle().Foreground(c.text).Background(c.border).Padding(0, 1),
		Footer:   lipgloss.NewStyle().Foreground(c.muted),
		Selected: lipgloss.NewStyle().Foreground(c.ok).Bold(true),
		Table:    tbl,
	}
}
