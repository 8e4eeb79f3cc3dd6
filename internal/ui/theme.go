package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the UI.
type Theme struct {
	Name string

	Text    string
	Muted   string
	Accent  string
	Success string
	Warning string
	Danger  string

	Border      string
	BorderFocus string

	SelectionBg   string
	SelectionText string
}

var themes = map[string]Theme{
	"Dusk": {
		Name:          "Dusk",
		Text:          "#c8d3f5",
		Muted:         "#7a88cf",
		Accent:        "#82aaff",
		Success:       "#c3e88d",
		Warning:       "#ffc777",
		Danger:        "#ff757f",
		Border:        "#3b4261",
		BorderFocus:   "#82aaff",
		SelectionBg:   "#2f334d",
		SelectionText: "#c8d3f5",
	},
	"Parchment": {
		Name:          "Parchment",
		Text:          "#4c4f69",
		Muted:         "#8c8fa1",
		Accent:        "#1e66f5",
		Success:       "#40a02b",
		Warning:       "#df8e1d",
		Danger:        "#d20f39",
		Border:        "#bcc0cc",
		BorderFocus:   "#1e66f5",
		SelectionBg:   "#ccd0da",
		SelectionText: "#4c4f69",
	},
}

// themeByName returns the named theme, defaulting to Dusk.
func themeByName(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["Dusk"]
}

// Styles holds the lipgloss styles derived from a theme.
type Styles struct {
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Danger   lipgloss.Style
	Selected lipgloss.Style

	Header lipgloss.Style
	Tab    lipgloss.Style
	TabOn  lipgloss.Style
	Banner lipgloss.Style
	Footer lipgloss.Style
	Box    lipgloss.Style
}

// Styles builds the style set for the theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),
		Tab: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),
		TabOn: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true).
			Underline(true).
			Padding(0, 1),
		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),
		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),
	}
}
