package report

import "github.com/charmbracelet/lipgloss"

// Theme defines colors and icons for the console surface.
type Theme struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons defines the icon set for a theme.
type ThemeIcons struct {
	Pass    string
	Fail    string
	Timeout string
	Skip    string
	Run     string
}

// DefaultTheme returns the styled theme used on interactive terminals.
func DefaultTheme() Theme {
	return Theme{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),  // green
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // orange
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")), // gray
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass:    "✓",
			Fail:    "✗",
			Timeout: "⏱",
			Skip:    "⏭",
			Run:     "→",
		},
	}
}

// MonoTheme returns the unstyled ASCII theme used when output is piped to a
// batch log or color is disabled.
func MonoTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Success: plain,
		Error:   plain,
		Warning: plain,
		Muted:   plain,
		Bold:    plain,
		Icons: ThemeIcons{
			Pass:    "ok",
			Fail:    "FAIL",
			Timeout: "TIMEOUT",
			Skip:    "skip",
			Run:     ">",
		},
	}
}
