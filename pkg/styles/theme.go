package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines the styles used in command reports.
type Theme struct {
	Title        lipgloss.Style
	Name         lipgloss.Style
	Dim          lipgloss.Style
	StatusOK     lipgloss.Style
	StatusWarn   lipgloss.Style
	StatusFailed lipgloss.Style
}

// DefaultTheme returns the default devserv report theme.
func DefaultTheme() Theme {
	primary := lipgloss.Color("#7C3AED") // Purple
	success := lipgloss.Color("#22C55E") // Green
	warning := lipgloss.Color("#EAB308") // Yellow
	errorC := lipgloss.Color("#EF4444")  // Red
	muted := lipgloss.Color("#6B7280")   // Gray

	return Theme{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),

		Name: lipgloss.NewStyle().
			Bold(true),

		Dim: lipgloss.NewStyle().
			Foreground(muted),

		StatusOK: lipgloss.NewStyle().
			Foreground(success),

		StatusWarn: lipgloss.NewStyle().
			Foreground(warning),

		StatusFailed: lipgloss.NewStyle().
			Foreground(errorC),
	}
}

// DefaultStyles returns the default theme for convenience.
var DefaultStyles = DefaultTheme()
