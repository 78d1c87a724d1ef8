// Package styles provides colour themes and styling for the review TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for the TUI.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Accept colours accepted matches and success states.
	Accept lipgloss.Color

	// Reject colours rejected matches and errors.
	Reject lipgloss.Color

	// Uncertain colours flagged matches and pending sync states.
	Uncertain lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Accept:     lipgloss.Color("#A6E3A1"), // Green
		Reject:     lipgloss.Color("#F38BA8"), // Red
		Uncertain:  lipgloss.Color("#F9E2AF"), // Yellow
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Selected style for highlighted items.
	Selected lipgloss.Style

	// Accept style for accepted candidates.
	Accept lipgloss.Style

	// Reject style for rejected candidates and errors.
	Reject lipgloss.Style

	// Uncertain style for flagged candidates and pending pushes.
	Uncertain lipgloss.Style

	// StatusBar style for the bottom status line.
	StatusBar lipgloss.Style

	// Help style for the key legend.
	Help lipgloss.Style

	// Pane style for bordered panes.
	Pane lipgloss.Style
}

// DefaultStyles returns styles built from the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// NewStyles builds the style set from a theme.
func NewStyles(theme *Theme) *Styles {
	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Selected: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Accept: lipgloss.NewStyle().
			Foreground(theme.Accept),

		Reject: lipgloss.NewStyle().
			Foreground(theme.Reject),

		Uncertain: lipgloss.NewStyle().
			Foreground(theme.Uncertain),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}

// Theme returns the theme the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
