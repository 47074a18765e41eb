// Package report renders detection results for the terminal.
package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

// Theme defines the colour palette of a report.
type Theme struct {
	// Primary is the heading colour.
	Primary lipgloss.Color

	// Muted is for labels and secondary text.
	Muted lipgloss.Color

	// Risk colours, strongest first.
	High    lipgloss.Color
	Medium  lipgloss.Color
	Low     lipgloss.Color
	Minimal lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		High:    lipgloss.Color("#F38BA8"), // Red
		Medium:  lipgloss.Color("#FAB387"), // Peach
		Low:     lipgloss.Color("#F9E2AF"), // Yellow
		Minimal: lipgloss.Color("#A6E3A1"), // Green
		Border:  lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Warning lipgloss.Style
	Box     lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Label: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Width(14),

		Value: lipgloss.NewStyle().
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Low),

		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(nil)
}

// Risk returns the style for a risk level.
func (s *Styles) Risk(level domain.RiskLevel) lipgloss.Style {
	var c lipgloss.Color
	switch level {
	case domain.RiskHigh:
		c = s.theme.High
	case domain.RiskMedium:
		c = s.theme.Medium
	case domain.RiskLow:
		c = s.theme.Low
	default:
		c = s.theme.Minimal
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}
