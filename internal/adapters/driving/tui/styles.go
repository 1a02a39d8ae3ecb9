package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/orderlens/orderlens/internal/core/domain"
)

// Theme defines the colour palette for the review UI.
type Theme struct {
	Primary    lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title  lipgloss.Style
	Muted  lipgloss.Style
	Detail lipgloss.Style

	tagPO      lipgloss.Style
	tagQuote   lipgloss.Style
	tagUnknown lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	return &Styles{
		theme: theme,
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary).
			Padding(0, 1),
		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),
		Detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1, 2),
		tagPO: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Success),
		tagQuote: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Warning),
		tagUnknown: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}

// Tag returns the style for a classification tag.
func (s *Styles) Tag(tag domain.DocumentTag) lipgloss.Style {
	switch tag {
	case domain.TagPO:
		return s.tagPO
	case domain.TagQuote:
		return s.tagQuote
	default:
		return s.tagUnknown
	}
}
