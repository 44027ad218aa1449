// Package styles provides the colour palette and lipgloss styles shared by
// the TUI and the CLI's formatted output.
package styles

import (
	"math"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a colour palette.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Good      lipgloss.Color
	Fair      lipgloss.Color
	Bad       lipgloss.Color
	Border    lipgloss.Color
	Bar       lipgloss.Color
}

// DefaultTheme returns the default palette.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#7C3AED"),
		Secondary: lipgloss.Color("#06B6D4"),
		Text:      lipgloss.Color("#CDD6F4"),
		Muted:     lipgloss.Color("#6C7086"),
		Good:      lipgloss.Color("#A6E3A1"),
		Fair:      lipgloss.Color("#F9E2AF"),
		Bad:       lipgloss.Color("#F38BA8"),
		Border:    lipgloss.Color("#45475A"),
		Bar:       lipgloss.Color("#181825"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Normal:   lipgloss.NewStyle().Foreground(theme.Text),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Background(theme.Primary),
		Error:    lipgloss.NewStyle().Foreground(theme.Bad),
		Success:  lipgloss.NewStyle().Foreground(theme.Good),
		Warning:  lipgloss.NewStyle().Foreground(theme.Fair),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Bar).
			Padding(0, 1),

		Help: lipgloss.NewStyle().Foreground(theme.Muted),

		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Similarity colours a cosine similarity: good above 0.75, fair above 0.4.
func (s *Styles) Similarity(sim float64) lipgloss.Style {
	switch {
	case sim >= 0.75:
		return lipgloss.NewStyle().Foreground(s.theme.Good)
	case sim >= 0.4:
		return lipgloss.NewStyle().Foreground(s.theme.Fair)
	default:
		return lipgloss.NewStyle().Foreground(s.theme.Bad)
	}
}

// SimilarityBar draws sim in [-1, 1] as a bar of width cells.
func SimilarityBar(sim float64, width int) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(sim) {
		sim = -1
	}
	frac := (min(max(sim, -1), 1) + 1) / 2
	filled := int(math.Round(frac * float64(width)))

	bar := make([]rune, width)
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	return string(bar)
}
