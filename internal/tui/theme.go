package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the TUI.
// Inspired by btop and Tokyo Night color scheme.
type Theme struct {
	TextPrimary lipgloss.Color
	TextDim     lipgloss.Color
	TextMuted   lipgloss.Color

	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	BgAccent      lipgloss.Color

	Accent  lipgloss.Color // Blue
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color
	Purple  lipgloss.Color
}

// DefaultTheme is the dark Tokyo Night palette.
var DefaultTheme = Theme{
	TextPrimary: lipgloss.Color("#c0caf5"),
	TextDim:     lipgloss.Color("#565f89"),
	TextMuted:   lipgloss.Color("#414868"),

	Border:        lipgloss.Color("#414868"),
	BorderFocused: lipgloss.Color("#7aa2f7"),
	BgAccent:      lipgloss.Color("#414868"),

	Accent:  lipgloss.Color("#7aa2f7"),
	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),
	Info:    lipgloss.Color("#7dcfff"),
	Purple:  lipgloss.Color("#bb9af7"),
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Base     lipgloss.Style
	Dim      lipgloss.Style
	Title    lipgloss.Style
	Selected lipgloss.Style
	Path     lipgloss.Style
	Slot     lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style

	KeyBinding lipgloss.Style
	KeyHint    lipgloss.Style

	Panel      lipgloss.Style
	PanelTitle lipgloss.Style
	Footer     lipgloss.Style
}

// NewStyles creates a new Styles instance from a Theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Base:     lipgloss.NewStyle().Foreground(t.TextPrimary),
		Dim:      lipgloss.NewStyle().Foreground(t.TextDim),
		Title:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Selected: lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.BgAccent).Bold(true),
		Path:     lipgloss.NewStyle().Foreground(t.Info),
		Slot:     lipgloss.NewStyle().Foreground(t.Purple),
		Success:  lipgloss.NewStyle().Foreground(t.Success),
		Warning:  lipgloss.NewStyle().Foreground(t.Warning),
		Error:    lipgloss.NewStyle().Foreground(t.Error).Bold(true),

		KeyBinding: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		KeyHint:    lipgloss.NewStyle().Foreground(t.TextDim),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Footer:     lipgloss.NewStyle().Foreground(t.TextMuted),
	}
}

// DefaultStyles uses DefaultTheme.
var DefaultStyles = NewStyles(DefaultTheme)
