package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette and pre-built styles for the live view.
type Theme struct {
	// Accent used for the bar and the title
	Primary lipgloss.Color

	// Legend glyph color per track, in track order
	Tracks [4]lipgloss.Color

	// Text hierarchy (most to least prominent)
	FgBase   lipgloss.Color // Primary text (bright)
	FgMuted  lipgloss.Color // Secondary text (dimmed)
	FgSubtle lipgloss.Color // Tertiary text (very dim)

	// Borders
	Border       lipgloss.Color // Running panel border
	BorderPaused lipgloss.Color // Paused panel border

	// Status colors
	Error   lipgloss.Color // Red - sampling errors
	Warning lipgloss.Color // Orange - paused indicator

	styles *Styles
}

// Styles contains pre-built lipgloss styles for common UI patterns.
type Styles struct {
	Base    lipgloss.Style // Default text
	Muted   lipgloss.Style // Dimmed text
	Subtle  lipgloss.Style // Very dim text
	Title   lipgloss.Style // Bold, accent
	Bar     lipgloss.Style // Braille bar
	Tracks  [4]lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
}

var defaultTheme = Theme{
	Primary: lipgloss.Color("#a78bfa"),

	// Legend, one color per track
	Tracks: [4]lipgloss.Color{
		lipgloss.Color("#42b883"), // CPU
		lipgloss.Color("#61afef"), // RAM
		lipgloss.Color("#f1a208"), // GPU
		lipgloss.Color("#ff79c6"), // VRAM
	},

	// Text hierarchy (grayscale)
	FgBase:   lipgloss.Color("#c0c0c0"),
	FgMuted:  lipgloss.Color("#808080"),
	FgSubtle: lipgloss.Color("#585858"),

	// Borders
	Border:       lipgloss.Color("#585858"),
	BorderPaused: lipgloss.Color("#f1a208"),

	// Status
	Error:   lipgloss.Color("#ff5555"),
	Warning: lipgloss.Color("#f1a208"),
}

// T returns the default theme.
func T() *Theme {
	return &defaultTheme
}

// S returns the pre-built styles for this theme.
func (t *Theme) S() *Styles {
	if t.styles == nil {
		t.styles = t.buildStyles()
	}
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().Foreground(t.FgBase)

	var tracks [4]lipgloss.Style
	for i, c := range t.Tracks {
		tracks[i] = lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		Base:   base,
		Muted:  lipgloss.NewStyle().Foreground(t.FgMuted),
		Subtle: lipgloss.NewStyle().Foreground(t.FgSubtle),
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),
		Bar:     lipgloss.NewStyle().Foreground(t.Primary),
		Tracks:  tracks,
		Error:   lipgloss.NewStyle().Foreground(t.Error),
		Warning: lipgloss.NewStyle().Foreground(t.Warning),
	}
}
