package styles

import "github.com/charmbracelet/lipgloss"

// PanelStyle returns the live view panel style. A paused view gets a warning
// colored border.
func PanelStyle(paused bool) lipgloss.Style {
	border := T().Border
	if paused {
		border = T().BorderPaused
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}
