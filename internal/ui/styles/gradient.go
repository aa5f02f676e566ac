package styles

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Gradient colors text cell by cell, blending From into To.
type Gradient struct {
	From lipgloss.Color
	To   lipgloss.Color
}

// NewGradient validates two hex colors ("#rrggbb").
func NewGradient(from, to string) (Gradient, error) {
	for _, c := range []string{from, to} {
		if _, err := colorful.Hex(c); err != nil {
			return Gradient{}, fmt.Errorf("gradient color %q: %w", c, err)
		}
	}
	return Gradient{From: lipgloss.Color(from), To: lipgloss.Color(to)}, nil
}

// Render renders text with one color per grapheme cluster. A single cluster
// takes the From color.
func (g Gradient) Render(text string) string {
	if text == "" {
		return ""
	}

	// Split into grapheme clusters for proper unicode handling
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	colors := g.Colors(len(clusters))

	var b strings.Builder
	for i, cluster := range clusters {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(colorToHex(colors[i])))
		b.WriteString(style.Render(cluster))
	}
	return b.String()
}

// Colors returns size colors blended between From and To.
// Blending is done in HCL color space for perceptually uniform transitions.
func (g Gradient) Colors(size int) []color.Color {
	if size <= 0 {
		return nil
	}
	c1, _ := colorful.MakeColor(lipglossToColor(g.From))
	if size == 1 {
		return []color.Color{c1}
	}
	c2, _ := colorful.MakeColor(lipglossToColor(g.To))

	colors := make([]color.Color, size)
	for i := range size {
		t := float64(i) / float64(size-1)
		colors[i] = c1.BlendHcl(c2, t).Clamped()
	}
	return colors
}

// lipglossToColor converts a lipgloss.Color to a color.Color.
func lipglossToColor(c lipgloss.Color) color.Color {
	hex := string(c)
	if len(hex) == 7 && hex[0] == '#' {
		col, err := colorful.Hex(hex)
		if err == nil {
			return col
		}
	}
	// Fallback for ANSI colors - return a neutral gray
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}

// colorToHex converts a color.Color to a hex string.
func colorToHex(c color.Color) string {
	cf, ok := c.(colorful.Color)
	if ok {
		return cf.Hex()
	}
	r, g, b, _ := c.RGBA()
	return colorful.Color{
		R: float64(r) / 65535.0,
		G: float64(g) / 65535.0,
		B: float64(b) / 65535.0,
	}.Hex()
}
