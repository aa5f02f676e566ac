package monitor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/fourbraillebars/internal/braille"
	"github.com/llehouerou/fourbraillebars/internal/errmsg"
	"github.com/llehouerou/fourbraillebars/internal/metrics"
	"github.com/llehouerou/fourbraillebars/internal/ui/styles"
)

const (
	title      = "fourbraillebars"
	labelWidth = 10
	valueWidth = 5
)

var trackLabels = [4]string{"CPU user", "RAM used", "GPU util", "VRAM used"}

func (m Model) View() string {
	s := styles.T().S()

	var lines []string
	lines = append(lines, s.Title.Render(title)+"  "+m.renderBar())
	lines = append(lines, "")
	for i, t := range braille.Tracks {
		lines = append(lines, m.legendLine(t, trackLabels[i], m.sample.Values()[i]))
	}
	lines = append(lines, "", m.statusLine())

	panel := styles.PanelStyle(m.paused)
	if m.width > 2 {
		panel = panel.Width(m.width - 2)
	}
	return panel.Render(strings.Join(lines, "\n")) + "\n" + m.help.View(m.keys)
}

func (m Model) renderBar() string {
	bar := braille.EncodeValues(m.sample.Values())
	if m.gradient != nil {
		return m.gradient.Render(bar)
	}
	return styles.T().S().Bar.Render(bar)
}

// legendLine renders: "⠉ CPU user    12%  detail"
func (m Model) legendLine(t braille.Track, label string, value float64) string {
	s := styles.T().S()

	left, right := t.Dots()
	glyph := s.Tracks[t-braille.Track1].Render((left | right).String())

	valueText := "-"
	if m.hasSample {
		valueText = fmt.Sprintf("%.0f%%", value)
	}

	line := glyph + " " +
		s.Base.Render(runewidth.FillRight(label, labelWidth)) +
		s.Base.Render(fmt.Sprintf("%*s", valueWidth, valueText))

	if detail := m.detail(t); detail != "" {
		line += "  " + s.Muted.Render(detail)
	}
	return line
}

func (m Model) detail(t braille.Track) string {
	if !m.hasSample {
		return ""
	}
	sample := m.sample
	switch t {
	case braille.Track2:
		if sample.RAMTotalBytes == 0 {
			return ""
		}
		return sizes(sample.RAMUsedBytes, sample.RAMTotalBytes)
	case braille.Track3:
		if sample.GPU == nil {
			return ""
		}
		return gpuDetail(sample.GPU)
	case braille.Track4:
		if sample.GPU == nil || sample.GPU.MemTotalMiB == 0 {
			return ""
		}
		return sizes(sample.GPU.MemUsedBytes(), sample.GPU.MemTotalBytes())
	}
	return ""
}

func sizes(used, total uint64) string {
	return humanize.IBytes(used) + " / " + humanize.IBytes(total)
}

func gpuDetail(g *metrics.GPUStats) string {
	var parts []string
	if g.Name != "" {
		parts = append(parts, g.Name)
	}
	if g.TempC > 0 {
		parts = append(parts, fmt.Sprintf("%.0f°C", g.TempC))
	}
	if g.PowerWatts > 0 {
		parts = append(parts, fmt.Sprintf("%.0f W", g.PowerWatts))
	}
	if g.FanPercent > 0 {
		parts = append(parts, fmt.Sprintf("fan %.0f%%", g.FanPercent))
	}
	return strings.Join(parts, "  ")
}

func (m Model) statusLine() string {
	s := styles.T().S()

	if m.err != nil {
		msg := cleanLine(errmsg.Format(errmsg.OpSample, m.err))
		if m.width > 6 {
			msg = ansi.Truncate(msg, m.width-4, "…")
		}
		return s.Error.Render(msg)
	}

	switch {
	case m.paused:
		return s.Warning.Render("paused")
	case !m.hasSample:
		return s.Subtle.Render("sampling…")
	default:
		return s.Subtle.Render("every " + m.interval.String())
	}
}

// cleanLine flattens command output folded into an error onto one line and
// drops control characters that would break the panel.
func cleanLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
