// Package monitor is the live view behind the watch command: it samples the
// system on a timer and redraws the braille bar with a per-track legend.
package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/fourbraillebars/internal/metrics"
	"github.com/llehouerou/fourbraillebars/internal/ui/styles"
)

// sampleTimeout bounds a single supplier call.
const sampleTimeout = 10 * time.Second

type sampleMsg struct {
	sample metrics.Sample
	err    error
}

// tickMsg carries the generation it was scheduled for; ticks from an older
// generation are dropped so only one refresh loop is ever alive.
type tickMsg struct {
	gen int
}

// Model is the bubbletea model of the live view.
type Model struct {
	supplier metrics.Supplier
	interval time.Duration
	gradient *styles.Gradient

	keys keyMap
	help help.Model

	sample    metrics.Sample
	hasSample bool
	err       error
	paused    bool
	sampling  bool
	gen       int

	width int
}

// Option configures a Model.
type Option func(*Model)

// WithGradient colors the bar with g instead of the theme accent.
func WithGradient(g styles.Gradient) Option {
	return func(m *Model) { m.gradient = &g }
}

// New returns a model sampling s every interval.
func New(s metrics.Supplier, interval time.Duration, opts ...Option) Model {
	if interval <= 0 {
		interval = time.Second
	}
	m := Model{
		supplier: s,
		interval: interval,
		keys:     defaultKeys(),
		help:     help.New(),
		sampling: true,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.sampleCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sampleMsg:
		m.sampling = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.sample = msg.sample
			m.hasSample = true
		}
		if m.paused {
			return m, nil
		}
		cmd := m.scheduleTick()
		return m, cmd

	case tickMsg:
		if msg.gen != m.gen || m.paused || m.sampling {
			return m, nil
		}
		m.sampling = true
		return m, m.sampleCmd()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		if m.paused {
			// Invalidate the pending tick.
			m.gen++
			return m, nil
		}
		return m.refresh()

	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()
	}
	return m, nil
}

// refresh samples right away unless a sample is already in flight.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	if m.sampling {
		return m, nil
	}
	m.gen++
	m.sampling = true
	return m, m.sampleCmd()
}

func (m *Model) scheduleTick() tea.Cmd {
	m.gen++
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m Model) sampleCmd() tea.Cmd {
	s := m.supplier
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sampleTimeout)
		defer cancel()
		sample, err := s.Sample(ctx)
		return sampleMsg{sample: sample, err: err}
	}
}

// Paused reports whether automatic refresh is suspended.
func (m Model) Paused() bool {
	return m.paused
}

// Sample returns the last successful sample and whether there is one.
func (m Model) Sample() (metrics.Sample, bool) {
	return m.sample, m.hasSample
}

// Err returns the error of the most recent sampling attempt, if it failed.
func (m Model) Err() error {
	return m.err
}
