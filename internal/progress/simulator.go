// Package progress drives the synthetic upload progress indicator.
//
// The analysis request reports no byte counts, so the indicator advances on a
// fixed schedule and parks below completion until the request settles. Each
// Start begins a new run; ticks and hides are tagged with their run so
// messages from an earlier run are dropped instead of rescheduling.
package progress

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studybuddy/internal/ui/components"
)

// Config controls the animation schedule.
type Config struct {
	// Interval between ticks.
	Interval time.Duration `yaml:"interval"`

	// Step is added to the percentage on every tick.
	Step int `yaml:"step"`

	// Ceiling caps the percentage while the request is outstanding.
	// Must be below 100.
	Ceiling int `yaml:"ceiling"`

	// HideDelay is how long 100% stays on screen after Finish.
	HideDelay time.Duration `yaml:"hide_delay"`
}

// DefaultConfig returns the standard schedule.
func DefaultConfig() Config {
	return Config{
		Interval:  120 * time.Millisecond,
		Step:      7,
		Ceiling:   85,
		HideDelay: 600 * time.Millisecond,
	}
}

// TickMsg advances the animation of one run.
type TickMsg struct {
	run int
}

// HideMsg hides the indicator after a run has finished.
type HideMsg struct {
	run int
}

// Simulator owns the progress state: a percentage in [0,100] and a
// visibility flag.
type Simulator struct {
	cfg     Config
	percent int
	visible bool
	running bool
	run     int
}

// New creates an idle, hidden Simulator.
func New(cfg Config) *Simulator {
	return &Simulator{cfg: cfg}
}

// Start shows the indicator at 0% and returns the first tick.
func (s *Simulator) Start() tea.Cmd {
	s.run++
	s.percent = 0
	s.visible = true
	s.running = true
	return s.tick()
}

// Finish stops the tick chain, forces 100% and schedules the hide.
// It returns nil if the current run has already finished, so a run is
// finalized at most once.
func (s *Simulator) Finish() tea.Cmd {
	if !s.running {
		return nil
	}
	s.running = false
	s.percent = 100

	run := s.run
	return tea.Tick(s.cfg.HideDelay, func(time.Time) tea.Msg {
		return HideMsg{run: run}
	})
}

// Update handles the simulator's own messages and ignores everything else.
func (s *Simulator) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case TickMsg:
		if msg.run != s.run || !s.running {
			return nil
		}
		s.percent = min(s.percent+s.cfg.Step, s.cfg.Ceiling)
		return s.tick()

	case HideMsg:
		if msg.run != s.run || s.running {
			return nil
		}
		s.visible = false
		s.percent = 0
	}
	return nil
}

// Percent returns the displayed percentage.
func (s *Simulator) Percent() int { return s.percent }

// Visible reports whether the indicator is shown.
func (s *Simulator) Visible() bool { return s.visible }

// Running reports whether the tick chain is live.
func (s *Simulator) Running() bool { return s.running }

// View renders the indicator, or "" while hidden.
func (s *Simulator) View(width int) string {
	if !s.visible {
		return ""
	}
	label := "Analyzing"
	if !s.running {
		label = "Done"
	}
	return components.NewProgressBar(label, s.percent, true, width).View()
}

// TerminalBar mirrors the state to the terminal's native progress indicator.
func (s *Simulator) TerminalBar() *tea.ProgressBar {
	if !s.visible {
		return nil
	}
	return tea.NewProgressBar(tea.ProgressBarDefault, s.percent)
}

func (s *Simulator) tick() tea.Cmd {
	run := s.run
	return tea.Tick(s.cfg.Interval, func(time.Time) tea.Msg {
		return TickMsg{run: run}
	})
}
