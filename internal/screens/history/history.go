package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/abhisek/studybuddy/internal/router"
	"github.com/abhisek/studybuddy/internal/screen"
	"github.com/abhisek/studybuddy/internal/store"
	"github.com/abhisek/studybuddy/internal/ui/layout"
	"github.com/abhisek/studybuddy/internal/ui/theme"
)

// Limit is how many attempts the screen loads.
const Limit = 50

type historyLoadedMsg struct {
	Events []store.AttemptEvent
	Err    error
}

// HistoryScreen lists recent upload attempts.
type HistoryScreen struct {
	repo     store.AttemptRepo
	events   []store.AttemptEvent
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
	now      func() time.Time
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo store.AttemptRepo) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		expanded: make(map[int]bool),
		now:      time.Now,
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		if repo == nil {
			return historyLoadedMsg{}
		}
		events, err := repo.Recent(context.Background(), store.QueryOpts{Limit: Limit})
		return historyLoadedMsg{Events: events, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.events = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
			return s, nil
		case "enter", "space":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.events) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No uploads yet. Drop a document to get started.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, ev := range s.events {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%-14s  %-28s  %-13s  %s",
			prefix,
			humanize.RelTime(ev.Timestamp, s.now(), "ago", "from now"),
			truncate(ev.FileName, 28),
			outcomeLabel(ev.Outcome),
			formatLatency(ev.LatencyMs),
		)

		style := lipgloss.NewStyle().Foreground(outcomeColor(ev.Outcome))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, d := range details(ev) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
						Render(fmt.Sprintf("    %-68s", d))))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func details(ev store.AttemptEvent) []string {
	lines := []string{
		fmt.Sprintf("%s, %s", ev.Timestamp.Format("Jan 02, 2006 15:04:05"), humanize.IBytes(uint64(max(ev.FileSize, 0)))),
	}
	if ev.Status != 0 {
		lines = append(lines, fmt.Sprintf("HTTP %d", ev.Status))
	}
	switch ev.Outcome {
	case store.OutcomeSuccess:
		lines = append(lines, fmt.Sprintf("%d key points, %d questions, %d plan items",
			ev.KeyPoints, ev.Questions, ev.StudyItems))
	default:
		if ev.ErrorMessage != "" {
			lines = append(lines, ev.ErrorMessage)
		}
	}
	return lines
}

func outcomeLabel(o store.Outcome) string {
	switch o {
	case store.OutcomeSuccess:
		return "ok"
	case store.OutcomeApplicationError:
		return "rejected"
	case store.OutcomeTransportError:
		return "network error"
	default:
		return string(o)
	}
}

func outcomeColor(o store.Outcome) color.Color {
	switch o {
	case store.OutcomeSuccess:
		return theme.Success
	case store.OutcomeApplicationError:
		return theme.Accent
	case store.OutcomeTransportError:
		return theme.Error
	default:
		return theme.Text
	}
}

func formatLatency(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
