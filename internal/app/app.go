package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studybuddy/internal/attempt"
	"github.com/abhisek/studybuddy/internal/ingest"
	"github.com/abhisek/studybuddy/internal/router"
	"github.com/abhisek/studybuddy/internal/screen"
	"github.com/abhisek/studybuddy/internal/screens/history"
	"github.com/abhisek/studybuddy/internal/screens/upload"
	"github.com/abhisek/studybuddy/internal/store"
	"github.com/abhisek/studybuddy/internal/ui/layout"
)

// Options holds the dependencies of the interactive client.
type Options struct {
	Acquirer *ingest.Acquirer
	Pipeline *attempt.Pipeline

	// Attempts backs the history screen. Nil hides it.
	Attempts store.AttemptRepo

	// Endpoint is shown in the header while nothing is uploading.
	Endpoint string

	// InitialFile is uploaded as soon as the client starts.
	InitialFile string

	// StartDir is where the file picker starts browsing.
	StartDir string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router   *router.Router
	pipeline *attempt.Pipeline
	endpoint string
	width    int
	height   int
}

// newAppModel creates a new AppModel with the upload screen at the root.
func newAppModel(opts Options) AppModel {
	var openHistory func() screen.Screen
	if opts.Attempts != nil {
		repo := opts.Attempts
		openHistory = func() screen.Screen { return history.New(repo) }
	}

	up := upload.New(opts.Acquirer, opts.Pipeline, openHistory)
	up.SetDirectory(opts.StartDir)
	up.SetInitialFile(opts.InitialFile)

	return AppModel{
		router:   router.New(up),
		pipeline: opts.Pipeline,
		endpoint: opts.Endpoint,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Root().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.WindowTitle = "StudyBuddy"
	if m.pipeline != nil {
		v.ProgressBar = m.pipeline.Progress().TerminalBar()
	}
	return v
}

// render draws the full frame: header, active screen and footer.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status(active), m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) status(active screen.Screen) string {
	if sp, ok := active.(screen.StatusProvider); ok {
		if s := sp.Status(); s != "" {
			return s
		}
	}
	return m.endpoint
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	var hints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		hints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		hints = []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
