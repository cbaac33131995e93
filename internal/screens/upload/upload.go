package upload

import (
	"errors"
	"fmt"

	"charm.land/bubbles/v2/filepicker"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studybuddy/internal/attempt"
	"github.com/abhisek/studybuddy/internal/ingest"
	"github.com/abhisek/studybuddy/internal/progress"
	"github.com/abhisek/studybuddy/internal/results"
	"github.com/abhisek/studybuddy/internal/router"
	"github.com/abhisek/studybuddy/internal/screen"
	"github.com/abhisek/studybuddy/internal/ui/components"
	"github.com/abhisek/studybuddy/internal/ui/layout"
)

// InFlightMessage is shown when a file arrives while an upload is running.
const InFlightMessage = "Upload in progress…"

type pane int

const (
	panePicker pane = iota
	paneResults
)

// initialFileMsg submits a path given on the command line.
type initialFileMsg struct {
	Path string
}

// UploadScreen is the main screen: a drop zone and file picker on the left,
// the analysis results on the right.
type UploadScreen struct {
	acquirer *ingest.Acquirer
	pipeline *attempt.Pipeline
	results  *results.Results
	history  func() screen.Screen

	picker   filepicker.Model
	path     components.PathInput
	viewport viewport.Model
	keys     keyMap
	focus    pane
	offsets  []int

	hover  bool
	notice string
	status string

	initialFile string
	width       int
	height      int
}

var _ screen.Screen = (*UploadScreen)(nil)
var _ screen.KeyHintProvider = (*UploadScreen)(nil)
var _ screen.StatusProvider = (*UploadScreen)(nil)

// New creates an UploadScreen. history builds the screen pushed by the
// history key; nil disables it.
func New(acquirer *ingest.Acquirer, pipeline *attempt.Pipeline, history func() screen.Screen) *UploadScreen {
	fp := filepicker.New()
	fp.AutoHeight = false
	fp.ShowPermissions = false
	fp.SetHeight(10)

	vp := viewport.New(viewport.WithWidth(40), viewport.WithHeight(10))
	vp.KeyMap = resultsKeyMap()

	return &UploadScreen{
		acquirer: acquirer,
		pipeline: pipeline,
		results:  results.New(),
		history:  history,
		picker:   fp,
		path:     components.NewPathInput(30),
		viewport: vp,
		keys:     defaultKeyMap(),
	}
}

// SetDirectory sets where the file picker starts browsing.
func (s *UploadScreen) SetDirectory(dir string) {
	if dir != "" {
		s.picker.CurrentDirectory = dir
	}
}

// SetInitialFile queues path for upload as soon as the screen starts.
func (s *UploadScreen) SetInitialFile(path string) {
	s.initialFile = path
}

func (s *UploadScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{s.picker.Init()}
	if s.initialFile != "" {
		path := s.initialFile
		cmds = append(cmds, func() tea.Msg { return initialFileMsg{Path: path} })
	}
	return tea.Batch(cmds...)
}

func (s *UploadScreen) Title() string {
	return "Upload"
}

// Status describes the current attempt for the header.
func (s *UploadScreen) Status() string {
	a := s.pipeline.Current()
	switch {
	case a != nil && s.pipeline.InFlight():
		return "Uploading " + a.Candidate.Name
	case s.results.Rendered() && s.results.FileName() != "":
		return s.results.FileName()
	}
	return ""
}

func (s *UploadScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.notice != "":
		return hints(s.keys.Dismiss)
	case s.path.Active():
		return hints(s.keys.Pick, s.keys.Cancel)
	case s.focus == paneResults:
		return hints(s.keys.QuizUp, s.keys.Reveal, s.keys.Scroll, s.keys.SwitchPane, s.keys.History)
	}
	return hints(s.keys.Browse, s.keys.Pick, s.keys.TypePath, s.keys.SwitchPane, s.keys.History)
}

// Notice returns the message of the open blocking dialog, if any.
func (s *UploadScreen) Notice() string {
	return s.notice
}

func (s *UploadScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.resize(msg.Width, layout.ContentHeight(msg.Height))
		s.picker, _ = s.picker.Update(msg)
		return s, nil

	case progress.TickMsg, progress.HideMsg:
		return s, s.pipeline.Update(msg)

	case attempt.SettledMsg:
		return s.handleSettled(msg)

	case initialFileMsg:
		c, err := s.acquirer.FromPick(msg.Path)
		return s, s.submit(c, err)

	case tea.PasteStartMsg:
		if s.notice == "" && !s.path.Active() {
			s.hover = true
		}
		return s, nil

	case tea.PasteEndMsg:
		s.hover = false
		return s, nil

	case tea.PasteMsg:
		s.hover = false
		if s.notice != "" {
			return s, nil
		}
		if s.path.Active() {
			var cmd tea.Cmd
			s.path, cmd = s.path.Update(msg)
			return s, cmd
		}
		c, err := s.acquirer.FromDrop(msg.Content)
		return s, s.submit(c, err)

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	var cmd, inputCmd tea.Cmd
	s.picker, cmd = s.picker.Update(msg)
	if s.path.Active() {
		s.path, inputCmd = s.path.Update(msg)
	}
	return s, tea.Batch(cmd, inputCmd)
}

func (s *UploadScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.notice != "" {
		if key.Matches(msg, s.keys.Dismiss) {
			s.notice = ""
		}
		return s, nil
	}
	if s.path.Active() {
		return s.handlePathKey(msg)
	}

	switch {
	case key.Matches(msg, s.keys.TypePath):
		return s, s.path.Open()
	case key.Matches(msg, s.keys.SwitchPane):
		if s.focus == panePicker {
			s.focus = paneResults
		} else {
			s.focus = panePicker
		}
		return s, nil
	case key.Matches(msg, s.keys.History):
		if s.history == nil {
			return s, nil
		}
		next := s.history()
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	}

	if s.focus == paneResults {
		return s.handleResultsKey(msg)
	}

	var cmd tea.Cmd
	s.picker, cmd = s.picker.Update(msg)
	if ok, path := s.picker.DidSelectFile(msg); ok {
		c, err := s.acquirer.FromPick(path)
		return s, tea.Batch(cmd, s.submit(c, err))
	}
	return s, cmd
}

func (s *UploadScreen) handlePathKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch {
	case key.Matches(msg, s.keys.Pick):
		typed := s.path.Value()
		s.path.Close()
		c, err := s.acquirer.FromTyped(typed)
		return s, s.submit(c, err)
	case key.Matches(msg, s.keys.Cancel):
		s.path.Close()
		return s, nil
	}

	var cmd tea.Cmd
	s.path, cmd = s.path.Update(msg)
	return s, cmd
}

func (s *UploadScreen) handleResultsKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	quiz := &s.results.Quiz
	switch {
	case key.Matches(msg, s.keys.QuizUp):
		quiz.FocusPrev()
		s.refresh()
		s.showFocused()
		return s, nil
	case key.Matches(msg, s.keys.QuizDown):
		quiz.FocusNext()
		s.refresh()
		s.showFocused()
		return s, nil
	case key.Matches(msg, s.keys.Reveal):
		if quiz.ToggleFocused() {
			s.refresh()
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

// submit starts an attempt for an acquired candidate, or reports why it
// cannot.
func (s *UploadScreen) submit(c ingest.Candidate, err error) tea.Cmd {
	var verr *ingest.ValidationError
	switch {
	case errors.Is(err, ingest.ErrNoFile):
		return nil
	case errors.As(err, &verr):
		s.notice = verr.Message
		return nil
	case err != nil:
		s.notice = err.Error()
		return nil
	}

	cmd, err := s.pipeline.Begin(c)
	if errors.Is(err, attempt.ErrInFlight) {
		s.status = InFlightMessage
		return nil
	}
	if err != nil {
		s.notice = err.Error()
		return nil
	}
	s.status = fmt.Sprintf("Analyzing %s…", c.Name)
	return cmd
}

func (s *UploadScreen) handleSettled(msg attempt.SettledMsg) (screen.Screen, tea.Cmd) {
	out, cmd, ok := s.pipeline.Settle(msg)
	if !ok {
		return s, nil
	}
	s.status = ""

	if out.Notice != "" {
		s.notice = out.Notice
		return s, cmd
	}

	s.results.Render(out.Result)
	s.refresh()
	s.viewport.GotoTop()
	s.focus = paneResults
	return s, cmd
}

func (s *UploadScreen) resize(width, height int) {
	s.width, s.height = width, height
	left, right := columnWidths(width)

	s.path.SetWidth(left - paneChrome - 2 - len("Path: "))
	s.picker.SetHeight(max(height-dropZoneHeight-paneChrome-1, 1))
	s.viewport.SetWidth(max(right-paneChrome-2, 1))
	s.viewport.SetHeight(max(height-1-paneChrome, 1))

	s.refresh()
}

// refresh re-renders the results into the viewport, keeping the scroll
// position.
func (s *UploadScreen) refresh() {
	if !s.results.Rendered() {
		return
	}
	content, offsets := s.results.View(s.viewport.Width())
	s.offsets = offsets
	y := s.viewport.YOffset()
	s.viewport.SetContent(content)
	s.viewport.SetYOffset(y)
}

// showFocused scrolls the viewport so the focused quiz card is in view.
func (s *UploadScreen) showFocused() {
	i := s.results.Quiz.Focus()
	if i < 0 || i >= len(s.offsets) {
		return
	}
	start := s.offsets[i]
	end := s.viewport.TotalLineCount()
	if i+1 < len(s.offsets) {
		end = s.offsets[i+1]
	}

	y, h := s.viewport.YOffset(), s.viewport.Height()
	switch {
	case start < y:
		s.viewport.SetYOffset(start)
	case end > y+h:
		s.viewport.SetYOffset(min(start, end-h))
	}
}
