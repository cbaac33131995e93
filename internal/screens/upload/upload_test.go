package upload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/abhisek/studybuddy/internal/analysis"
	"github.com/abhisek/studybuddy/internal/attempt"
	"github.com/abhisek/studybuddy/internal/ingest"
	"github.com/abhisek/studybuddy/internal/progress"
	"github.com/abhisek/studybuddy/internal/router"
	"github.com/abhisek/studybuddy/internal/screen"
)

type fakeAnalyzer struct {
	res   *analysis.Result
	err   error
	calls int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ ingest.Candidate) (*analysis.Result, error) {
	f.calls++
	return f.res, f.err
}

func intp(i int) *int { return &i }

func sampleResult() *analysis.Result {
	return &analysis.Result{
		Summary:   "Cells are the basic unit of life.",
		KeyPoints: []string{"membrane", "nucleus"},
		QuizQuestions: []analysis.Question{
			{Question: "Powerhouse?", Options: []string{"nucleus", "mitochondria"}, Correct: intp(1)},
			{Question: "Outer layer?", Options: []string{"membrane", "wall"}},
		},
		StudyGuide: []string{"Review organelles"},
	}
}

func newScreen(t *testing.T, an *fakeAnalyzer) *UploadScreen {
	t.Helper()
	cfg := progress.DefaultConfig()
	cfg.Interval = time.Millisecond
	cfg.HideDelay = time.Millisecond

	pipe := attempt.New(context.Background(), an, progress.New(cfg), nil, zaptest.NewLogger(t))
	s := New(ingest.NewAcquirer(ingest.DefaultMaxBytes), pipe, nil)
	s.SetDirectory(t.TempDir())
	s.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return s
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes cmd, expanding batches, and returns the produced messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// settle runs cmd and feeds the request result back into the screen.
func settle(t *testing.T, s *UploadScreen, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	for _, msg := range run(cmd) {
		if m, ok := msg.(attempt.SettledMsg); ok {
			_, next := s.Update(m)
			return next
		}
	}
	t.Fatal("no settle message produced")
	return nil
}

func drop(s *UploadScreen, path string) tea.Cmd {
	s.Update(tea.PasteStartMsg{})
	_, cmd := s.Update(tea.PasteMsg{Content: path})
	s.Update(tea.PasteEndMsg{})
	return cmd
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestDropRendersResults(t *testing.T) {
	an := &fakeAnalyzer{res: sampleResult()}
	s := newScreen(t, an)
	path := writeFile(t, "cells.txt", "mitochondria")

	s.Update(tea.PasteStartMsg{})
	assert.True(t, s.hover)
	assert.Contains(t, s.View(120, 34), "Release to upload")

	_, cmd := s.Update(tea.PasteMsg{Content: path})
	assert.False(t, s.hover)
	require.NotNil(t, cmd)
	assert.True(t, s.pipeline.InFlight())
	assert.Equal(t, "Uploading cells.txt", s.Status())

	settle(t, s, cmd)
	assert.Equal(t, 1, an.calls)
	assert.False(t, s.pipeline.InFlight())
	assert.Empty(t, s.Notice())
	assert.Equal(t, paneResults, s.focus)
	assert.Equal(t, 0, s.viewport.YOffset())

	view := s.View(120, 34)
	assert.Contains(t, view, "Cells are the basic unit of life.")
	assert.Contains(t, view, "membrane")
	assert.Contains(t, view, "Q1.")
}

func TestUnsupportedFileOpensNotice(t *testing.T) {
	an := &fakeAnalyzer{res: sampleResult()}
	s := newScreen(t, an)
	path := writeFile(t, "report.doc", "x")

	cmd := drop(s, path)
	assert.Nil(t, cmd)
	assert.Equal(t, ingest.UnsupportedTypeMessage, s.Notice())
	assert.False(t, s.pipeline.InFlight())
	assert.Equal(t, 0, an.calls)
	assert.Contains(t, s.View(120, 34), ingest.UnsupportedTypeMessage)

	// The notice swallows input until dismissed.
	s.Update(specialKey(tea.KeyTab))
	assert.Equal(t, panePicker, s.focus)
	s.Update(tea.PasteMsg{Content: writeFile(t, "ok.txt", "x")})
	assert.False(t, s.pipeline.InFlight())

	s.Update(specialKey(tea.KeyEnter))
	assert.Empty(t, s.Notice())
}

func TestEmptyDropIgnored(t *testing.T) {
	s := newScreen(t, &fakeAnalyzer{})
	assert.Nil(t, drop(s, "   \n"))
	assert.Empty(t, s.Notice())
}

func TestApplicationErrorNotice(t *testing.T) {
	an := &fakeAnalyzer{err: &analysis.ApplicationError{Status: 400, Message: "bad file"}}
	s := newScreen(t, an)

	cmd := drop(s, writeFile(t, "notes.pdf", "%PDF"))
	settle(t, s, cmd)

	assert.Equal(t, "bad file", s.Notice())
	assert.False(t, s.results.Rendered())
	assert.False(t, s.pipeline.InFlight())

	s.Update(specialKey(tea.KeyEscape))
	assert.Empty(t, s.Notice())

	// Ready for a new attempt straight away.
	an.err, an.res = nil, sampleResult()
	settle(t, s, drop(s, writeFile(t, "notes.txt", "x")))
	assert.True(t, s.results.Rendered())
}

func TestOverlappingDropRefused(t *testing.T) {
	an := &fakeAnalyzer{res: sampleResult()}
	s := newScreen(t, an)

	first := drop(s, writeFile(t, "a.txt", "a"))
	require.NotNil(t, first)

	second := drop(s, writeFile(t, "b.txt", "b"))
	assert.Nil(t, second)
	assert.Equal(t, InFlightMessage, s.status)
	assert.Empty(t, s.Notice())

	settle(t, s, first)
	assert.Equal(t, 1, an.calls)
	assert.Empty(t, s.status)
}

func TestProgressTicksReachSimulator(t *testing.T) {
	s := newScreen(t, &fakeAnalyzer{res: sampleResult()})
	cmd := drop(s, writeFile(t, "a.txt", "a"))

	var tick tea.Msg
	for _, m := range run(cmd) {
		if _, ok := m.(progress.TickMsg); ok {
			tick = m
		}
	}
	require.NotNil(t, tick)

	_, next := s.Update(tick)
	assert.NotNil(t, next)
	assert.Equal(t, 7, s.pipeline.Progress().Percent())
	assert.Contains(t, s.View(120, 34), "7%")
}

func TestQuizNavigationAndReveal(t *testing.T) {
	s := newScreen(t, &fakeAnalyzer{res: sampleResult()})
	settle(t, s, drop(s, writeFile(t, "a.txt", "a")))
	require.Equal(t, paneResults, s.focus)

	assert.NotContains(t, s.View(120, 34), "Correct: B")
	s.Update(specialKey(tea.KeySpace))
	assert.Contains(t, s.View(120, 34), "Correct: B")

	s.Update(specialKey(tea.KeyDown))
	assert.Equal(t, 1, s.results.Quiz.Focus())
	s.Update(specialKey(tea.KeyEnter))

	cards := s.results.Quiz.Cards()
	assert.True(t, cards[0].Revealed())
	assert.True(t, cards[1].Revealed())

	s.Update(keyPress('k'))
	s.Update(specialKey(tea.KeyEnter))
	assert.False(t, cards[0].Revealed())
	assert.True(t, cards[1].Revealed())
}

func TestFocusedCardScrolledIntoView(t *testing.T) {
	res := sampleResult()
	for i := 0; i < 12; i++ {
		res.QuizQuestions = append(res.QuizQuestions, analysis.Question{
			Question: "Filler?", Options: []string{"a", "b", "c"},
		})
	}
	s := newScreen(t, &fakeAnalyzer{res: res})
	settle(t, s, drop(s, writeFile(t, "a.txt", "a")))

	last := len(res.QuizQuestions) - 1
	for i := 0; i < last; i++ {
		s.Update(specialKey(tea.KeyDown))
	}
	require.Equal(t, last, s.results.Quiz.Focus())

	y, h := s.viewport.YOffset(), s.viewport.Height()
	assert.GreaterOrEqual(t, s.offsets[last], y)
	assert.Less(t, s.offsets[last], y+h)

	for i := 0; i < last; i++ {
		s.Update(keyPress('k'))
	}
	assert.LessOrEqual(t, s.viewport.YOffset(), s.offsets[0])
}

func TestTabSwitchesPanes(t *testing.T) {
	s := newScreen(t, &fakeAnalyzer{})
	assert.Equal(t, panePicker, s.focus)
	s.Update(specialKey(tea.KeyTab))
	assert.Equal(t, paneResults, s.focus)
	assert.Contains(t, s.View(120, 34), "Results appear here")
	s.Update(specialKey(tea.KeyTab))
	assert.Equal(t, panePicker, s.focus)
}

func TestPickerSelectionUploads(t *testing.T) {
	an := &fakeAnalyzer{res: sampleResult()}
	s := newScreen(t, an)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	s.SetDirectory(dir)

	for _, msg := range run(s.picker.Init()) {
		s.Update(msg)
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	require.True(t, s.pipeline.InFlight())
	assert.Equal(t, "notes.txt", s.pipeline.Current().Candidate.Name)

	settle(t, s, cmd)
	assert.True(t, s.results.Rendered())
}

func TestInitialFileSubmitted(t *testing.T) {
	an := &fakeAnalyzer{res: sampleResult()}
	s := newScreen(t, an)
	s.SetInitialFile(writeFile(t, "start here.txt", "x"))

	var cmd tea.Cmd
	for _, msg := range run(s.Init()) {
		if m, ok := msg.(initialFileMsg); ok {
			_, cmd = s.Update(m)
		}
	}
	require.NotNil(t, cmd)
	assert.Equal(t, "start here.txt", s.pipeline.Current().Candidate.Name)
}

func TestHistoryKeyPushesScreen(t *testing.T) {
	s := newScreen(t, &fakeAnalyzer{})
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'o', Mod: tea.ModCtrl})
	assert.Nil(t, cmd, "no history screen configured")

	var pushed screen.Screen = New(nil, nil, nil)
	s.history = func() screen.Screen { return pushed }
	_, cmd = s.Update(tea.KeyPressMsg{Code: 'o', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Same(t, pushed, msg.Screen)
}

func TestKeyHintsFollowState(t *testing.T) {
	s := newScreen(t, &fakeAnalyzer{})
	hints := s.KeyHints()
	require.NotEmpty(t, hints)
	assert.Equal(t, "Upload", hints[1].Description)

	s.Update(specialKey(tea.KeyTab))
	assert.Equal(t, "Question", s.KeyHints()[0].Description)

	drop(s, writeFile(t, "x.exe", "x"))
	hints = s.KeyHints()
	require.Len(t, hints, 1)
	assert.Equal(t, "Dismiss", hints[0].Description)
}

func TestTypedPathUploads(t *testing.T) {
	an := &fakeAnalyzer{res: sampleResult()}
	s := newScreen(t, an)
	path := writeFile(t, "lecture notes.txt", "x")

	s.Update(keyPress('/'))
	require.True(t, s.path.Active())
	assert.Equal(t, "Upload", s.KeyHints()[0].Description)

	// While typing, pasted text lands in the input instead of uploading.
	s.Update(tea.PasteMsg{Content: path})
	assert.False(t, s.pipeline.InFlight())
	assert.Equal(t, path, s.path.Value())

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.False(t, s.path.Active())
	assert.Equal(t, "lecture notes.txt", s.pipeline.Current().Candidate.Name)
	settle(t, s, cmd)
	assert.True(t, s.results.Rendered())
}

func TestTypedPathCancel(t *testing.T) {
	s := newScreen(t, &fakeAnalyzer{})
	s.Update(keyPress('/'))
	s.Update(keyPress('a'))
	s.Update(specialKey(tea.KeyEscape))
	assert.False(t, s.path.Active())
	assert.Empty(t, s.path.Value())
	assert.False(t, s.pipeline.InFlight())
}
