package upload

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studybuddy/internal/ui/layout"
	"github.com/abhisek/studybuddy/internal/ui/theme"
)

const (
	dropZoneHeight = 5
	paneChrome     = 2
	maxLeftWidth   = 42
)

// columnWidths splits the content width between the input column and the
// results pane, leaving one column of gutter.
func columnWidths(width int) (left, right int) {
	left = min(width/3, maxLeftWidth)
	right = width - left - 1
	return left, right
}

func (s *UploadScreen) View(width, height int) string {
	if s.notice != "" {
		return layout.RenderModal(s.renderNotice(width), width, height)
	}

	left, right := columnWidths(width)
	inputs := lipgloss.JoinVertical(lipgloss.Left,
		s.renderDropZone(left),
		s.renderPicker(left, height-dropZoneHeight),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, inputs, " ", s.renderResults(right, height))
}

func (s *UploadScreen) renderNotice(width int) string {
	body := lipgloss.NewStyle().Width(min(width-10, 60)).Render(s.notice)
	hint := theme.Hint.Render("Press Enter to continue")
	return theme.Notice.Render(body + "\n\n" + hint)
}

func (s *UploadScreen) renderDropZone(width int) string {
	style := theme.DropZone
	text := "Drop a PDF, DOCX or TXT here"
	switch {
	case s.pipeline.InFlight():
		text = InFlightMessage
	case s.hover:
		style = theme.DropZoneHover
		text = "Release to upload"
	}
	return style.Width(width).Height(dropZoneHeight).Render(text)
}

func (s *UploadScreen) renderPicker(width, height int) string {
	style := theme.PaneBlurred
	if s.focus == panePicker {
		style = theme.PaneFocused
	}

	heading := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		MaxWidth(width - 4).
		Render(s.picker.CurrentDirectory)
	if s.path.Active() {
		heading = s.path.View()
	}

	return style.Width(width).Height(max(height, paneChrome+1)).
		Render(heading + "\n" + s.picker.View())
}

func (s *UploadScreen) renderResults(width, height int) string {
	var top string
	switch {
	case s.pipeline.Progress().Visible():
		top = s.pipeline.Progress().View(width - 2)
	case s.status != "":
		top = theme.Hint.Render(s.status)
	case s.results.Rendered():
		top = theme.SectionTitle.Render(s.resultsHeading())
	}

	style := theme.PaneBlurred
	if s.focus == paneResults {
		style = theme.PaneFocused
	}

	body := s.viewport.View()
	if !s.results.Rendered() {
		body = theme.Hint.Render("Results appear here after analysis.")
	}

	pane := style.Width(width).Height(max(height-1, paneChrome+1)).Render(body)
	return " " + top + "\n" + pane
}

func (s *UploadScreen) resultsHeading() string {
	if name := s.results.FileName(); name != "" {
		return "Results for " + name
	}
	return "Results"
}
