package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studybuddy/internal/ui/theme"
)

// OptionList renders lettered multiple-choice options ("A. x", "B. y").
// When Highlight is a valid index that option is drawn in the success color.
type OptionList struct {
	Options   []string
	Highlight int
	Width     int
}

// NewOptionList creates an option list with no highlighted option.
func NewOptionList(options []string, width int) OptionList {
	return OptionList{Options: options, Highlight: -1, Width: width}
}

// View renders one option per line, wrapping long options under their text.
func (o OptionList) View() string {
	lines := make([]string, 0, len(o.Options))
	for i, opt := range o.Options {
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == o.Highlight {
			style = theme.Correct
		}
		if o.Width > 4 {
			style = style.Width(o.Width)
		}
		lines = append(lines, style.Render(opt))
	}
	return strings.Join(lines, "\n")
}
