package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studybuddy/internal/ui/theme"
)

// PathInput wraps bubbles/textinput for typing a document path by hand.
type PathInput struct {
	Model textinput.Model
}

// NewPathInput creates a closed path input.
func NewPathInput(width int) PathInput {
	ti := textinput.New()
	ti.Prompt = "Path: "
	ti.Placeholder = "~/notes/chapter1.pdf"
	ti.SetWidth(max(width, 10))
	return PathInput{Model: ti}
}

// Open clears the input and focuses it.
func (p *PathInput) Open() tea.Cmd {
	p.Model.Reset()
	return p.Model.Focus()
}

// Close blurs and clears the input.
func (p *PathInput) Close() {
	p.Model.Blur()
	p.Model.Reset()
}

// Active reports whether the input is open for typing.
func (p PathInput) Active() bool {
	return p.Model.Focused()
}

// SetWidth sets the visible width of the typed text.
func (p *PathInput) SetWidth(w int) {
	p.Model.SetWidth(max(w, 10))
}

// Update handles messages.
func (p PathInput) Update(msg tea.Msg) (PathInput, tea.Cmd) {
	var cmd tea.Cmd
	p.Model, cmd = p.Model.Update(msg)
	return p, cmd
}

// View renders the input line.
func (p PathInput) View() string {
	return lipgloss.NewStyle().Foreground(theme.Text).Render(p.Model.View())
}

// Value returns the typed path.
func (p PathInput) Value() string {
	return p.Model.Value()
}
