package results

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studybuddy/internal/analysis"
	"github.com/abhisek/studybuddy/internal/ui/components"
	"github.com/abhisek/studybuddy/internal/ui/theme"
)

// Results is the renderer. Each section owns its own content; Render is the
// only thing that writes to them, and toggling a quiz card touches only that
// card.
type Results struct {
	Summary   SummarySection
	KeyPoints ListSection
	Quiz      QuizSection
	Plan      ListSection

	fileName string
}

// New creates a Results with every section hidden.
func New() *Results {
	return &Results{
		KeyPoints: ListSection{Title: "Key points"},
		Plan:      ListSection{Title: "Study plan"},
	}
}

// Render clears every section, fills it from res, and shows all four.
// A nil res renders as an empty result.
func (r *Results) Render(res *analysis.Result) {
	r.Summary.Clear()
	r.KeyPoints.Clear()
	r.Quiz.Clear()
	r.Plan.Clear()
	r.fileName = ""

	if res == nil {
		res = &analysis.Result{}
	}

	r.fileName = res.FileName
	r.Summary.Set(res.Summary)
	for _, k := range res.KeyPoints {
		r.KeyPoints.Append(k)
	}
	for _, q := range res.QuizQuestions {
		r.Quiz.Append(q)
	}
	for _, p := range res.StudyGuide {
		r.Plan.Append(p)
	}

	r.Summary.visible = true
	r.KeyPoints.visible = true
	r.Quiz.visible = true
	r.Plan.visible = true
}

// Rendered reports whether any result has been rendered yet.
func (r *Results) Rendered() bool {
	return r.Summary.visible
}

// FileName returns the document name the service echoed back, if any.
func (r *Results) FileName() string { return r.fileName }

// View renders the visible sections at the given width. It also returns the
// first line of every quiz card so a viewport can keep the focused card on
// screen.
func (r *Results) View(width int) (string, []int) {
	width = max(width, 20)

	var (
		b       strings.Builder
		offsets []int
	)
	lines := func() int { return strings.Count(b.String(), "\n") }

	body := lipgloss.NewStyle().Foreground(theme.Text).Width(width - 2).PaddingLeft(2)

	if r.Summary.Visible() {
		b.WriteString(theme.SectionTitle.Render("Summary") + "\n")
		if r.Summary.text == "" {
			b.WriteString(theme.Hint.PaddingLeft(2).Render(r.Summary.Text()) + "\n")
		} else {
			b.WriteString(body.Render(r.Summary.Text()) + "\n")
		}
		b.WriteString("\n")
	}

	if r.KeyPoints.Visible() {
		b.WriteString(renderList(&r.KeyPoints, width) + "\n")
	}

	if r.Quiz.Visible() {
		b.WriteString(theme.SectionTitle.Render("Quiz") + "\n")
		if len(r.Quiz.cards) == 0 {
			b.WriteString(theme.Hint.PaddingLeft(2).Render("No questions.") + "\n")
		}
		for i, card := range r.Quiz.cards {
			offsets = append(offsets, lines())
			b.WriteString(renderCard(card, i == r.Quiz.focus, width) + "\n")
		}
		b.WriteString("\n")
	}

	if r.Plan.Visible() {
		b.WriteString(renderList(&r.Plan, width) + "\n")
	}

	return strings.TrimRight(b.String(), "\n"), offsets
}

func renderList(l *ListSection, width int) string {
	var b strings.Builder
	b.WriteString(theme.SectionTitle.Render(l.Title) + "\n")

	if len(l.items) == 0 {
		b.WriteString(theme.Hint.PaddingLeft(2).Render("Nothing here.") + "\n")
		return b.String()
	}

	item := lipgloss.NewStyle().Foreground(theme.Text).Width(width - 6)
	for _, it := range l.items {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			theme.Bullet.Render("  • "), item.Render(it)) + "\n")
	}
	return b.String()
}

func renderCard(c *QuizCard, focused bool, width int) string {
	marker := "  "
	if focused {
		marker = theme.Selected.Render("▸ ")
	}

	label := theme.Selected.Render(c.Label())
	question := lipgloss.NewStyle().Foreground(theme.Text).Width(width - 8).Render(c.Question())
	title := lipgloss.JoinHorizontal(lipgloss.Top, marker, label, " ", question)

	opts := components.NewOptionList(c.Options(), width-6)
	if c.Revealed() {
		opts.Highlight = c.correctIndex()
	}

	control := components.NewButton(RevealLabel, focused).View()
	if c.Revealed() {
		answer := theme.Correct.Render(c.AnswerText())
		if c.correctIndex() < 0 {
			answer = theme.Hint.Render(c.AnswerText())
		}
		control += "  " + answer
	}

	indent := lipgloss.NewStyle().PaddingLeft(5)
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		indent.Render(opts.View()),
		indent.Render(control),
	)
}

// Plain renders res as unstyled text for non-interactive output. With
// revealAnswers every quiz card is shown revealed.
func Plain(res *analysis.Result, revealAnswers bool) string {
	r := New()
	r.Render(res)
	if revealAnswers {
		for _, c := range r.Quiz.Cards() {
			c.Toggle()
		}
	}

	var b strings.Builder
	if r.FileName() != "" {
		b.WriteString("Document: " + r.FileName() + "\n\n")
	}

	b.WriteString("Summary\n")
	b.WriteString("  " + r.Summary.Text() + "\n\n")

	writeList := func(l *ListSection) {
		b.WriteString(l.Title + "\n")
		for _, it := range l.Items() {
			b.WriteString("  - " + it + "\n")
		}
		b.WriteString("\n")
	}

	writeList(&r.KeyPoints)

	b.WriteString("Quiz\n")
	for _, c := range r.Quiz.Cards() {
		b.WriteString("  " + c.Label() + " " + c.Question() + "\n")
		for _, opt := range c.Options() {
			b.WriteString("     " + opt + "\n")
		}
		if c.Revealed() {
			b.WriteString("     " + c.AnswerText() + "\n")
		}
	}
	b.WriteString("\n")

	writeList(&r.Plan)

	return strings.TrimRight(b.String(), "\n") + "\n"
}
