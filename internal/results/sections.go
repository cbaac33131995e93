// Package results holds the rendered study material: four sections that each
// own their content, and a quiz whose cards each own their reveal state.
package results

import (
	"fmt"

	"github.com/abhisek/studybuddy/internal/analysis"
)

const (
	// NoSummary replaces an absent summary.
	NoSummary = "No summary generated."

	// NoAnswer is revealed for questions without a usable answer index.
	NoAnswer = "No answer provided"

	// RevealLabel is the reveal control's caption.
	RevealLabel = "Reveal answer"
)

// SummarySection shows the summary text.
type SummarySection struct {
	text    string
	visible bool
}

// Clear empties the section.
func (s *SummarySection) Clear() { s.text = "" }

// Set replaces the summary text.
func (s *SummarySection) Set(text string) { s.text = text }

// Text returns what the section displays: the summary or NoSummary.
func (s *SummarySection) Text() string {
	if s.text == "" {
		return NoSummary
	}
	return s.text
}

// Visible reports whether the section is shown.
func (s *SummarySection) Visible() bool { return s.visible }

// ListSection shows an ordered list of plain items.
type ListSection struct {
	Title   string
	items   []string
	visible bool
}

// Clear removes every item.
func (l *ListSection) Clear() { l.items = nil }

// Append adds one item at the end.
func (l *ListSection) Append(item string) { l.items = append(l.items, item) }

// Items returns the items in display order.
func (l *ListSection) Items() []string { return l.items }

// Visible reports whether the section is shown.
func (l *ListSection) Visible() bool { return l.visible }

// QuizCard is one rendered question with its own reveal state.
type QuizCard struct {
	number   int
	question analysis.Question
	revealed bool
}

// Label returns the 1-based question label, e.g. "Q1.".
func (c *QuizCard) Label() string { return fmt.Sprintf("Q%d.", c.number) }

// Question returns the question text.
func (c *QuizCard) Question() string { return c.question.Question }

// Options returns the lettered options in input order, e.g. "A. x".
func (c *QuizCard) Options() []string {
	out := make([]string, len(c.question.Options))
	for i, opt := range c.question.Options {
		out[i] = analysis.Letter(i) + ". " + opt
	}
	return out
}

// Toggle flips this card's reveal state and nothing else.
func (c *QuizCard) Toggle() { c.revealed = !c.revealed }

// Revealed reports whether the answer is shown.
func (c *QuizCard) Revealed() bool { return c.revealed }

// AnswerText returns the text shown when revealed.
func (c *QuizCard) AnswerText() string {
	if idx, ok := c.question.Answer(); ok {
		return "Correct: " + analysis.Letter(idx)
	}
	return NoAnswer
}

// correctIndex returns the answer index, or -1.
func (c *QuizCard) correctIndex() int {
	if idx, ok := c.question.Answer(); ok {
		return idx
	}
	return -1
}

// QuizSection holds the quiz cards and which one has keyboard focus.
type QuizSection struct {
	cards   []*QuizCard
	focus   int
	visible bool
}

// Clear removes every card.
func (q *QuizSection) Clear() {
	q.cards = nil
	q.focus = 0
}

// Append adds a card for question.
func (q *QuizSection) Append(question analysis.Question) {
	q.cards = append(q.cards, &QuizCard{number: len(q.cards) + 1, question: question})
}

// Cards returns the cards in order.
func (q *QuizSection) Cards() []*QuizCard { return q.cards }

// Visible reports whether the section is shown.
func (q *QuizSection) Visible() bool { return q.visible }

// Focus returns the index of the focused card, or -1 when there are none.
func (q *QuizSection) Focus() int {
	if len(q.cards) == 0 {
		return -1
	}
	return q.focus
}

// FocusNext moves focus to the next card, stopping at the last.
func (q *QuizSection) FocusNext() {
	if q.focus < len(q.cards)-1 {
		q.focus++
	}
}

// FocusPrev moves focus to the previous card, stopping at the first.
func (q *QuizSection) FocusPrev() {
	if q.focus > 0 {
		q.focus--
	}
}

// ToggleFocused toggles the focused card. It reports false when the quiz
// has no cards.
func (q *QuizSection) ToggleFocused() bool {
	if len(q.cards) == 0 {
		return false
	}
	q.cards[q.focus].Toggle()
	return true
}
