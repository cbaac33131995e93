package upload

import (
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/viewport"

	"github.com/abhisek/studybuddy/internal/ui/layout"
)

type keyMap struct {
	SwitchPane key.Binding
	History    key.Binding
	TypePath   key.Binding
	Cancel     key.Binding
	Dismiss    key.Binding
	QuizUp     key.Binding
	QuizDown   key.Binding
	Reveal     key.Binding
	Pick       key.Binding
	Browse     key.Binding
	Scroll     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		SwitchPane: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("Tab", "Switch pane")),
		History:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("Ctrl+O", "History")),
		TypePath:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "Type path")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Cancel")),
		Dismiss:    key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("Enter", "Dismiss")),
		QuizUp:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "Question")),
		QuizDown:   key.NewBinding(key.WithKeys("down", "j")),
		Reveal:     key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("Enter", "Reveal")),
		Pick:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Upload")),
		Browse:     key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑↓←→", "Browse")),
		Scroll:     key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("PgUp/PgDn", "Scroll")),
	}
}

// resultsKeyMap keeps the viewport to paging; arrows move between questions
// and space reveals answers.
func resultsKeyMap() viewport.KeyMap {
	km := viewport.DefaultKeyMap()
	km.PageDown = key.NewBinding(key.WithKeys("pgdown", "f"))
	km.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"))
	km.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"))
	km.Up.SetEnabled(false)
	km.Down.SetEnabled(false)
	km.Left.SetEnabled(false)
	km.Right.SetEnabled(false)
	return km
}

func hints(bindings ...key.Binding) []layout.KeyHint {
	out := make([]layout.KeyHint, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, layout.KeyHint{Key: h.Key, Description: h.Desc})
	}
	return out
}
