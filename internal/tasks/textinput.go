package tasks

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/skrblv/bilimGO/internal/ui/theme"
)

// TextInput captures free-text answers. The raw buffer is the answer; no
// client-side validation beyond the empty-answer gate upstream.
type TextInput struct {
	model  textinput.Model
	locked bool
}

// NewTextInput creates a focused single-line input.
func NewTextInput() *TextInput {
	ti := textinput.New()
	ti.Placeholder = "Type your answer..."
	ti.Focus()
	return &TextInput{model: ti}
}

func (t *TextInput) Init() tea.Cmd {
	return t.model.Focus()
}

func (t *TextInput) Update(msg tea.Msg) (Widget, tea.Cmd) {
	if t.locked {
		return t, nil
	}
	var cmd tea.Cmd
	t.model, cmd = t.model.Update(msg)
	return t, cmd
}

func (t *TextInput) Value() string {
	return t.model.Value()
}

func (t *TextInput) Lock(correct bool, _ string) {
	t.locked = true
	t.model.Blur()
}

func (t *TextInput) View(width int) string {
	view := t.model.View()
	if t.locked {
		return theme.Locked.Render(view)
	}
	return view
}
