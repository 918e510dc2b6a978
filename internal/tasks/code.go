package tasks

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/skrblv/bilimGO/internal/ui/theme"
)

// Code is a multiline editor for coding tasks. Enter inserts a newline, so
// the lesson screen submits code answers with a separate key.
type Code struct {
	model  textarea.Model
	locked bool
}

// NewCode creates an editor seeded with the task's initial snippet, cursor
// at the end.
func NewCode(initial string) *Code {
	ta := textarea.New()
	ta.Placeholder = "Write your solution..."
	ta.SetValue(initial)
	ta.MoveToEnd()
	ta.Focus()
	return &Code{model: ta}
}

func (c *Code) Init() tea.Cmd {
	return c.model.Focus()
}

func (c *Code) Update(msg tea.Msg) (Widget, tea.Cmd) {
	if c.locked {
		return c, nil
	}
	var cmd tea.Cmd
	c.model, cmd = c.model.Update(msg)
	return c, cmd
}

func (c *Code) Value() string {
	return c.model.Value()
}

func (c *Code) Lock(correct bool, _ string) {
	c.locked = true
	c.model.Blur()
}

func (c *Code) View(width int) string {
	if width > 4 {
		c.model.SetWidth(width - 4)
	}
	view := c.model.View()
	if c.locked {
		return theme.Locked.Render(view)
	}
	return view
}
