package tasks

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/skrblv/bilimGO/internal/ui/theme"
)

// FillBlank renders a template with one gap and captures what goes in it.
// The answer is the gap content only, not the whole rendered line.
type FillBlank struct {
	prefix string
	suffix string
	model  textinput.Model
	locked bool
}

// NewFillBlank splits the template on the first underscore marker. A
// template without a marker is a malformed task.
func NewFillBlank(template string) (*FillBlank, error) {
	before, after, found := strings.Cut(template, "_")
	if !found {
		return nil, fmt.Errorf("fill-blank template %q has no blank marker", template)
	}
	ti := textinput.New()
	ti.Placeholder = "..."
	ti.Focus()
	return &FillBlank{prefix: before, suffix: after, model: ti}, nil
}

func (f *FillBlank) Init() tea.Cmd {
	return f.model.Focus()
}

func (f *FillBlank) Update(msg tea.Msg) (Widget, tea.Cmd) {
	if f.locked {
		return f, nil
	}
	var cmd tea.Cmd
	f.model, cmd = f.model.Update(msg)
	return f, cmd
}

func (f *FillBlank) Value() string {
	return f.model.Value()
}

func (f *FillBlank) Lock(correct bool, _ string) {
	f.locked = true
	f.model.Blur()
}

func (f *FillBlank) View(width int) string {
	var b strings.Builder
	b.WriteString(theme.Body.Render(f.prefix))
	b.WriteString(f.model.View())
	b.WriteString(theme.Body.Render(f.suffix))
	if f.locked {
		return theme.Locked.Render(b.String())
	}
	return b.String()
}
