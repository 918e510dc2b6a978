package tasks

import (
	"fmt"
	"sort"

	tea "charm.land/bubbletea/v2"

	"github.com/skrblv/bilimGO/internal/ui/theme"
)

type choiceOption struct {
	key   string
	label string
}

// Choice captures multiple_choice and true_false answers. Options are a
// key→label map; the emitted answer is the selected key. Once locked, the
// options are color coded: correct key green, wrongly selected key red,
// the rest dimmed.
type Choice struct {
	options []choiceOption

	cursor  int
	chosen  int // -1 until the user selects
	locked  bool
	correct string
	verdict bool
}

// NewChoice creates a choice widget from a key→label map. Keys are ordered
// lexically so the layout is stable across renders.
func NewChoice(options map[string]string) *Choice {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	opts := make([]choiceOption, 0, len(keys))
	for _, k := range keys {
		opts = append(opts, choiceOption{key: k, label: options[k]})
	}
	return &Choice{options: opts, chosen: -1}
}

// NewTrueFalse creates the fixed two-valued variant. The emitted keys are
// the server's canonical "True"/"False".
func NewTrueFalse() *Choice {
	return &Choice{
		options: []choiceOption{
			{key: "True", label: "True"},
			{key: "False", label: "False"},
		},
		chosen: -1,
	}
}

func (c *Choice) Init() tea.Cmd { return nil }

// Update moves the cursor and selects in one motion: the highlighted
// option is the current answer. Number keys jump directly.
func (c *Choice) Update(msg tea.Msg) (Widget, tea.Cmd) {
	if c.locked {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if c.chosen < 0 {
			c.choose(0)
		} else if c.cursor > 0 {
			c.choose(c.cursor - 1)
		}
	case "down", "j":
		if c.chosen < 0 {
			c.choose(0)
		} else if c.cursor < len(c.options)-1 {
			c.choose(c.cursor + 1)
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			idx := int(key[0] - '1')
			if idx < len(c.options) {
				c.choose(idx)
			}
		}
	}
	return c, nil
}

func (c *Choice) choose(idx int) {
	c.cursor = idx
	c.chosen = idx
}

// Value returns the selected option key, or "" before any selection.
func (c *Choice) Value() string {
	if c.chosen < 0 {
		return ""
	}
	return c.options[c.chosen].key
}

// Lock freezes the widget with the grading verdict and the correct key for
// color coding. On a correct verdict the selected key itself is correct.
func (c *Choice) Lock(correct bool, correctAnswer string) {
	c.locked = true
	c.verdict = correct
	if correct {
		c.correct = c.Value()
	} else {
		c.correct = correctAnswer
	}
}

// View renders the option list.
func (c *Choice) View(width int) string {
	var s string
	for i, opt := range c.options {
		prefix := "  "
		if i == c.cursor && !c.locked {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt.label)

		switch {
		case c.locked && opt.key == c.correct:
			s += theme.Correct.Render(line) + "\n"
		case c.locked && i == c.chosen:
			s += theme.Incorrect.Render(line) + "\n"
		case c.locked:
			s += theme.Locked.Render(line) + "\n"
		case i == c.chosen:
			s += theme.Selected.Render(line) + "\n"
		default:
			s += theme.Unselected.Render(line) + "\n"
		}
	}
	return s
}
