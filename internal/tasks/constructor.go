package tasks

import (
	"math/rand"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/skrblv/bilimGO/internal/ui/theme"
)

type fragment struct {
	id    int
	value string
}

// Constructor lets the user assemble an answer from shuffled code
// fragments. Fragments move between the pool and the built sequence; the
// answer is the built fragments concatenated in order with no separator.
type Constructor struct {
	source []string

	pool  []fragment
	built []fragment

	focusBuilt bool
	cursor     int
	locked     bool
}

// NewConstructor shuffles the fragment pool. Fragment ids are positions in
// the shuffled order, so a returned fragment slots back where it came from.
func NewConstructor(fragments []string) *Constructor {
	c := &Constructor{source: fragments}
	c.reshuffle()
	return c
}

func (c *Constructor) reshuffle() {
	shuffled := make([]string, len(c.source))
	copy(shuffled, c.source)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	c.pool = make([]fragment, len(shuffled))
	for i, v := range shuffled {
		c.pool[i] = fragment{id: i, value: v}
	}
	c.built = nil
	c.focusBuilt = false
	c.cursor = 0
}

func (c *Constructor) Init() tea.Cmd { return nil }

func (c *Constructor) Update(msg tea.Msg) (Widget, tea.Cmd) {
	if c.locked {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch kmsg.String() {
	case "left", "h":
		if c.cursor > 0 {
			c.cursor--
		}
	case "right", "l":
		if c.cursor < c.activeLen()-1 {
			c.cursor++
		}
	case "tab":
		c.focusBuilt = !c.focusBuilt
		c.clampCursor()
	case "enter", "space":
		if c.focusBuilt {
			c.returnFragment()
		} else {
			c.takeFragment()
		}
	case "backspace":
		c.returnLast()
	case "r":
		c.reshuffle()
	}
	return c, nil
}

func (c *Constructor) activeLen() int {
	if c.focusBuilt {
		return len(c.built)
	}
	return len(c.pool)
}

func (c *Constructor) clampCursor() {
	if n := c.activeLen(); c.cursor >= n {
		c.cursor = n - 1
	}
	if c.cursor < 0 {
		c.cursor = 0
	}
}

// takeFragment moves the fragment under the cursor from the pool to the
// end of the built sequence.
func (c *Constructor) takeFragment() {
	if len(c.pool) == 0 {
		return
	}
	f := c.pool[c.cursor]
	c.pool = append(c.pool[:c.cursor], c.pool[c.cursor+1:]...)
	c.built = append(c.built, f)
	c.clampCursor()
}

// returnFragment moves the built fragment under the cursor back to the
// pool, which stays ordered by fragment id.
func (c *Constructor) returnFragment() {
	if len(c.built) == 0 {
		return
	}
	f := c.built[c.cursor]
	c.built = append(c.built[:c.cursor], c.built[c.cursor+1:]...)
	c.pool = append(c.pool, f)
	sort.Slice(c.pool, func(i, j int) bool { return c.pool[i].id < c.pool[j].id })
	c.clampCursor()
}

func (c *Constructor) returnLast() {
	if len(c.built) == 0 {
		return
	}
	f := c.built[len(c.built)-1]
	c.built = c.built[:len(c.built)-1]
	c.pool = append(c.pool, f)
	sort.Slice(c.pool, func(i, j int) bool { return c.pool[i].id < c.pool[j].id })
	c.clampCursor()
}

// Value concatenates the built fragments in order.
func (c *Constructor) Value() string {
	var b strings.Builder
	for _, f := range c.built {
		b.WriteString(f.value)
	}
	return b.String()
}

func (c *Constructor) Lock(bool, string) {
	c.locked = true
}

func (c *Constructor) View(width int) string {
	var b strings.Builder

	b.WriteString(theme.Hint.Render("Your answer:"))
	b.WriteString("\n")
	if len(c.built) == 0 {
		b.WriteString(theme.Hint.Render("  (pick fragments below)"))
	} else {
		b.WriteString("  ")
		for i, f := range c.built {
			b.WriteString(c.renderFrag(f.value, c.focusBuilt && i == c.cursor))
			b.WriteString(" ")
		}
	}
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("Fragments:"))
	b.WriteString("\n  ")
	for i, f := range c.pool {
		b.WriteString(c.renderFrag(f.value, !c.focusBuilt && i == c.cursor))
		b.WriteString(" ")
	}
	b.WriteString("\n")
	return b.String()
}

func (c *Constructor) renderFrag(value string, focused bool) string {
	label := "[" + value + "]"
	if c.locked {
		return theme.Locked.Render(label)
	}
	if focused {
		return theme.Selected.Render(label)
	}
	return theme.Unselected.Render(label)
}
