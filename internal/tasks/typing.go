package tasks

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/skrblv/bilimGO/internal/ui/theme"
)

const defaultTypingLimit = 60 * time.Second

// Typing is the speed-typing widget. Unlike every other task type it
// resolves locally: success the instant the typed text exactly matches the
// reference, failure when the time limit expires first. The clock starts
// on the first printable keystroke, not when the task is shown.
type Typing struct {
	reference []rune
	limit     time.Duration

	typed    []rune
	started  bool
	startAt  time.Time
	deadline time.Time

	finished bool
	success  bool

	now func() time.Time
}

// NewTyping builds the widget around the trimmed reference text. A zero
// time limit falls back to sixty seconds.
func NewTyping(reference string, limitSeconds int) *Typing {
	limit := time.Duration(limitSeconds) * time.Second
	if limit <= 0 {
		limit = defaultTypingLimit
	}
	return &Typing{
		reference: []rune(strings.TrimSpace(reference)),
		limit:     limit,
		now:       time.Now,
	}
}

func (t *Typing) Init() tea.Cmd { return nil }

func (t *Typing) Update(msg tea.Msg) (Widget, tea.Cmd) {
	if t.finished {
		return t, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}

	switch s := kmsg.String(); s {
	case "enter":
		t.press('\n')
	case "tab":
		t.press('\t')
	case "space":
		t.press(' ')
	case "backspace":
		if len(t.typed) > 0 {
			t.typed = t.typed[:len(t.typed)-1]
		}
	default:
		if utf8.RuneCountInString(s) == 1 {
			r, _ := utf8.DecodeRuneInString(s)
			t.press(r)
		}
	}

	if string(t.typed) == string(t.reference) {
		t.finished = true
		t.success = true
	}
	return t, nil
}

func (t *Typing) press(r rune) {
	if !t.started {
		t.started = true
		t.startAt = t.now()
		t.deadline = t.startAt.Add(t.limit)
	}
	t.typed = append(t.typed, r)
}

// Tick advances the clock. It reports true exactly once, on the tick that
// crosses the deadline without a finished match; the caller treats that as
// the failure outcome.
func (t *Typing) Tick(now time.Time) bool {
	if t.finished || !t.started {
		return false
	}
	if now.Before(t.deadline) {
		return false
	}
	t.finished = true
	t.success = false
	return true
}

// Done reports whether the attempt resolved, and with which outcome.
func (t *Typing) Done() (finished, success bool) {
	return t.finished, t.success
}

// Started reports whether the clock is running.
func (t *Typing) Started() bool { return t.started }

// Remaining returns the time left on the attempt clock, zero once the
// deadline passed or before the first keystroke uses up none of it.
func (t *Typing) Remaining(now time.Time) time.Duration {
	if !t.started {
		return t.limit
	}
	if rem := t.deadline.Sub(now); rem > 0 {
		return rem
	}
	return 0
}

// Stats returns the live words-per-minute and accuracy numbers. Accuracy
// ignores overshoot past the reference; WPM counts a word as five correct
// characters.
func (t *Typing) Stats(now time.Time) (wpm, accuracy int) {
	if !t.started || len(t.typed) == 0 {
		return 0, 100
	}
	var correct, errors int
	for i, r := range t.typed {
		if i >= len(t.reference) {
			break
		}
		if r == t.reference[i] {
			correct++
		} else {
			errors++
		}
	}
	accuracy = int(math.Max(0, math.Round(float64(len(t.typed)-errors)/float64(len(t.typed))*100)))

	minutes := now.Sub(t.startAt).Minutes()
	if minutes > 0 {
		wpm = int(math.Round(float64(correct) / 5 / minutes))
	}
	return wpm, accuracy
}

// Value returns the typed text so far.
func (t *Typing) Value() string {
	return string(t.typed)
}

func (t *Typing) Lock(bool, string) {
	t.finished = true
}

var (
	typingPending = lipgloss.NewStyle().Foreground(theme.TextDim)
	typingCorrect = lipgloss.NewStyle().Foreground(theme.Text)
	typingWrong   = lipgloss.NewStyle().Foreground(theme.Text).Background(theme.Danger)
	typingCursor  = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
)

func (t *Typing) View(width int) string {
	now := t.now()
	wpm, accuracy := t.Stats(now)
	rem := t.Remaining(now)

	var b strings.Builder
	wpmLabel := "-"
	if t.started && !t.finished {
		wpmLabel = fmt.Sprintf("%d", wpm)
	}
	accLabel := "-"
	if t.started {
		accLabel = fmt.Sprintf("%d%%", accuracy)
	}
	b.WriteString(theme.Hint.Render(fmt.Sprintf(
		"WPM %s  ·  Accuracy %s  ·  %02d:%02d",
		wpmLabel, accLabel, int(rem.Minutes()), int(rem.Seconds())%60,
	)))
	b.WriteString("\n\n")

	for i, r := range t.reference {
		ch := string(r)
		if r == '\n' {
			ch = " "
		}
		switch {
		case i < len(t.typed) && t.typed[i] == r:
			b.WriteString(typingCorrect.Render(ch))
		case i < len(t.typed):
			b.WriteString(typingWrong.Render(ch))
		case i == len(t.typed):
			b.WriteString(typingCursor.Render(ch))
		default:
			b.WriteString(typingPending.Render(ch))
		}
		if r == '\n' {
			b.WriteString("\n")
		}
	}
	// overshoot past the reference
	for _, r := range t.typed[min(len(t.typed), len(t.reference)):] {
		ch := string(r)
		if r == '\n' {
			ch = " "
		}
		b.WriteString(typingWrong.Render(ch))
	}
	b.WriteString("\n")

	if t.finished {
		b.WriteString("\n")
		if t.success {
			b.WriteString(theme.Correct.Render("🎉 Great run!"))
		} else {
			b.WriteString(theme.Incorrect.Render("⌛ Time is up"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
