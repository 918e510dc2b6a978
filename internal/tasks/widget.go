// Package tasks implements the answer-capture widgets, one per task type.
// Each widget turns keyboard interaction into a single normalized string
// answer exposed through Value, and goes inert once Lock is called with the
// grading verdict. Widgets never talk to the network; the session screens
// read Value and drive the check round trip.
package tasks

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/skrblv/bilimGO/internal/course"
)

// Widget is the common surface a session screen drives for one task.
type Widget interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Widget, tea.Cmd)
	View(width int) string

	// Value returns the current normalized answer, empty until the user
	// has made a selection. An empty value disables the check action
	// upstream.
	Value() string

	// Lock freezes the widget after grading. Choice widgets use the
	// revealed correct answer for color coding; once locked a widget
	// ignores all input and must not change its value.
	Lock(correct bool, correctAnswer string)
}

// ForTask constructs the widget for a task. The switch is exhaustive over
// course.TaskType: adding a task type without extending it is a visible
// compile-and-test failure, not a silent fallback.
func ForTask(t *course.Task) (Widget, error) {
	switch t.Type {
	case course.TypeMultipleChoice:
		opts, err := t.ChoiceOptions()
		if err != nil {
			return nil, err
		}
		return NewChoice(opts), nil
	case course.TypeTrueFalse:
		return NewTrueFalse(), nil
	case course.TypeTextInput:
		return NewTextInput(), nil
	case course.TypeCode:
		return NewCode(t.CodeTemplate), nil
	case course.TypeFillInBlank:
		return NewFillBlank(t.CodeTemplate)
	case course.TypeConstructor:
		frags, err := t.ConstructorFragments()
		if err != nil {
			return nil, err
		}
		return NewConstructor(frags), nil
	case course.TypeSpeedTyping:
		return NewTyping(t.CorrectAnswer, t.TimeLimit), nil
	}
	return nil, fmt.Errorf("task %d: unknown task type %q", t.ID, t.Type)
}
