package session

import "github.com/skrblv/bilimGO/internal/course"

// TestAnswer is one entry of the batch submitted at the end of a
// certification test.
type TestAnswer struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}

// TestSession drives a certification test attempt: no theory stage, no
// per-question grading. Answers are buffered locally per question ID (last
// write wins) and the whole set is submitted exactly once at the end.
type TestSession struct {
	AttemptID int
	Questions []course.Task

	Index   int
	Answers map[int]string

	InFlight  bool
	Submitted bool
}

// NewTest creates a test session over the server-supplied question set.
// Questions arrive stripped of their correct answers.
func NewTest(attemptID int, questions []course.Task) *TestSession {
	return &TestSession{
		AttemptID: attemptID,
		Questions: questions,
		Answers:   make(map[int]string),
	}
}

// Current returns the question under the cursor, or nil when the question
// set is empty.
func (t *TestSession) Current() *course.Task {
	if t.Index < 0 || t.Index >= len(t.Questions) {
		return nil
	}
	return &t.Questions[t.Index]
}

// SetAnswer buffers an answer for the current question. Last write wins.
// Ignored once the batch has been submitted.
func (t *TestSession) SetAnswer(answer string) {
	q := t.Current()
	if q == nil || t.Submitted || t.InFlight {
		return
	}
	t.Answers[q.ID] = answer
}

// CurrentAnswer returns the buffered answer for the current question.
func (t *TestSession) CurrentAnswer() string {
	q := t.Current()
	if q == nil {
		return ""
	}
	return t.Answers[q.ID]
}

// CanAdvance reports whether the "next" action is enabled: the current
// question must have a non-empty buffered answer.
func (t *TestSession) CanAdvance() bool {
	return t.CurrentAnswer() != "" && !t.InFlight && !t.Submitted
}

// OnLast reports whether the cursor is on the final question, where the
// "next" action becomes "finish".
func (t *TestSession) OnLast() bool {
	return t.Index == len(t.Questions)-1
}

// Next moves the cursor forward. Returns false when the current answer is
// empty or the cursor is already on the last question (the caller submits
// instead of advancing). Navigation is forward-only.
func (t *TestSession) Next() bool {
	if !t.CanAdvance() || t.OnLast() {
		return false
	}
	t.Index++
	return true
}

// BeginSubmit claims the single batch submission. Legal only from the last
// question with a non-empty answer.
func (t *TestSession) BeginSubmit() bool {
	if !t.OnLast() || !t.CanAdvance() {
		return false
	}
	t.InFlight = true
	return true
}

// ResolveSubmit releases the in-flight slot. On success the session is
// latched submitted and must be discarded; on failure it can be retried.
func (t *TestSession) ResolveSubmit(ok bool) {
	t.InFlight = false
	t.Submitted = ok
}

// Payload assembles the full answer batch in question order. Questions the
// learner somehow never answered are included with an empty string so the
// server sees exactly one entry per question.
func (t *TestSession) Payload() []TestAnswer {
	out := make([]TestAnswer, 0, len(t.Questions))
	for _, q := range t.Questions {
		out = append(out, TestAnswer{QuestionID: q.ID, Answer: t.Answers[q.ID]})
	}
	return out
}
