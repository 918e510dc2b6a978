// Package session holds the client-side state machines that drive a learner
// through lessons, certification tests, and challenges. The machines are
// pure: every network round trip is started and resolved by the screen
// layer, which calls back into exported transition methods. Methods that
// guard a transition return false when the transition is not legal, and
// callers treat that as a no-op.
package session

import "github.com/skrblv/bilimGO/internal/course"

// Stage is the lesson session's coarse position.
type Stage int

const (
	StageTheory Stage = iota
	StageTask
	StageCompleted
)

// String returns the stage name for logging.
func (s Stage) String() string {
	switch s {
	case StageTheory:
		return "theory"
	case StageTask:
		return "task"
	case StageCompleted:
		return "completed"
	}
	return "unknown"
}

// Session drives a single lesson attempt. It is created when the lesson is
// entered and discarded on navigation away; nothing here is persisted.
//
// Transient per-task fields (Answer, Checked, Correct, RevealedAnswer,
// HintText) are reset together on Retry and Advance so that a stale flag
// cannot leak into the next task.
type Session struct {
	Lesson *course.Lesson

	Stage      Stage
	TheoryStep int
	TaskIndex  int

	// Per-task transient state.
	Answer         string
	Checked        bool
	Correct        bool
	RevealedAnswer string
	HintText       string

	// InFlight gates re-entrancy: while a check or completion call is
	// outstanding the triggering action is disabled.
	InFlight bool

	// CompletionSent records that the lesson-completion call was issued,
	// guaranteeing it happens at most once per session.
	CompletionSent bool
}

// New creates a session positioned at the lesson's first meaningful stage.
// Lessons without theory start directly in the task stage; lessons without
// tasks (degenerate but server-permitted) start completed.
func New(lesson *course.Lesson) *Session {
	s := &Session{Lesson: lesson, Stage: StageTheory}
	if len(lesson.Theory) == 0 {
		if len(lesson.Tasks) > 0 {
			s.Stage = StageTask
		} else {
			s.Stage = StageCompleted
		}
	}
	return s
}

// CurrentTheory returns the theory block under the cursor, or nil outside
// the theory stage.
func (s *Session) CurrentTheory() *course.ContentBlock {
	if s.Stage != StageTheory || s.TheoryStep >= len(s.Lesson.Theory) {
		return nil
	}
	return &s.Lesson.Theory[s.TheoryStep]
}

// CurrentTask returns the task under the cursor, or nil outside the task
// stage.
func (s *Session) CurrentTask() *course.Task {
	if s.Stage != StageTask || s.TaskIndex >= len(s.Lesson.Tasks) {
		return nil
	}
	return &s.Lesson.Tasks[s.TaskIndex]
}

// Next advances through the theory stage: one step forward, then into the
// task stage (or straight to completed when the lesson has no tasks).
// It is a no-op outside the theory stage; task-stage advancement goes
// through Advance, which checks correctness.
func (s *Session) Next() {
	if s.Stage != StageTheory {
		return
	}
	if s.TheoryStep < len(s.Lesson.Theory)-1 {
		s.TheoryStep++
		return
	}
	if len(s.Lesson.Tasks) > 0 {
		s.Stage = StageTask
	} else {
		s.Stage = StageCompleted
	}
}

// Back moves one theory step backwards, or from the first task back into
// theory (positioned at the last step). Backing out of a task is only
// allowed before the answer has been checked; once graded, the only paths
// are Retry or Advance. Completed is terminal.
func (s *Session) Back() {
	switch s.Stage {
	case StageTheory:
		if s.TheoryStep > 0 {
			s.TheoryStep--
		}
	case StageTask:
		if s.TaskIndex == 0 && !s.Checked && len(s.Lesson.Theory) > 0 {
			s.Stage = StageTheory
			s.TheoryStep = len(s.Lesson.Theory) - 1
			s.resetTaskState()
		}
	}
}

// SelectAnswer records the widget's current answer value. Ignored once the
// task is checked, so late widget callbacks cannot disturb grading state.
func (s *Session) SelectAnswer(answer string) {
	if s.Stage != StageTask || s.Checked {
		return
	}
	s.Answer = answer
}

// CanCheck reports whether the check action is currently available: a task
// is active, the answer is non-empty, nothing is in flight, the task has
// not been checked yet, and the task type goes through the grading
// endpoint at all (speed typing resolves locally).
func (s *Session) CanCheck() bool {
	task := s.CurrentTask()
	if task == nil || task.Type == course.TypeSpeedTyping {
		return false
	}
	return s.Answer != "" && !s.Checked && !s.InFlight
}

// BeginCheck claims the in-flight slot for a grading round trip. Returns
// false if the check is not currently allowed, in which case no request
// must be sent. The idempotence property lives here: a second call while
// Checked or InFlight fails.
func (s *Session) BeginCheck() bool {
	if !s.CanCheck() {
		return false
	}
	s.InFlight = true
	return true
}

// ResolveCheck applies the grading verdict. The revealed correct answer is
// only retained on an incorrect verdict, matching what the server sends.
func (s *Session) ResolveCheck(correct bool, revealedAnswer string) {
	s.InFlight = false
	if s.Stage != StageTask {
		// The session moved on while the request was outstanding;
		// discard the result.
		return
	}
	s.Checked = true
	s.Correct = correct
	if !correct {
		s.RevealedAnswer = revealedAnswer
	}
}

// AbortCheck releases the in-flight slot after a transport failure,
// leaving all grading state untouched so the user can retry the action.
func (s *Session) AbortCheck() {
	s.InFlight = false
}

// Retry clears the transient task state after an incorrect answer so the
// same task can be attempted again. Only legal when the last check came
// back wrong; failed speed-typing attempts are not retryable in place.
func (s *Session) Retry() bool {
	task := s.CurrentTask()
	if task == nil || !s.Checked || s.Correct || task.Type == course.TypeSpeedTyping {
		return false
	}
	s.resetTaskState()
	return true
}

// Advance moves to the next task after a correct answer, or into the
// completed stage when the last task is done. Calling it with an unchecked
// or incorrect task is a no-op and returns false.
func (s *Session) Advance() bool {
	if s.Stage != StageTask || !s.Checked || !s.Correct || s.InFlight {
		return false
	}
	if s.TaskIndex < len(s.Lesson.Tasks)-1 {
		s.TaskIndex++
		s.resetTaskState()
		return true
	}
	s.Stage = StageCompleted
	s.resetTaskState()
	return true
}

// ReportTyping resolves a speed-typing task locally: the widget itself
// decides success (typed text matched the reference) or failure (time
// expired first), bypassing the grading endpoint entirely.
func (s *Session) ReportTyping(success bool) {
	task := s.CurrentTask()
	if task == nil || task.Type != course.TypeSpeedTyping || s.Checked {
		return
	}
	s.Checked = true
	s.Correct = success
}

// BeginComplete claims the single completion call. Returns false unless
// the session has reached the completed stage and no completion has been
// sent yet.
func (s *Session) BeginComplete() bool {
	if s.Stage != StageCompleted || s.CompletionSent || s.InFlight {
		return false
	}
	s.InFlight = true
	s.CompletionSent = true
	return true
}

// ResolveComplete releases the in-flight slot after the completion call.
// On failure the CompletionSent latch is reopened so the user can retry
// the call manually; the stage stays completed either way.
func (s *Session) ResolveComplete(ok bool) {
	s.InFlight = false
	if !ok {
		s.CompletionSent = false
	}
}

// ShowHint records a server-delivered hint for the current task. At most
// one hint is displayed per task attempt.
func (s *Session) ShowHint(text string) {
	if s.Stage != StageTask || s.HintText != "" {
		return
	}
	s.HintText = text
}

// Progress returns overall lesson progress in [0,1] for the header bar,
// counting theory steps and tasks as equal units. A checked-correct task
// counts as done before Advance is pressed, mirroring how far the learner
// actually is.
func (s *Session) Progress() float64 {
	total := len(s.Lesson.Theory) + len(s.Lesson.Tasks)
	if total == 0 {
		return 1
	}
	var done int
	switch s.Stage {
	case StageTheory:
		done = s.TheoryStep + 1
	case StageTask:
		done = len(s.Lesson.Theory) + s.TaskIndex
		if s.Checked && s.Correct {
			done++
		}
	case StageCompleted:
		done = total
	}
	p := float64(done) / float64(total)
	if p > 1 {
		p = 1
	}
	return p
}

func (s *Session) resetTaskState() {
	s.Answer = ""
	s.Checked = false
	s.Correct = false
	s.RevealedAnswer = ""
	s.HintText = ""
}
