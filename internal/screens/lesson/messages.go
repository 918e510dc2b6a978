package lesson

import (
	"time"

	"github.com/skrblv/bilimGO/internal/api"
	"github.com/skrblv/bilimGO/internal/course"
)

// checkResultMsg delivers the grading verdict for one task.
type checkResultMsg struct {
	TaskID   int
	Correct  bool
	Revealed string
	Err      error
}

// hintMsg delivers a purchased hint.
type hintMsg struct {
	TaskID int
	Text   string
	Err    error
}

// completeMsg delivers the lesson completion acknowledgement.
type completeMsg struct {
	Result *api.CompletionResult
	Err    error
}

// challengeSubmitMsg reports the challenge result round trip.
type challengeSubmitMsg struct {
	Challenge *api.Challenge
	Err       error
}

// refetchedMsg delivers a fresh copy of the lesson after the loaded one
// turned out to be malformed.
type refetchedMsg struct {
	Lesson *course.Lesson
	Err    error
}

// timerTickMsg drives the speed-typing clock and the challenge timer.
type timerTickMsg time.Time
