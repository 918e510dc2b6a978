package session

import (
	"encoding/json"
	"testing"

	"github.com/skrblv/bilimGO/internal/course"
)

func choiceTask(id int, options map[string]string) course.Task {
	raw, _ := json.Marshal(options)
	return course.Task{
		ID:       id,
		Type:     course.TypeMultipleChoice,
		Question: "Pick one",
		Options:  raw,
	}
}

func typingTask(id int) course.Task {
	return course.Task{
		ID:            id,
		Type:          course.TypeSpeedTyping,
		Question:      "Type it",
		CorrectAnswer: "abc",
		TimeLimit:     60,
	}
}

func textBlock(content string) course.ContentBlock {
	return course.ContentBlock{Type: course.BlockText, Content: content}
}

func twoTheoryOneTask() *course.Lesson {
	return &course.Lesson{
		ID:       50,
		Title:    "Variables",
		XPReward: 10,
		Theory:   []course.ContentBlock{textBlock("one"), textBlock("two")},
		Tasks:    []course.Task{choiceTask(1, map[string]string{"a": "A", "b": "B"})},
	}
}

func TestNew_SkipsEmptyTheory(t *testing.T) {
	s := New(&course.Lesson{Tasks: []course.Task{choiceTask(1, nil)}})
	if s.Stage != StageTask {
		t.Errorf("Stage = %v, want task for a lesson without theory", s.Stage)
	}

	s = New(&course.Lesson{})
	if s.Stage != StageCompleted {
		t.Errorf("Stage = %v, want completed for an empty lesson", s.Stage)
	}
}

func TestTheoryNavigation(t *testing.T) {
	s := New(twoTheoryOneTask())

	if s.Stage != StageTheory || s.TheoryStep != 0 {
		t.Fatalf("start: stage=%v step=%d", s.Stage, s.TheoryStep)
	}

	s.Back() // no-op at step 0
	if s.TheoryStep != 0 {
		t.Error("Back at first theory step should be a no-op")
	}

	s.Next()
	if s.TheoryStep != 1 {
		t.Errorf("TheoryStep = %d, want 1", s.TheoryStep)
	}

	s.Next()
	if s.Stage != StageTask {
		t.Errorf("Stage = %v, want task after last theory step", s.Stage)
	}
}

func TestLessonScenario_WrongThenRight(t *testing.T) {
	// Two theory blocks, one multiple-choice task with correct key "b".
	s := New(twoTheoryOneTask())
	s.Next()
	s.Next()
	if s.Stage != StageTask {
		t.Fatalf("Stage = %v, want task", s.Stage)
	}

	s.SelectAnswer("a")
	if !s.BeginCheck() {
		t.Fatal("BeginCheck should succeed with a non-empty answer")
	}
	s.ResolveCheck(false, "b")

	if !s.Checked || s.Correct {
		t.Errorf("after wrong check: checked=%v correct=%v", s.Checked, s.Correct)
	}
	if s.RevealedAnswer != "b" {
		t.Errorf("RevealedAnswer = %q, want %q", s.RevealedAnswer, "b")
	}

	// Advance must be unreachable while incorrect.
	if s.Advance() {
		t.Error("Advance with correctness=false should be a no-op")
	}

	if !s.Retry() {
		t.Fatal("Retry should be legal after an incorrect check")
	}
	if s.Answer != "" || s.Checked || s.Correct || s.RevealedAnswer != "" {
		t.Error("Retry should clear the transient task state")
	}
	if s.TaskIndex != 0 {
		t.Error("Retry must not move the task index")
	}

	s.SelectAnswer("b")
	if !s.BeginCheck() {
		t.Fatal("BeginCheck should succeed after retry")
	}
	s.ResolveCheck(true, "")
	if !s.Correct {
		t.Error("correctness should be true after matching check")
	}

	if !s.Advance() {
		t.Fatal("Advance should succeed after a correct check")
	}
	if s.Stage != StageCompleted {
		t.Errorf("Stage = %v, want completed after last task", s.Stage)
	}

	// Exactly one completion call.
	if !s.BeginComplete() {
		t.Fatal("first BeginComplete should succeed")
	}
	if s.BeginComplete() {
		t.Error("second BeginComplete should be refused")
	}
	s.ResolveComplete(true)
	if s.BeginComplete() {
		t.Error("BeginComplete after success should be refused")
	}
}

func TestBeginCheck_Guards(t *testing.T) {
	s := New(twoTheoryOneTask())
	s.Next()
	s.Next()

	if s.BeginCheck() {
		t.Error("BeginCheck with an empty answer should be refused")
	}

	s.SelectAnswer("a")
	if !s.BeginCheck() {
		t.Fatal("BeginCheck should succeed")
	}
	// In flight: a second check must not start.
	if s.BeginCheck() {
		t.Error("BeginCheck while in flight should be refused")
	}

	s.ResolveCheck(true, "")
	// Checked: no further network call may be triggered.
	if s.BeginCheck() {
		t.Error("BeginCheck while checked should be refused")
	}
}

func TestAbortCheck_LeavesStateUntouched(t *testing.T) {
	s := New(twoTheoryOneTask())
	s.Next()
	s.Next()
	s.SelectAnswer("a")
	s.BeginCheck()
	s.AbortCheck()

	if s.Checked {
		t.Error("transport failure must not mark the task checked")
	}
	if s.Answer != "a" {
		t.Error("transport failure must not clear the answer")
	}
	if !s.BeginCheck() {
		t.Error("the user should be able to retry the check manually")
	}
}

func TestSelectAnswer_IgnoredOnceChecked(t *testing.T) {
	s := New(twoTheoryOneTask())
	s.Next()
	s.Next()
	s.SelectAnswer("a")
	s.BeginCheck()
	s.ResolveCheck(false, "b")

	s.SelectAnswer("b")
	if s.Answer != "a" {
		t.Error("SelectAnswer after check should be ignored")
	}
}

func TestBack_FromFirstTaskIntoTheory(t *testing.T) {
	s := New(twoTheoryOneTask())
	s.Next()
	s.Next()
	s.SelectAnswer("a")

	s.Back()
	if s.Stage != StageTheory {
		t.Fatalf("Stage = %v, want theory", s.Stage)
	}
	if s.TheoryStep != 1 {
		t.Errorf("TheoryStep = %d, want last step 1", s.TheoryStep)
	}
	if s.Answer != "" {
		t.Error("crossing back into theory should drop the pending answer")
	}
}

func TestBack_RefusedAfterCheck(t *testing.T) {
	s := New(twoTheoryOneTask())
	s.Next()
	s.Next()
	s.SelectAnswer("a")
	s.BeginCheck()
	s.ResolveCheck(false, "b")

	s.Back()
	if s.Stage != StageTask {
		t.Error("Back must be refused once the task is checked")
	}
}

func TestSpeedTyping_ResolvesLocally(t *testing.T) {
	lesson := &course.Lesson{
		ID:    51,
		Tasks: []course.Task{typingTask(2)},
	}
	s := New(lesson)
	if s.Stage != StageTask {
		t.Fatalf("Stage = %v, want task", s.Stage)
	}

	// The grading endpoint must never be involved.
	s.SelectAnswer("abc")
	if s.BeginCheck() {
		t.Error("speed typing must bypass the check round trip")
	}

	s.ReportTyping(true)
	if !s.Checked || !s.Correct {
		t.Errorf("after typing success: checked=%v correct=%v", s.Checked, s.Correct)
	}
	if !s.Advance() {
		t.Error("Advance should succeed after typing success")
	}
}

func TestSpeedTyping_ExpiryNotRetryable(t *testing.T) {
	lesson := &course.Lesson{
		ID:    52,
		Tasks: []course.Task{typingTask(2)},
	}
	s := New(lesson)

	s.ReportTyping(false)
	if !s.Checked || s.Correct {
		t.Errorf("after expiry: checked=%v correct=%v", s.Checked, s.Correct)
	}
	if s.Retry() {
		t.Error("a failed typing attempt must not be retryable in place")
	}
	if s.Advance() {
		t.Error("Advance must stay unreachable with correctness=false")
	}

	// A second report must not flip the recorded outcome.
	s.ReportTyping(true)
	if s.Correct {
		t.Error("late typing callbacks must not overwrite the outcome")
	}
}

func TestResolveCheck_DiscardedAfterLeavingTaskStage(t *testing.T) {
	s := New(twoTheoryOneTask())
	s.Next()
	s.Next()
	s.SelectAnswer("a")
	s.BeginCheck()

	// User backs into theory while the request is outstanding.
	s.InFlight = false
	s.Back()
	s.ResolveCheck(true, "")

	if s.Checked {
		t.Error("a result arriving after the stage changed must be discarded")
	}
}

func TestCompletion_FailureReopensLatch(t *testing.T) {
	s := New(&course.Lesson{ID: 53})
	if s.Stage != StageCompleted {
		t.Fatalf("Stage = %v, want completed", s.Stage)
	}

	if !s.BeginComplete() {
		t.Fatal("BeginComplete should succeed")
	}
	s.ResolveComplete(false)
	if !s.BeginComplete() {
		t.Error("a failed completion should permit a manual retry")
	}
}

func TestProgress(t *testing.T) {
	s := New(twoTheoryOneTask())
	if got := s.Progress(); got <= 0 || got > 0.5 {
		t.Errorf("theory step 0 progress = %v", got)
	}
	s.Next()
	s.Next()
	s.SelectAnswer("b")
	s.BeginCheck()
	s.ResolveCheck(true, "")
	if got := s.Progress(); got != 1 {
		t.Errorf("checked-correct final task progress = %v, want 1", got)
	}
}
