package lesson

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/skrblv/bilimGO/internal/auth"
	"github.com/skrblv/bilimGO/internal/course"
	"github.com/skrblv/bilimGO/internal/screen"
	sess "github.com/skrblv/bilimGO/internal/session"
)

var errFake = errors.New("boom")

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testLesson() *course.Lesson {
	return &course.Lesson{
		ID:    10,
		Title: "Variables",
		Theory: []course.ContentBlock{
			{Type: course.BlockText, Content: "A variable names a value."},
			{Type: course.BlockCode, Content: "x = 5", Language: "python"},
		},
		XPReward: 10,
		Tasks: []course.Task{
			{
				ID:       100,
				Type:     course.TypeTrueFalse,
				Question: "Variables can be reassigned.",
				Options:  json.RawMessage(`{"1": "True", "2": "False"}`),
			},
			{
				ID:       101,
				Type:     course.TypeTextInput,
				Question: "Name the assignment operator.",
			},
		},
	}
}

func testLessonScreen(l *course.Lesson) *LessonScreen {
	// the client is never dialed: tests feed result messages directly
	return New(nil, auth.New(nil), zap.NewNop(), 1, l, nil)
}

func TestLessonScreen_Title(t *testing.T) {
	s := testLessonScreen(testLesson())
	if s.Title() != "Variables" {
		t.Errorf("Title = %q, want %q", s.Title(), "Variables")
	}

	c := New(nil, auth.New(nil), zap.NewNop(), 1, testLesson(), sess.StartChallenge(5, time.Now()))
	if c.Title() != "Challenge: Variables" {
		t.Errorf("challenge Title = %q", c.Title())
	}
}

func TestLessonScreen_TheoryNavigation(t *testing.T) {
	s := testLessonScreen(testLesson())
	if s.state.Stage != sess.StageTheory {
		t.Fatalf("Stage = %v, want theory", s.state.Stage)
	}

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	if s.state.TheoryStep != 1 {
		t.Errorf("TheoryStep = %d, want 1", s.state.TheoryStep)
	}

	// stepping back
	scr, _ = scr.Update(specialKey(tea.KeyLeft))
	if s.state.TheoryStep != 0 {
		t.Errorf("TheoryStep after back = %d, want 0", s.state.TheoryStep)
	}

	// walk past the last block into the task stage
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	if s.state.Stage != sess.StageTask {
		t.Fatalf("Stage = %v, want task", s.state.Stage)
	}
	if s.widget == nil {
		t.Error("expected a mounted widget on entering the task stage")
	}
	_ = scr
}

func enterTaskStage(t *testing.T, s *LessonScreen) {
	t.Helper()
	var scr screen.Screen = s
	for s.state.Stage == sess.StageTheory {
		scr, _ = scr.Update(specialKey(tea.KeyEnter))
	}
	if s.state.Stage != sess.StageTask {
		t.Fatalf("Stage = %v, want task", s.state.Stage)
	}
}

func TestLessonScreen_CheckFlow(t *testing.T) {
	s := testLessonScreen(testLesson())
	enterTaskStage(t, s)

	// choose the first option, then check
	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyDown))
	if s.state.Answer == "" {
		t.Fatal("expected an answer after selecting an option")
	}
	scr, cmd := scr.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a check command")
	}
	if !s.state.InFlight {
		t.Fatal("expected the check to be in flight")
	}

	// second enter while in flight must not start another check
	if _, dup := scr.Update(specialKey(tea.KeyEnter)); dup != nil {
		t.Error("expected no command while a check is in flight")
	}

	scr, _ = scr.Update(checkResultMsg{TaskID: 100, Correct: true})
	if !s.state.Checked || !s.state.Correct {
		t.Fatalf("Checked/Correct = %v/%v, want true/true", s.state.Checked, s.state.Correct)
	}

	// enter advances to the next task with a fresh widget
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	if s.state.TaskIndex != 1 {
		t.Errorf("TaskIndex = %d, want 1", s.state.TaskIndex)
	}
	if s.state.Checked {
		t.Error("expected transient state reset on advance")
	}
	_ = scr
}

func TestLessonScreen_WrongAnswerRetry(t *testing.T) {
	s := testLessonScreen(testLesson())
	enterTaskStage(t, s)

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyDown))
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	scr, _ = scr.Update(checkResultMsg{TaskID: 100, Correct: false, Revealed: "True"})

	if !s.state.Checked || s.state.Correct {
		t.Fatalf("Checked/Correct = %v/%v, want true/false", s.state.Checked, s.state.Correct)
	}
	if s.state.RevealedAnswer != "True" {
		t.Errorf("RevealedAnswer = %q", s.state.RevealedAnswer)
	}

	// enter retries the same task instead of advancing
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	if s.state.TaskIndex != 0 {
		t.Errorf("TaskIndex = %d, want 0", s.state.TaskIndex)
	}
	if s.state.Checked {
		t.Error("expected a fresh attempt after retry")
	}
	_ = scr
}

func TestLessonScreen_StaleCheckResult(t *testing.T) {
	s := testLessonScreen(testLesson())
	enterTaskStage(t, s)

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyDown))
	scr, _ = scr.Update(specialKey(tea.KeyEnter))

	// verdict for a different task releases the latch without grading
	scr, _ = scr.Update(checkResultMsg{TaskID: 999, Correct: true})
	if s.state.InFlight {
		t.Error("expected the in-flight latch released")
	}
	if s.state.Checked {
		t.Error("expected the current task left ungraded")
	}
	_ = scr
}

func TestLessonScreen_CheckErrorBanner(t *testing.T) {
	s := testLessonScreen(testLesson())
	enterTaskStage(t, s)

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyDown))
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	scr, _ = scr.Update(checkResultMsg{TaskID: 100, Err: errFake})

	if s.state.Checked {
		t.Error("expected no verdict after a failed check call")
	}
	if s.state.InFlight {
		t.Error("expected the check latch released")
	}
	if s.banner == "" {
		t.Error("expected an error banner")
	}

	// the learner can immediately check again
	if _, cmd := scr.Update(specialKey(tea.KeyEnter)); cmd == nil {
		t.Error("expected a retryable check")
	}
}

func TestLessonScreen_QuitConfirm(t *testing.T) {
	s := testLessonScreen(testLesson())

	handled, _ := s.HandleEsc()
	if !handled || !s.quitConfirm {
		t.Fatal("expected quit confirmation after Esc")
	}

	var scr screen.Screen = s
	scr, _ = scr.Update(keyPress('n'))
	if s.quitConfirm {
		t.Error("expected quit confirmation dismissed by n")
	}

	s.HandleEsc()
	_, cmd := scr.Update(keyPress('y'))
	if cmd == nil {
		t.Error("expected a pop command after confirming")
	}
}

func TestLessonScreen_CompletionRetry(t *testing.T) {
	s := testLessonScreen(testLesson())
	s.state.Stage = sess.StageCompleted
	s.state.BeginComplete()

	var scr screen.Screen = s
	scr, _ = scr.Update(completeMsg{Err: errFake})
	if s.state.CompletionSent {
		t.Error("expected the completion latch reopened on failure")
	}
	if s.banner == "" {
		t.Error("expected a retry banner")
	}

	// enter retries the completion call
	_, cmd := scr.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Error("expected a retry command")
	}
	if !s.state.InFlight {
		t.Error("expected the retry to be in flight")
	}
}

func TestLessonScreen_ChallengeSubmitRetry(t *testing.T) {
	run := sess.StartChallenge(5, time.Now().Add(-40*time.Second))
	s := New(nil, auth.New(nil), zap.NewNop(), 1, testLesson(), run)
	s.state.Stage = sess.StageCompleted
	s.state.BeginComplete()
	s.state.ResolveComplete(true)

	if cmd := s.submitChallengeResult(); cmd == nil {
		t.Fatal("expected a submit command")
	}
	elapsed := run.ElapsedSeconds(time.Now())

	var scr screen.Screen = s
	scr, _ = scr.Update(challengeSubmitMsg{Err: errFake})
	if run.Submitted() {
		t.Error("expected the submit claim released on failure")
	}
	if s.banner == "" {
		t.Error("expected a retry banner")
	}

	// enter resubmits the same frozen time instead of leaving
	_, cmd := scr.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Error("expected a resubmit command")
	}
	if !run.Submitted() {
		t.Error("expected the claim taken again")
	}
	if got := run.ElapsedSeconds(time.Now().Add(time.Minute)); got != elapsed {
		t.Errorf("elapsed after retry = %d, want %d", got, elapsed)
	}
}

func TestLessonScreen_View(t *testing.T) {
	s := testLessonScreen(testLesson())
	if s.View(80, 24) == "" {
		t.Error("expected non-empty theory view")
	}

	enterTaskStage(t, s)
	if s.View(80, 24) == "" {
		t.Error("expected non-empty task view")
	}

	s.HandleEsc()
	if s.View(80, 24) == "" {
		t.Error("expected non-empty quit confirmation view")
	}
}
