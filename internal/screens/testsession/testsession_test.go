package testsession

import (
	"encoding/json"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/skrblv/bilimGO/internal/api"
	"github.com/skrblv/bilimGO/internal/course"
	"github.com/skrblv/bilimGO/internal/screen"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func ctrlKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

func testQuestions() []course.Task {
	return []course.Task{
		{
			ID:       1,
			Type:     course.TypeTrueFalse,
			Question: "Go has classes.",
			Options:  json.RawMessage(`{"1": "True", "2": "False"}`),
		},
		{
			ID:       2,
			Type:     course.TypeTextInput,
			Question: "Name the assignment operator.",
		},
	}
}

func startedScreen(t *testing.T) *TestScreen {
	t.Helper()
	s := New(nil, zap.NewNop(), 3, "Python Basics")
	var scr screen.Screen = s
	scr, _ = scr.Update(startedMsg{Resp: &api.StartTestResponse{
		AttemptID: 42,
		Questions: testQuestions(),
	}})
	_ = scr
	if s.phase != phaseQuestions {
		t.Fatalf("phase = %v, want questions", s.phase)
	}
	if s.widget == nil {
		t.Fatal("expected a widget for the first question")
	}
	return s
}

func TestTestScreen_Title(t *testing.T) {
	s := New(nil, zap.NewNop(), 3, "Python Basics")
	if s.Title() != "Python Basics — Final Test" {
		t.Errorf("Title = %q", s.Title())
	}
}

func TestTestScreen_Briefing(t *testing.T) {
	s := New(nil, zap.NewNop(), 3, "Python Basics")
	var scr screen.Screen = s
	scr, _ = scr.Update(detailsMsg{Details: &api.TestDetails{
		Title:                  "Final Test",
		Description:            "Everything so far.",
		NumberOfQuestions:      10,
		RequiredCorrectAnswers: 7,
	}})
	if s.phase != phaseBriefing {
		t.Fatalf("phase = %v, want briefing", s.phase)
	}
	if s.View(80, 24) == "" {
		t.Error("expected non-empty briefing view")
	}

	// enter starts the attempt
	_, cmd := scr.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Error("expected a start command")
	}
}

func TestTestScreen_AnswerAndAdvance(t *testing.T) {
	s := startedScreen(t)

	var scr screen.Screen = s

	// advancing with no answer is refused
	scr, _ = scr.Update(ctrlKey('n'))
	if s.state.Index != 0 {
		t.Fatalf("Index = %d, want 0 without an answer", s.state.Index)
	}

	// select an option, then advance
	scr, _ = scr.Update(specialKey(tea.KeyDown))
	if s.state.CurrentAnswer() == "" {
		t.Fatal("expected the answer buffered after selection")
	}
	scr, _ = scr.Update(ctrlKey('n'))
	if s.state.Index != 1 {
		t.Fatalf("Index = %d, want 1", s.state.Index)
	}
	if s.widget == nil {
		t.Fatal("expected a widget for the second question")
	}
	_ = scr
}

func TestTestScreen_SubmitAndRetry(t *testing.T) {
	s := startedScreen(t)

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyDown))
	scr, _ = scr.Update(ctrlKey('n'))
	scr, _ = scr.Update(keyPress('='))

	// finish on the last question
	scr, cmd := scr.Update(ctrlKey('d'))
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	if !s.state.InFlight {
		t.Fatal("expected the submission in flight")
	}

	// a second finish while in flight is a no-op
	if _, dup := scr.Update(ctrlKey('d')); dup != nil {
		t.Error("expected no duplicate submission")
	}

	// failed submit reopens the latch
	scr, _ = scr.Update(resultMsg{Err: errors.New("boom")})
	if s.state.Submitted {
		t.Error("expected the session not latched after a failed submit")
	}
	if s.banner == "" {
		t.Error("expected a retry banner")
	}
	if _, retry := scr.Update(ctrlKey('d')); retry == nil {
		t.Error("expected the submission retryable")
	}

	// graded result moves to the report
	scr, _ = scr.Update(resultMsg{Result: &api.TestResult{Score: 80, IsPassed: true}})
	if s.phase != phaseResult {
		t.Fatalf("phase = %v, want result", s.phase)
	}
	if s.View(80, 24) == "" {
		t.Error("expected non-empty result view")
	}

	// enter pops back to the course
	if _, pop := scr.Update(specialKey(tea.KeyEnter)); pop == nil {
		t.Error("expected a pop command from the report")
	}
}

func TestTestScreen_EmptyQuestionSet(t *testing.T) {
	s := New(nil, zap.NewNop(), 3, "Python Basics")
	var scr screen.Screen = s
	scr, _ = scr.Update(startedMsg{Resp: &api.StartTestResponse{AttemptID: 1}})
	if s.phase == phaseQuestions {
		t.Error("expected the question phase refused for an empty set")
	}
	if s.banner == "" {
		t.Error("expected an explanation banner")
	}
	_ = scr
}
