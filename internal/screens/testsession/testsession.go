// Package testsession runs a course's final certification test: a batch
// of questions answered in order, buffered locally and graded server-side
// in one submission.
package testsession

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/skrblv/bilimGO/internal/api"
	"github.com/skrblv/bilimGO/internal/router"
	"github.com/skrblv/bilimGO/internal/screen"
	sess "github.com/skrblv/bilimGO/internal/session"
	"github.com/skrblv/bilimGO/internal/tasks"
	"github.com/skrblv/bilimGO/internal/ui/layout"
	"github.com/skrblv/bilimGO/internal/ui/theme"
)

type phase int

const (
	phaseLoading phase = iota
	phaseBriefing
	phaseQuestions
	phaseResult
)

type detailsMsg struct {
	Details *api.TestDetails
	Err     error
}

type startedMsg struct {
	Resp *api.StartTestResponse
	Err  error
}

type resultMsg struct {
	Result *api.TestResult
	Err    error
}

// TestScreen implements screen.Screen for a test attempt.
type TestScreen struct {
	client *api.Client
	log    *zap.Logger

	courseID    int
	courseTitle string

	phase   phase
	details *api.TestDetails
	state   *sess.TestSession
	widget  tasks.Widget
	result  *api.TestResult
	banner  string
}

var _ screen.Screen = (*TestScreen)(nil)
var _ screen.KeyHintProvider = (*TestScreen)(nil)

// New creates the test screen; the briefing is fetched by Init.
func New(client *api.Client, log *zap.Logger, courseID int, courseTitle string) *TestScreen {
	return &TestScreen{
		client:      client,
		log:         log,
		courseID:    courseID,
		courseTitle: courseTitle,
	}
}

func (s *TestScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		d, err := s.client.TestDetails(ctx, s.courseID)
		return detailsMsg{Details: d, Err: err}
	}
}

func (s *TestScreen) Title() string {
	return s.courseTitle + " — Final Test"
}

func (s *TestScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseBriefing:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	case phaseQuestions:
		if s.state != nil && s.state.OnLast() {
			return []layout.KeyHint{{Key: "Ctrl+D", Description: "Finish test"}}
		}
		return []layout.KeyHint{{Key: "Ctrl+N", Description: "Next question"}}
	case phaseResult:
		return []layout.KeyHint{{Key: "Enter", Description: "Back to course"}}
	}
	return nil
}

func (s *TestScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case detailsMsg:
		if msg.Err != nil {
			s.log.Warn("test details unavailable",
				zap.Int("course_id", s.courseID), zap.Error(msg.Err))
			s.banner = "Could not load the test. Go back and try again."
			return s, nil
		}
		s.details = msg.Details
		s.phase = phaseBriefing
		return s, nil

	case startedMsg:
		return s.handleStarted(msg)

	case resultMsg:
		return s.handleResult(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.widget != nil && s.phase == phaseQuestions {
		var cmd tea.Cmd
		s.widget, cmd = s.widget.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *TestScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.phase {
	case phaseBriefing:
		if key == "enter" {
			return s, s.startTest()
		}

	case phaseQuestions:
		switch key {
		case "ctrl+n":
			s.stashAnswer()
			if s.state.CanAdvance() && !s.state.OnLast() && s.state.Next() {
				return s, s.mountWidget()
			}
			return s, nil
		case "ctrl+d":
			s.stashAnswer()
			if s.state.OnLast() && s.state.CanAdvance() {
				return s, s.submit()
			}
			return s, nil
		}
		if s.widget != nil {
			var cmd tea.Cmd
			s.widget, cmd = s.widget.Update(msg)
			s.stashAnswer()
			return s, cmd
		}

	case phaseResult:
		if key == "enter" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *TestScreen) startTest() tea.Cmd {
	s.banner = ""
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		resp, err := s.client.StartTest(ctx, s.courseID)
		return startedMsg{Resp: resp, Err: err}
	}
}

func (s *TestScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.log.Warn("test start failed",
			zap.Int("course_id", s.courseID), zap.Error(msg.Err))
		s.banner = "Could not start the test. Press Enter to retry."
		return s, nil
	}
	if len(msg.Resp.Questions) == 0 {
		s.banner = "This test has no questions yet."
		return s, nil
	}

	s.log.Info("test attempt started",
		zap.Int("attempt_id", msg.Resp.AttemptID),
		zap.Int("questions", len(msg.Resp.Questions)))
	s.state = sess.NewTest(msg.Resp.AttemptID, msg.Resp.Questions)
	s.phase = phaseQuestions
	return s, s.mountWidget()
}

func (s *TestScreen) mountWidget() tea.Cmd {
	q := s.state.Current()
	if q == nil {
		return nil
	}
	w, err := tasks.ForTask(q)
	if err != nil {
		// an unusable question is skipped with a blank-ish answer the
		// server will grade as wrong
		s.log.Warn("test question payload rejected",
			zap.Int("task_id", q.ID), zap.Error(err))
		s.state.SetAnswer("-")
		if !s.state.OnLast() && s.state.Next() {
			return s.mountWidget()
		}
		s.widget = nil
		return nil
	}
	s.widget = w
	return w.Init()
}

func (s *TestScreen) stashAnswer() {
	if s.widget != nil {
		s.state.SetAnswer(s.widget.Value())
	}
}

func (s *TestScreen) submit() tea.Cmd {
	if !s.state.BeginSubmit() {
		return nil
	}
	s.banner = ""
	attemptID := s.state.AttemptID
	payload := make([]api.TestAnswer, 0, len(s.state.Questions))
	for _, a := range s.state.Payload() {
		payload = append(payload, api.TestAnswer{QuestionID: a.QuestionID, Answer: a.Answer})
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res, err := s.client.SubmitTest(ctx, attemptID, payload)
		return resultMsg{Result: res, Err: err}
	}
}

func (s *TestScreen) handleResult(msg resultMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.state.ResolveSubmit(false)
		s.log.Warn("test submit failed",
			zap.Int("attempt_id", s.state.AttemptID), zap.Error(msg.Err))
		s.banner = "Could not submit your answers. Press Ctrl+D to retry."
		return s, nil
	}
	s.state.ResolveSubmit(true)
	s.result = msg.Result
	s.phase = phaseResult
	s.log.Info("test graded",
		zap.Int("attempt_id", s.state.AttemptID),
		zap.Int("score", msg.Result.Score),
		zap.Bool("passed", msg.Result.IsPassed))
	return s, nil
}

func (s *TestScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	switch s.phase {
	case phaseLoading:
		b.WriteString(theme.Subtitle.Width(width).Render("Loading test..."))

	case phaseBriefing:
		b.WriteString(s.renderBriefing(width))

	case phaseQuestions:
		b.WriteString(s.renderQuestion(width))

	case phaseResult:
		b.WriteString(s.renderResult(width))
	}

	if s.banner != "" {
		b.WriteString("\n")
		b.WriteString(layout.RenderBanner(s.banner, width))
	}
	return b.String()
}

func (s *TestScreen) renderBriefing(width int) string {
	if s.details == nil {
		return ""
	}
	lines := []string{
		theme.Body.Bold(true).Render(s.details.Title),
		"",
		theme.Body.Render(s.details.Description),
		"",
		theme.Hint.Render(fmt.Sprintf("%d questions · pass with %d correct",
			s.details.NumberOfQuestions, s.details.RequiredCorrectAnswers)),
		"",
		theme.Subtitle.Render("Answers are graded together at the end; you cannot go back."),
	}
	card := theme.Card.Width(min(60, width-4)).Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(card)
}

func (s *TestScreen) renderQuestion(width int) string {
	q := s.state.Current()
	if q == nil || s.widget == nil {
		return theme.Subtitle.Width(width).Render("Preparing question...")
	}

	var b strings.Builder
	b.WriteString(theme.Hint.Render(fmt.Sprintf(
		"  Question %d/%d", s.state.Index+1, len(s.state.Questions))))
	b.WriteString("\n\n")
	b.WriteString("  " + theme.Body.Bold(true).Width(width-4).Render(q.Question))
	b.WriteString("\n\n")
	for _, line := range strings.Split(s.widget.View(width-4), "\n") {
		b.WriteString("  " + line + "\n")
	}

	if !s.state.CanAdvance() {
		b.WriteString("\n  " + theme.Hint.Render("Answer to move on."))
	}
	return b.String()
}

func (s *TestScreen) renderResult(width int) string {
	if s.result == nil {
		return ""
	}
	verdict := theme.Incorrect.Render("✗ Not passed")
	if s.result.IsPassed {
		verdict = theme.Correct.Render("🎉 Passed!")
	}
	lines := []string{
		verdict,
		"",
		theme.Body.Render(fmt.Sprintf("Score: %d%%", s.result.Score)),
	}
	if !s.result.IsPassed {
		lines = append(lines, "", theme.Hint.Render("Review the lessons and try again."))
	}
	card := theme.Card.Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(card)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
