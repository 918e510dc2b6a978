// Package lesson is the lesson player: the theory walkthrough, the graded
// task loop and the completion report. In challenge mode the same screen
// races the clock and submits the elapsed time when the lesson is done.
package lesson

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/skrblv/bilimGO/internal/api"
	"github.com/skrblv/bilimGO/internal/auth"
	"github.com/skrblv/bilimGO/internal/course"
	"github.com/skrblv/bilimGO/internal/router"
	"github.com/skrblv/bilimGO/internal/screen"
	sess "github.com/skrblv/bilimGO/internal/session"
	"github.com/skrblv/bilimGO/internal/tasks"
	"github.com/skrblv/bilimGO/internal/ui/layout"
)

// LessonScreen implements screen.Screen for one lesson attempt.
type LessonScreen struct {
	client *api.Client
	auth   *auth.Store
	log    *zap.Logger

	courseID  int
	state     *sess.Session
	challenge *sess.ChallengeRun

	widget      tasks.Widget
	completion  *api.CompletionResult
	quitConfirm bool
	refetched   bool // one refetch per attempt before giving up
	banner      string
	fatal       string // unrecoverable; any key pops the screen
}

var _ screen.Screen = (*LessonScreen)(nil)
var _ screen.KeyHintProvider = (*LessonScreen)(nil)
var _ screen.EscHandler = (*LessonScreen)(nil)

// New creates the player for a lesson the caller already fetched. A
// non-nil challenge puts the screen into race mode: the clock starts now
// and the elapsed time is reported on completion.
func New(client *api.Client, authStore *auth.Store, log *zap.Logger, courseID int, l *course.Lesson, challenge *sess.ChallengeRun) *LessonScreen {
	return &LessonScreen{
		client:    client,
		auth:      authStore,
		log:       log,
		courseID:  courseID,
		state:     sess.New(l),
		challenge: challenge,
	}
}

func (s *LessonScreen) Init() tea.Cmd {
	s.log.Info("lesson started",
		zap.Int("lesson_id", s.state.Lesson.ID),
		zap.Bool("challenge", s.challenge != nil))

	var cmds []tea.Cmd
	if s.state.Stage == sess.StageTask {
		cmds = append(cmds, s.mountWidget())
	}
	if s.state.Stage == sess.StageCompleted {
		// degenerate lesson with no content at all
		cmds = append(cmds, s.completeLesson())
	}
	if s.challenge != nil {
		cmds = append(cmds, tickCmd())
	}
	return tea.Batch(cmds...)
}

func (s *LessonScreen) Title() string {
	if s.challenge != nil {
		return "Challenge: " + s.state.Lesson.Title
	}
	return s.state.Lesson.Title
}

func (s *LessonScreen) KeyHints() []layout.KeyHint {
	if s.quitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave lesson"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.state.Stage {
	case sess.StageTheory:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "←", Description: "Back"},
			{Key: "Esc", Description: "Leave"},
		}
	case sess.StageTask:
		task := s.state.CurrentTask()
		if s.state.Checked {
			if s.state.Correct {
				return []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
			}
			if task != nil && task.Type == course.TypeSpeedTyping {
				return []layout.KeyHint{{Key: "Esc", Description: "Leave"}}
			}
			return []layout.KeyHint{{Key: "Enter", Description: "Try again"}}
		}
		hints := []layout.KeyHint{}
		if task != nil && task.Type == course.TypeCode {
			hints = append(hints, layout.KeyHint{Key: "Ctrl+S", Description: "Check"})
		} else if task != nil && task.Type != course.TypeSpeedTyping {
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Check"})
		}
		if task != nil && len(task.Hints) > 0 && s.state.HintText == "" {
			hints = append(hints, layout.KeyHint{Key: "Ctrl+T", Description: "Hint"})
		}
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Leave"})
		return hints
	case sess.StageCompleted:
		return []layout.KeyHint{{Key: "Enter", Description: "Back to course"}}
	}
	return nil
}

// HandleEsc intercepts Esc so an in-progress lesson asks before dropping
// progress. A finished lesson pops straight back.
func (s *LessonScreen) HandleEsc() (bool, tea.Cmd) {
	if s.fatal != "" || s.state.Stage == sess.StageCompleted {
		return false, nil
	}
	if s.quitConfirm {
		s.quitConfirm = false
		return true, nil
	}
	s.quitConfirm = true
	return true, nil
}

func (s *LessonScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case checkResultMsg:
		return s.handleCheckResult(msg)
	case hintMsg:
		return s.handleHint(msg)
	case completeMsg:
		return s.handleComplete(msg)
	case challengeSubmitMsg:
		return s.handleChallengeSubmit(msg)
	case refetchedMsg:
		return s.handleRefetched(msg)
	case timerTickMsg:
		return s.handleTick(time.Time(msg))
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	// bubbles widgets also react to non-key messages (cursor blink)
	if s.widget != nil && s.state.Stage == sess.StageTask && !s.state.Checked {
		var cmd tea.Cmd
		s.widget, cmd = s.widget.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *LessonScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.fatal != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.quitConfirm {
		switch key {
		case "y", "Y":
			s.log.Info("lesson abandoned", zap.Int("lesson_id", s.state.Lesson.ID))
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N":
			s.quitConfirm = false
		}
		return s, nil
	}

	switch s.state.Stage {
	case sess.StageTheory:
		return s.handleTheoryKey(key)
	case sess.StageTask:
		return s.handleTaskKey(msg, key)
	case sess.StageCompleted:
		return s.handleCompletedKey(key)
	}
	return s, nil
}

func (s *LessonScreen) handleTheoryKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "enter", "right", "l", "space":
		s.state.Next()
		if s.state.Stage == sess.StageTask {
			return s, s.mountWidget()
		}
		if s.state.Stage == sess.StageCompleted {
			return s, s.completeLesson()
		}
	case "left", "h", "backspace":
		s.state.Back()
	}
	return s, nil
}

func (s *LessonScreen) handleTaskKey(msg tea.KeyMsg, key string) (screen.Screen, tea.Cmd) {
	task := s.state.CurrentTask()
	if task == nil || s.widget == nil {
		return s, nil
	}

	// graded: the widget is locked, keys drive the retry/advance choice
	if s.state.Checked {
		if key != "enter" {
			return s, nil
		}
		if s.state.Correct {
			s.state.Advance()
			switch s.state.Stage {
			case sess.StageTask:
				return s, s.mountWidget()
			case sess.StageCompleted:
				return s, s.completeLesson()
			}
			return s, nil
		}
		if s.state.Retry() {
			return s, s.mountWidget()
		}
		return s, nil
	}

	switch key {
	case "enter":
		// enter is input for code and speed-typing widgets
		if task.Type != course.TypeCode && task.Type != course.TypeSpeedTyping {
			return s, s.checkAnswer(task)
		}
	case "ctrl+s":
		return s, s.checkAnswer(task)
	case "ctrl+t":
		return s, s.requestHint(task)
	case "ctrl+b":
		s.state.Back()
		if s.state.Stage == sess.StageTheory {
			s.widget = nil
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.widget, cmd = s.widget.Update(msg)
	s.state.SelectAnswer(s.widget.Value())

	// speed typing resolves on the keystroke that completes the text
	if ty, ok := s.widget.(*tasks.Typing); ok {
		if finished, success := ty.Done(); finished && success {
			s.resolveTyping(true)
		} else if ty.Started() {
			return s, tea.Batch(cmd, tickCmd())
		}
	}
	return s, cmd
}

func (s *LessonScreen) handleCompletedKey(key string) (screen.Screen, tea.Cmd) {
	if key != "enter" {
		return s, nil
	}
	if s.banner != "" {
		// a completion or challenge call failed; retry before leaving
		var cmds []tea.Cmd
		if !s.state.CompletionSent {
			cmds = append(cmds, s.completeLesson())
		} else if s.challenge != nil && !s.challenge.Submitted() {
			cmds = append(cmds, s.submitChallengeResult())
		}
		if len(cmds) > 0 {
			s.banner = ""
			return s, tea.Batch(cmds...)
		}
	}
	return s, func() tea.Msg { return router.PopScreenMsg{} }
}

// mountWidget builds the answer widget for the current task. A task whose
// payload cannot produce a widget triggers a refetch of the course, in
// case the local copy went stale.
func (s *LessonScreen) mountWidget() tea.Cmd {
	task := s.state.CurrentTask()
	if task == nil {
		return nil
	}
	w, err := tasks.ForTask(task)
	if err != nil {
		s.log.Warn("task payload rejected",
			zap.Int("task_id", task.ID), zap.Error(err))
		if s.refetched {
			s.fatal = "This lesson is unavailable. Press any key to go back."
			return nil
		}
		s.refetched = true
		return s.refetchLesson()
	}
	s.widget = w
	return w.Init()
}

func (s *LessonScreen) checkAnswer(task *course.Task) tea.Cmd {
	if !s.state.BeginCheck() {
		return nil
	}
	s.banner = ""
	taskID, answer := task.ID, s.state.Answer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res, err := s.client.CheckAnswer(ctx, taskID, answer)
		if err != nil {
			return checkResultMsg{TaskID: taskID, Err: err}
		}
		return checkResultMsg{TaskID: taskID, Correct: res.IsCorrect, Revealed: res.CorrectAnswer}
	}
}

func (s *LessonScreen) handleCheckResult(msg checkResultMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.state.AbortCheck()
		s.log.Warn("answer check failed", zap.Int("task_id", msg.TaskID), zap.Error(msg.Err))
		s.banner = "Could not check your answer. Try again."
		return s, nil
	}

	task := s.state.CurrentTask()
	if task == nil || task.ID != msg.TaskID {
		// stale verdict for a task we have left; drop it without grading
		s.state.AbortCheck()
		return s, nil
	}

	s.state.ResolveCheck(msg.Correct, msg.Revealed)
	if s.widget != nil {
		s.widget.Lock(msg.Correct, msg.Revealed)
	}
	return s, nil
}

func (s *LessonScreen) requestHint(task *course.Task) tea.Cmd {
	if len(task.Hints) == 0 || s.state.HintText != "" || s.state.InFlight {
		return nil
	}
	taskID := task.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res, err := s.client.RequestHint(ctx, taskID)
		if err != nil {
			return hintMsg{TaskID: taskID, Err: err}
		}
		return hintMsg{TaskID: taskID, Text: res.Hint.Text}
	}
}

func (s *LessonScreen) handleHint(msg hintMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.log.Warn("hint request failed", zap.Int("task_id", msg.TaskID), zap.Error(msg.Err))
		s.banner = "Hint unavailable right now."
		return s, nil
	}
	if task := s.state.CurrentTask(); task != nil && task.ID == msg.TaskID {
		s.state.ShowHint(msg.Text)
	}
	return s, nil
}

// resolveTyping reports the local speed-typing outcome into the session.
func (s *LessonScreen) resolveTyping(success bool) {
	s.state.SelectAnswer(s.widget.Value())
	s.state.ReportTyping(success)
	s.widget.Lock(success, "")
}

func (s *LessonScreen) handleTick(now time.Time) (screen.Screen, tea.Cmd) {
	var keepTicking bool

	if ty, ok := s.widget.(*tasks.Typing); ok && s.state.Stage == sess.StageTask && !s.state.Checked {
		if ty.Tick(now) {
			s.resolveTyping(false)
		} else if ty.Started() {
			keepTicking = true
		}
	}
	if s.challenge != nil && s.state.Stage != sess.StageCompleted {
		keepTicking = true
	}

	if keepTicking {
		return s, tickCmd()
	}
	return s, nil
}

// completeLesson issues the at-most-once completion call, and in
// challenge mode stops the race clock.
func (s *LessonScreen) completeLesson() tea.Cmd {
	if !s.state.BeginComplete() {
		return nil
	}
	lessonID := s.state.Lesson.ID

	var cmds []tea.Cmd
	cmds = append(cmds, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res, err := s.client.CompleteLesson(ctx, lessonID)
		return completeMsg{Result: res, Err: err}
	})

	if cmd := s.submitChallengeResult(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// submitChallengeResult claims the challenge submission and sends the
// frozen elapsed time. Returns nil outside challenge mode or while a
// submission is already claimed.
func (s *LessonScreen) submitChallengeResult() tea.Cmd {
	if s.challenge == nil || !s.challenge.ClaimSubmit(time.Now()) {
		return nil
	}
	elapsed := s.challenge.ElapsedSeconds(time.Now())
	challengeID := s.challenge.ChallengeID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		ch, err := s.client.SubmitChallengeResult(ctx, challengeID, elapsed)
		return challengeSubmitMsg{Challenge: ch, Err: err}
	}
}

func (s *LessonScreen) handleComplete(msg completeMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.state.ResolveComplete(false)
		s.log.Warn("lesson completion failed",
			zap.Int("lesson_id", s.state.Lesson.ID), zap.Error(msg.Err))
		s.banner = "Could not save your progress. Press Enter to retry."
		return s, nil
	}

	s.state.ResolveComplete(true)
	s.completion = msg.Result
	s.log.Info("lesson completed",
		zap.Int("lesson_id", s.state.Lesson.ID),
		zap.Int("xp_earned", msg.Result.XPEarned))

	lessonID := s.state.Lesson.ID
	return s, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = s.auth.AddCompletedLesson(ctx, lessonID)
		// pick up the new XP total and streak for the header
		if u, err := s.client.Me(ctx); err == nil {
			s.auth.SetUser(ctx, u)
		}
		return nil
	}
}

func (s *LessonScreen) handleChallengeSubmit(msg challengeSubmitMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.challenge.AbortSubmit()
		s.log.Warn("challenge result submit failed", zap.Error(msg.Err))
		s.banner = "Could not report your challenge time. Press Enter to retry."
		return s, nil
	}
	s.log.Info("challenge result submitted",
		zap.Int("challenge_id", msg.Challenge.ID),
		zap.String("status", msg.Challenge.Status))
	return s, nil
}

// refetchLesson re-pulls the course in case the cached copy diverged from
// the server, then swaps in the fresh lesson.
func (s *LessonScreen) refetchLesson() tea.Cmd {
	lessonID := s.state.Lesson.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		d, err := s.client.CourseDetail(ctx, s.courseID)
		if err != nil {
			return refetchedMsg{Err: err}
		}
		return refetchedMsg{Lesson: d.FindLesson(lessonID)}
	}
}

func (s *LessonScreen) handleRefetched(msg refetchedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil || msg.Lesson == nil {
		s.fatal = "This lesson is unavailable. Press any key to go back."
		return s, nil
	}
	s.state = sess.New(msg.Lesson)
	s.widget = nil
	if s.state.Stage == sess.StageTask {
		return s, s.mountWidget()
	}
	return s, nil
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
