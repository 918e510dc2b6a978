// Package challenges lists head-to-head lesson races and coordinates their
// lifecycle: accepting or declining incoming ones and launching the local
// timed run for challenges that still need it.
package challenges

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/skrblv/bilimGO/internal/api"
	"github.com/skrblv/bilimGO/internal/auth"
	"github.com/skrblv/bilimGO/internal/course"
	"github.com/skrblv/bilimGO/internal/router"
	"github.com/skrblv/bilimGO/internal/screen"
	"github.com/skrblv/bilimGO/internal/screens/lesson"
	sess "github.com/skrblv/bilimGO/internal/session"
	"github.com/skrblv/bilimGO/internal/ui/layout"
	"github.com/skrblv/bilimGO/internal/ui/theme"
)

type listMsg struct {
	Challenges []api.Challenge
	Err        error
}

type answeredMsg struct {
	Challenge *api.Challenge
	Err       error
}

type runReadyMsg struct {
	Challenge api.Challenge
	CourseID  int
	Lesson    *course.Lesson
	Err       error
}

// ChallengesScreen implements screen.Screen for the challenge inbox.
type ChallengesScreen struct {
	client *api.Client
	auth   *auth.Store
	log    *zap.Logger

	challenges []api.Challenge
	cursor     int
	loading    bool
	launching  bool
	banner     string
}

var _ screen.Screen = (*ChallengesScreen)(nil)
var _ screen.KeyHintProvider = (*ChallengesScreen)(nil)

func New(client *api.Client, authStore *auth.Store, log *zap.Logger) *ChallengesScreen {
	return &ChallengesScreen{
		client:  client,
		auth:    authStore,
		log:     log,
		loading: true,
	}
}

func (s *ChallengesScreen) Init() tea.Cmd {
	return s.load()
}

func (s *ChallengesScreen) Title() string { return "Challenges" }

func (s *ChallengesScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑/↓", Description: "Navigate"},
		{Key: "r", Description: "Refresh"},
	}
	if ch := s.selected(); ch != nil {
		switch {
		case s.isIncomingPending(*ch):
			hints = append(hints,
				layout.KeyHint{Key: "a", Description: "Accept"},
				layout.KeyHint{Key: "d", Description: "Decline"})
		case s.needsMyRun(*ch):
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Race!"})
		}
	}
	return hints
}

func (s *ChallengesScreen) load() tea.Cmd {
	s.loading = true
	s.banner = ""
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		list, err := s.client.Challenges(ctx)
		return listMsg{Challenges: list, Err: err}
	}
}

func (s *ChallengesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case listMsg:
		s.loading = false
		if msg.Err != nil {
			s.log.Warn("challenge list unavailable", zap.Error(msg.Err))
			s.banner = "Could not load challenges. Press r to retry."
			return s, nil
		}
		s.challenges = msg.Challenges
		if s.cursor >= len(s.challenges) {
			s.cursor = max(0, len(s.challenges)-1)
		}
		return s, nil

	case answeredMsg:
		if msg.Err != nil {
			s.log.Warn("challenge answer failed", zap.Error(msg.Err))
			s.banner = "Could not update the challenge. Press r to refresh."
			return s, nil
		}
		s.log.Info("challenge answered",
			zap.Int("challenge_id", msg.Challenge.ID),
			zap.String("status", msg.Challenge.Status))
		return s, s.load()

	case runReadyMsg:
		return s.handleRunReady(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *ChallengesScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.challenges)-1 {
			s.cursor++
		}
	case "r":
		return s, s.load()
	case "a":
		if ch := s.selected(); ch != nil && s.isIncomingPending(*ch) {
			return s, s.answer(ch.ID, s.client.AcceptChallenge)
		}
	case "d":
		if ch := s.selected(); ch != nil && s.isIncomingPending(*ch) {
			return s, s.answer(ch.ID, s.client.DeclineChallenge)
		}
	case "enter":
		if ch := s.selected(); ch != nil && s.needsMyRun(*ch) && !s.launching {
			s.launching = true
			s.banner = ""
			return s, s.prepareRun(*ch)
		}
	}
	return s, nil
}

func (s *ChallengesScreen) answer(challengeID int,
	call func(context.Context, int) (*api.Challenge, error)) tea.Cmd {
	s.banner = ""
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		ch, err := call(ctx, challengeID)
		return answeredMsg{Challenge: ch, Err: err}
	}
}

// prepareRun locates the challenged lesson. Challenges carry only a lesson
// ID, so the course catalog is scanned until a detail payload contains it.
func (s *ChallengesScreen) prepareRun(ch api.Challenge) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		courses, err := s.client.Courses(ctx)
		if err != nil {
			return runReadyMsg{Challenge: ch, Err: err}
		}
		for _, c := range courses {
			detail, err := s.client.CourseDetail(ctx, c.ID)
			if err != nil {
				s.log.Warn("course detail skipped during challenge lookup",
					zap.Int("course_id", c.ID), zap.Error(err))
				continue
			}
			if l := detail.FindLesson(ch.LessonID); l != nil {
				return runReadyMsg{Challenge: ch, CourseID: c.ID, Lesson: l}
			}
		}
		return runReadyMsg{Challenge: ch,
			Err: fmt.Errorf("lesson %d not found in any course", ch.LessonID)}
	}
}

func (s *ChallengesScreen) handleRunReady(msg runReadyMsg) (screen.Screen, tea.Cmd) {
	s.launching = false
	if msg.Err != nil {
		s.log.Warn("challenge run unavailable",
			zap.Int("challenge_id", msg.Challenge.ID), zap.Error(msg.Err))
		s.banner = "Could not open the challenged lesson."
		return s, nil
	}
	s.log.Info("challenge run starting",
		zap.Int("challenge_id", msg.Challenge.ID),
		zap.Int("lesson_id", msg.Lesson.ID))
	run := sess.StartChallenge(msg.Challenge.ID, time.Now())
	return s, func() tea.Msg {
		return router.PushScreenMsg{
			Screen: lesson.New(s.client, s.auth, s.log, msg.CourseID, msg.Lesson, run),
		}
	}
}

func (s *ChallengesScreen) selected() *api.Challenge {
	if s.cursor < 0 || s.cursor >= len(s.challenges) {
		return nil
	}
	return &s.challenges[s.cursor]
}

func (s *ChallengesScreen) isIncomingPending(ch api.Challenge) bool {
	u := s.auth.User()
	return u != nil && ch.Status == api.ChallengePending && ch.Receiver.ID == u.ID
}

// needsMyRun reports whether the user's side of an accepted challenge has
// no recorded time yet.
func (s *ChallengesScreen) needsMyRun(ch api.Challenge) bool {
	u := s.auth.User()
	if u == nil {
		return false
	}
	if ch.Status != api.ChallengeAccepted && ch.Status != api.ChallengeInProgress {
		return false
	}
	if ch.Sender.ID == u.ID {
		return ch.SenderTime == nil
	}
	if ch.Receiver.ID == u.ID {
		return ch.ReceiverTime == nil
	}
	return false
}

func (s *ChallengesScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case s.loading:
		b.WriteString(theme.Subtitle.Width(width).Render("Loading challenges..."))
	case s.launching:
		b.WriteString(theme.Subtitle.Width(width).Render("Opening the challenged lesson..."))
	case len(s.challenges) == 0:
		b.WriteString(theme.Subtitle.Width(width).Render("No challenges yet."))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Width(width).Render("Friends can challenge you to race through a lesson."))
	default:
		for i, ch := range s.challenges {
			b.WriteString(s.renderRow(ch, i == s.cursor, width))
			b.WriteString("\n")
		}
	}

	if s.banner != "" {
		b.WriteString("\n")
		b.WriteString(layout.RenderBanner(s.banner, width))
	}
	return b.String()
}

func (s *ChallengesScreen) renderRow(ch api.Challenge, selected bool, width int) string {
	u := s.auth.User()

	opponent := ch.Sender.Username
	if u != nil && ch.Sender.ID == u.ID {
		opponent = ch.Receiver.Username
	}

	line := fmt.Sprintf("⚔  %s · vs %s · %s", ch.LessonTitle, opponent, s.describe(ch, u))

	style := theme.Unselected
	if selected {
		style = theme.Selected
		line = "▸ " + line
	} else {
		line = "  " + line
	}
	return style.Width(width - 2).Render(line)
}

func (s *ChallengesScreen) describe(ch api.Challenge, u *api.User) string {
	switch ch.Status {
	case api.ChallengePending:
		if u != nil && ch.Receiver.ID == u.ID {
			return "incoming — a accept / d decline"
		}
		return "waiting for opponent to accept"
	case api.ChallengeDeclined:
		return "declined"
	case api.ChallengeAccepted, api.ChallengeInProgress:
		if s.needsMyRun(ch) {
			return "your turn — Enter to race"
		}
		return "waiting for opponent's run"
	case api.ChallengeCompleted:
		return s.describeResult(ch, u)
	}
	return strings.ToLower(ch.Status)
}

func (s *ChallengesScreen) describeResult(ch api.Challenge, u *api.User) string {
	if ch.WinnerID == nil {
		return "finished — draw"
	}
	mine, theirs := ch.SenderTime, ch.ReceiverTime
	if u != nil && ch.Receiver.ID == u.ID {
		mine, theirs = theirs, mine
	}
	verdict := "you lost"
	if u != nil && *ch.WinnerID == u.ID {
		verdict = "you won! 🏆"
	}
	if mine != nil && theirs != nil {
		return fmt.Sprintf("%s (%ds vs %ds)", verdict, *mine, *theirs)
	}
	return verdict
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
