// Package home is the dashboard: the course catalog, the challenge inbox
// entry point and the signed-in profile summary.
package home

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
	"github.com/skrblv/bilimGO/internal/screens/challenges"
	"github.com/skrblv/bilimGO/internal/screens/skilltree"
	"github.com/skrblv/bilimGO/internal/store"
	"github.com/skrblv/bilimGO/internal/ui/components"
	"github.com/skrblv/bilimGO/internal/ui/layout"
	"github.com/skrblv/bilimGO/internal/ui/theme"
)

// dashboardLoadedMsg delivers the catalog, the challenge inbox and the
// local activity feed.
type dashboardLoadedMsg struct {
	Courses    []course.Course
	Challenges []api.Challenge
	Recent     []store.ActivityEntry
	Err        error
}

// loggedOutMsg confirms the session wipe finished.
type loggedOutMsg struct{}

// HomeScreen is the landing screen after sign-in.
type HomeScreen struct {
	client *api.Client
	auth   *auth.Store
	db     *store.Store
	log    *zap.Logger

	menu    components.Menu
	courses []course.Course
	pending int // challenges waiting on the user
	recent  []store.ActivityEntry
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates the dashboard. Content is fetched by Init.
func New(client *api.Client, authStore *auth.Store, db *store.Store, log *zap.Logger) *HomeScreen {
	return &HomeScreen{
		client: client,
		auth:   authStore,
		db:     db,
		log:    log,
	}
}

func (s *HomeScreen) Init() tea.Cmd {
	return s.loadDashboard()
}

func (s *HomeScreen) loadDashboard() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		courses, err := s.client.Courses(ctx)
		if err != nil {
			return dashboardLoadedMsg{Err: err}
		}
		// the challenge inbox is best-effort: the catalog alone is a
		// usable dashboard
		chs, err := s.client.Challenges(ctx)
		if err != nil {
			s.log.Warn("challenge inbox unavailable", zap.Error(err))
			chs = nil
		}
		recent, err := s.db.Activity().Recent(ctx, 5)
		if err != nil {
			s.log.Warn("activity feed unavailable", zap.Error(err))
			recent = nil
		}
		return dashboardLoadedMsg{Courses: courses, Challenges: chs, Recent: recent}
	}
}

func (s *HomeScreen) Title() string {
	return "Dashboard"
}

func (s *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "r", Description: "Refresh"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		if msg.Err != nil {
			s.log.Warn("dashboard load failed", zap.Error(msg.Err))
			s.errMsg = "Could not load courses. Press r to retry."
			return s, nil
		}
		s.loaded = true
		s.errMsg = ""
		s.courses = msg.Courses
		s.pending = countPending(msg.Challenges, s.auth)
		s.recent = msg.Recent
		s.menu = components.NewMenu(s.menuItems())
		return s, nil

	case loggedOutMsg:
		return s, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "r" {
			return s, s.loadDashboard()
		}
	}

	if s.loaded {
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *HomeScreen) menuItems() []components.MenuItem {
	items := make([]components.MenuItem, 0, len(s.courses)+3)
	for _, c := range s.courses {
		c := c
		items = append(items, components.MenuItem{
			Label:  c.Title,
			Detail: c.Description,
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{
						Screen: skilltree.New(s.client, s.auth, s.log, c.ID, c.Title),
					}
				}
			},
		})
	}

	challengeLabel := "Challenges"
	if s.pending > 0 {
		challengeLabel = fmt.Sprintf("Challenges (%d waiting)", s.pending)
	}
	items = append(items,
		components.MenuItem{
			Label: challengeLabel,
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{
						Screen: challenges.New(s.client, s.auth, s.log),
					}
				}
			},
		},
		components.MenuItem{
			Label: "Log out",
			Action: func() tea.Cmd {
				return func() tea.Msg {
					ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()
					_ = s.auth.Logout(ctx)
					return loggedOutMsg{}
				}
			},
		},
		components.MenuItem{
			Label: "Quit",
			Action: func() tea.Cmd {
				return tea.Quit
			},
		},
	)
	return items
}

func (s *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	if u := s.auth.User(); u != nil {
		b.WriteString(theme.Title.Width(width).Render("Salem, " + u.Username + "!"))
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Width(width).Render(
			fmt.Sprintf("✦ %d XP   ·   🔥 %d day streak", u.XP, u.Streak)))
		b.WriteString("\n\n")
	}

	switch {
	case s.errMsg != "":
		b.WriteString(layout.RenderBanner(s.errMsg, width))
	case !s.loaded:
		b.WriteString(theme.Subtitle.Width(width).Render("Loading your courses..."))
	case len(s.courses) == 0:
		b.WriteString(theme.Subtitle.Width(width).Render("No courses published yet."))
		b.WriteString("\n\n")
		b.WriteString(s.menu.View())
	default:
		b.WriteString(s.menu.View())
	}

	if s.loaded && len(s.recent) > 0 {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("Recent activity"))
		b.WriteString("\n")
		for _, e := range s.recent {
			line := fmt.Sprintf("  %s  %s",
				e.CreatedAt.Local().Format("Jan 2 15:04"), describeActivity(e))
			b.WriteString(theme.Locked.Render(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// describeActivity renders one activity row for the dashboard feed.
func describeActivity(e store.ActivityEntry) string {
	switch e.Kind {
	case "login":
		return "Signed in as " + e.Detail
	case "logout":
		return "Signed out"
	case "lesson_completed":
		return "Completed " + e.Detail
	}
	return e.Kind
}

// countPending counts incoming challenges the user has not answered and
// accepted ones waiting for their run.
func countPending(chs []api.Challenge, authStore *auth.Store) int {
	u := authStore.User()
	if u == nil {
		return 0
	}
	n := 0
	for _, ch := range chs {
		switch ch.Status {
		case api.ChallengePending:
			if ch.Receiver.ID == u.ID {
				n++
			}
		case api.ChallengeAccepted, api.ChallengeInProgress:
			if needsRun(ch, u.ID) {
				n++
			}
		}
	}
	return n
}

// needsRun reports whether this side of the challenge still has to race.
func needsRun(ch api.Challenge, userID int) bool {
	if ch.Sender.ID == userID {
		return ch.SenderTime == nil
	}
	if ch.Receiver.ID == userID {
		return ch.ReceiverTime == nil
	}
	return false
}
