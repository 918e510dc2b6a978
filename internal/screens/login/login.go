// Package login is the credential form shown when no session could be
// restored from the local store.
package login

import (
	"context"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/skrblv/bilimGO/internal/api"
	"github.com/skrblv/bilimGO/internal/auth"
	"github.com/skrblv/bilimGO/internal/router"
	"github.com/skrblv/bilimGO/internal/screen"
	"github.com/skrblv/bilimGO/internal/screens/home"
	"github.com/skrblv/bilimGO/internal/store"
	"github.com/skrblv/bilimGO/internal/ui/layout"
	"github.com/skrblv/bilimGO/internal/ui/theme"
)

const (
	fieldEmail = iota
	fieldPassword
)

// loginDoneMsg reports the outcome of the login round trip.
type loginDoneMsg struct {
	Err error
}

// LoginScreen collects credentials and establishes the session.
type LoginScreen struct {
	client *api.Client
	auth   *auth.Store
	db     *store.Store
	log    *zap.Logger

	email    textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	errMsg   string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates the login form with the email field focused.
func New(client *api.Client, authStore *auth.Store, db *store.Store, log *zap.Logger) *LoginScreen {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	return &LoginScreen{
		client:   client,
		auth:     authStore,
		db:       db,
		log:      log,
		email:    email,
		password: password,
	}
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.email.Focus()
}

func (s *LoginScreen) Title() string {
	return "Sign In"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Sign in"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		s.busy = false
		if msg.Err != nil {
			s.log.Warn("login failed", zap.Error(msg.Err))
			s.errMsg = loginErrorText(msg.Err)
			return s, nil
		}
		next := home.New(s.client, s.auth, s.db, s.log)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			s.toggleFocus()
			return s, nil
		case "enter":
			if s.focus == fieldEmail {
				s.toggleFocus()
				return s, nil
			}
			return s.submit()
		}
	}

	var cmd tea.Cmd
	if s.focus == fieldEmail {
		s.email, cmd = s.email.Update(msg)
	} else {
		s.password, cmd = s.password.Update(msg)
	}
	return s, cmd
}

func (s *LoginScreen) toggleFocus() {
	if s.focus == fieldEmail {
		s.focus = fieldPassword
		s.email.Blur()
		s.password.Focus()
	} else {
		s.focus = fieldEmail
		s.password.Blur()
		s.email.Focus()
	}
}

func (s *LoginScreen) submit() (screen.Screen, tea.Cmd) {
	email := strings.TrimSpace(s.email.Value())
	password := s.password.Value()
	if email == "" || password == "" {
		s.errMsg = "Both fields are required."
		return s, nil
	}

	s.busy = true
	s.errMsg = ""
	return s, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return loginDoneMsg{Err: s.auth.Login(ctx, s.client, email, password)}
	}
}

func (s *LoginScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(theme.Title.Width(width).Render("Welcome to BilimGO"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Sign in to continue learning"))
	b.WriteString("\n\n")

	form := strings.Join([]string{
		theme.Hint.Render("Email"),
		s.email.View(),
		"",
		theme.Hint.Render("Password"),
		s.password.View(),
	}, "\n")

	card := theme.Card.Width(min(48, width-4)).Render(form)
	b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(card))
	b.WriteString("\n\n")

	if s.busy {
		b.WriteString(theme.Subtitle.Width(width).Render("Signing in..."))
	} else if s.errMsg != "" {
		b.WriteString(layout.RenderBanner(s.errMsg, width))
	}
	return b.String()
}

func loginErrorText(err error) string {
	if api.IsUnauthorized(err) {
		return "Wrong email or password."
	}
	return "Could not reach the server. Check your connection and try again."
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
