// Package app owns the root Bubble Tea model: the screen router, the
// shared frame (header with XP and streak, footer with key hints) and the
// global key handling.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/skrblv/bilimGO/internal/api"
	"github.com/skrblv/bilimGO/internal/auth"
	"github.com/skrblv/bilimGO/internal/router"
	"github.com/skrblv/bilimGO/internal/screen"
	"github.com/skrblv/bilimGO/internal/screens/home"
	"github.com/skrblv/bilimGO/internal/screens/login"
	"github.com/skrblv/bilimGO/internal/store"
	"github.com/skrblv/bilimGO/internal/ui/layout"
)

// Options carries the wired dependencies into the TUI.
type Options struct {
	API  *api.Client
	Auth *auth.Store
	DB   *store.Store
	Log  *zap.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts   Options
	router *router.Router
	width  int
	height int
}

// newAppModel routes to the dashboard, or to the login form when no
// session could be restored.
func newAppModel(opts Options) AppModel {
	var initial screen.Screen
	if opts.Auth.Authenticated() {
		initial = home.New(opts.API, opts.Auth, opts.DB, opts.Log)
	} else {
		initial = login.New(opts.API, opts.Auth, opts.DB, opts.Log)
	}
	return AppModel{
		opts:   opts,
		router: router.New(initial),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscHandler); ok {
				if handled, cmd := h.HandleEsc(); handled {
					return m, cmd
				}
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	xp, streak := 0, 0
	if u := m.opts.Auth.User(); u != nil {
		xp, streak = u.XP, u.Streak
	}
	header := layout.RenderHeader(title, xp, streak, m.width)

	var footerHints []layout.KeyHint
	if provider, ok := active.(screen.KeyHintProvider); ok {
		footerHints = provider.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
