// Package skilltree renders a course's topic tree with unlock state and
// routes into lessons and the final test.
package skilltree

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/skrblv/bilimGO/internal/api"
	"github.com/skrblv/bilimGO/internal/auth"
	"github.com/skrblv/bilimGO/internal/course"
	"github.com/skrblv/bilimGO/internal/progress"
	"github.com/skrblv/bilimGO/internal/router"
	"github.com/skrblv/bilimGO/internal/screen"
	"github.com/skrblv/bilimGO/internal/screens/lesson"
	"github.com/skrblv/bilimGO/internal/screens/testsession"
	"github.com/skrblv/bilimGO/internal/ui/layout"
	"github.com/skrblv/bilimGO/internal/ui/theme"
)

type rowKind int

const (
	rowSkill rowKind = iota
	rowLesson
	rowTest
)

type row struct {
	kind   rowKind
	depth  int
	skill  *course.Skill
	lesson *course.Lesson
}

// treeLoadedMsg delivers the fetched and validated course detail.
type treeLoadedMsg struct {
	Detail *course.Detail
	Err    error
}

// TreeScreen is the course detail view.
type TreeScreen struct {
	client *api.Client
	auth   *auth.Store
	log    *zap.Logger

	courseID    int
	courseTitle string

	detail       *course.Detail
	rows         []row
	cursor       int
	scrollOffset int
	errMsg       string
}

var _ screen.Screen = (*TreeScreen)(nil)
var _ screen.KeyHintProvider = (*TreeScreen)(nil)

// New creates the tree screen; the course payload is fetched by Init.
func New(client *api.Client, authStore *auth.Store, log *zap.Logger, courseID int, title string) *TreeScreen {
	return &TreeScreen{
		client:      client,
		auth:        authStore,
		log:         log,
		courseID:    courseID,
		courseTitle: title,
	}
}

func (s *TreeScreen) Init() tea.Cmd {
	return s.loadCourse()
}

func (s *TreeScreen) loadCourse() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		d, err := s.client.CourseDetail(ctx, s.courseID)
		return treeLoadedMsg{Detail: d, Err: err}
	}
}

func (s *TreeScreen) Title() string {
	return s.courseTitle
}

func (s *TreeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "r", Description: "Reload"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *TreeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case treeLoadedMsg:
		if msg.Err != nil {
			s.log.Warn("course load failed",
				zap.Int("course_id", s.courseID), zap.Error(msg.Err))
			s.errMsg = "Could not load this course. Press r to retry."
			return s, nil
		}
		s.errMsg = ""
		s.detail = msg.Detail
		s.rows = buildRows(msg.Detail)
		s.snapCursor()
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "r":
			return s, s.loadCourse()
		case "enter":
			return s.open()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

// buildRows flattens the skill tree depth-first and appends the final test
// row.
func buildRows(d *course.Detail) []row {
	var rows []row
	var walk func(skills []course.Skill, depth int)
	walk = func(skills []course.Skill, depth int) {
		for i := range skills {
			sk := &skills[i]
			rows = append(rows, row{kind: rowSkill, depth: depth, skill: sk})
			for j := range sk.Lessons {
				rows = append(rows, row{kind: rowLesson, depth: depth, skill: sk, lesson: &sk.Lessons[j]})
			}
			walk(sk.Children, depth+1)
		}
	}
	walk(d.Skills, 0)
	rows = append(rows, row{kind: rowTest})
	return rows
}

// selectable reports whether the cursor may rest on the row right now.
// Unlock state shifts as lessons complete, so this is evaluated against
// the live completed set, not cached.
func (s *TreeScreen) selectable(r row) bool {
	completed := s.auth.CompletedLessons()
	switch r.kind {
	case rowLesson:
		unlocked := progress.UnlockedSkills(s.detail.Skills, completed)
		return progress.LessonInteractive(r.lesson.ID, r.skill.ID, completed, unlocked)
	case rowTest:
		return progress.CourseComplete(s.detail.Skills, completed)
	}
	return false
}

func (s *TreeScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.selectable(s.rows[next]) {
			s.cursor = next
			return
		}
		next += delta
	}
}

// snapCursor places the cursor on the first selectable row.
func (s *TreeScreen) snapCursor() {
	for i, r := range s.rows {
		if s.selectable(r) {
			s.cursor = i
			return
		}
	}
	s.cursor = 0
}

func (s *TreeScreen) open() (screen.Screen, tea.Cmd) {
	if s.detail == nil || s.cursor >= len(s.rows) {
		return s, nil
	}
	r := s.rows[s.cursor]
	if !s.selectable(r) {
		return s, nil
	}

	switch r.kind {
	case rowLesson:
		next := lesson.New(s.client, s.auth, s.log, s.courseID, r.lesson, nil)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	case rowTest:
		next := testsession.New(s.client, s.log, s.courseID, s.courseTitle)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	}
	return s, nil
}

func (s *TreeScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.RenderBanner(s.errMsg, width)
	}
	if s.detail == nil {
		return theme.Subtitle.Width(width).Render("\n\nLoading course...")
	}

	completed := s.auth.CompletedLessons()
	unlocked := progress.UnlockedSkills(s.detail.Skills, completed)

	s.adjustScroll(height)

	var lines []string
	visible := 0
	for i, r := range s.rows {
		if i < s.scrollOffset {
			continue
		}
		if visible >= height {
			break
		}
		lines = append(lines, s.renderRow(r, i == s.cursor, completed, unlocked, width))
		visible++
	}
	return strings.Join(lines, "\n")
}

func (s *TreeScreen) renderRow(r row, isCursor bool, completed, unlocked map[int]bool, width int) string {
	indent := strings.Repeat("  ", r.depth+1)

	switch r.kind {
	case rowSkill:
		label := indent + "◆ " + r.skill.Title
		if !unlocked[r.skill.ID] {
			return theme.Locked.Render(label + "  🔒")
		}
		if progress.SkillComplete(*r.skill, completed) {
			return theme.Correct.Render(label + "  ✓")
		}
		return lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(label)

	case rowLesson:
		label := fmt.Sprintf("%s  %s (+%d XP)", indent, r.lesson.Title, r.lesson.XPReward)
		switch {
		case completed[r.lesson.ID]:
			return theme.Correct.Render(indent + "  ✓ " + r.lesson.Title)
		case !unlocked[r.skill.ID]:
			return theme.Locked.Render(label + "  🔒")
		case isCursor:
			return theme.Selected.Render("▸" + label[1:])
		default:
			return theme.Unselected.Render(label)
		}

	case rowTest:
		label := "\n  ★ Final test"
		if !progress.CourseComplete(s.detail.Skills, completed) {
			return theme.Locked.Render(label + "  (finish every lesson first)")
		}
		if isCursor {
			return theme.Selected.Render("\n▸ ★ Final test")
		}
		return lipgloss.NewStyle().Foreground(theme.Warning).Bold(true).Render(label)
	}
	return ""
}

// adjustScroll keeps the cursor inside the viewport.
func (s *TreeScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	if s.cursor < s.scrollOffset {
		s.scrollOffset = s.cursor
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}
