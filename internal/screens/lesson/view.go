package lesson

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/skrblv/bilimGO/internal/course"
	sess "github.com/skrblv/bilimGO/internal/session"
	"github.com/skrblv/bilimGO/internal/ui/components"
	"github.com/skrblv/bilimGO/internal/ui/layout"
	"github.com/skrblv/bilimGO/internal/ui/theme"
)

func (s *LessonScreen) View(width, height int) string {
	if s.fatal != "" {
		return layout.RenderBanner(s.fatal, width)
	}
	if s.quitConfirm {
		return renderQuitConfirm(width)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + components.NewProgressBar("", s.state.Progress(), true, min(40, width-10)).View())
	if s.challenge != nil {
		elapsed := s.challenge.ElapsedSeconds(time.Now())
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf("   ⏱ %02d:%02d", elapsed/60, elapsed%60)))
	}
	b.WriteString("\n\n")

	switch s.state.Stage {
	case sess.StageTheory:
		b.WriteString(s.renderTheory(width))
	case sess.StageTask:
		b.WriteString(s.renderTask(width))
	case sess.StageCompleted:
		b.WriteString(s.renderCompletion(width))
	}

	if s.banner != "" {
		b.WriteString("\n")
		b.WriteString(layout.RenderBanner(s.banner, width))
	}
	return b.String()
}

func (s *LessonScreen) renderTheory(width int) string {
	block := s.state.CurrentTheory()
	if block == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(theme.Hint.Render(fmt.Sprintf(
		"  Theory %d/%d", s.state.TheoryStep+1, len(s.state.Lesson.Theory))))
	b.WriteString("\n\n")
	b.WriteString(renderBlock(*block, width))
	b.WriteString("\n")
	return b.String()
}

// renderBlock renders one theory content block for the terminal. Image
// blocks degrade to their caption and URL.
func renderBlock(block course.ContentBlock, width int) string {
	inner := width - 8
	if inner < 20 {
		inner = 20
	}

	switch block.Type {
	case course.BlockText:
		return "  " + theme.Body.Width(inner).Render(block.Content)

	case course.BlockCode:
		code := theme.CodeBlock.Width(inner).Render(block.Content)
		if block.Language != "" {
			return "  " + theme.Hint.Render(block.Language) + "\n  " + code
		}
		return "  " + code

	case course.BlockAlert:
		color := theme.AlertColor(string(block.Style))
		alert := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(color).
			Foreground(theme.Text).
			Width(inner).
			Padding(0, 1).
			Render(block.Content)
		return "  " + alert

	case course.BlockDetails:
		var b strings.Builder
		b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("▾ "+block.Summary))
		b.WriteString("\n  ")
		b.WriteString(theme.Body.Width(inner).Render(block.Content))
		return b.String()

	case course.BlockImage:
		caption := block.Caption
		if caption == "" {
			caption = "illustration"
		}
		return "  " + theme.Hint.Render(fmt.Sprintf("🖼  %s (%s)", caption, block.URL))

	case course.BlockDivider:
		return "  " + theme.Locked.Render(strings.Repeat("─", inner))
	}
	return "  " + theme.Body.Width(inner).Render(block.Content)
}

func (s *LessonScreen) renderTask(width int) string {
	task := s.state.CurrentTask()
	if task == nil || s.widget == nil {
		return theme.Subtitle.Width(width).Render("Loading task...")
	}

	var b strings.Builder
	b.WriteString(theme.Hint.Render(fmt.Sprintf(
		"  Task %d/%d", s.state.TaskIndex+1, len(s.state.Lesson.Tasks))))
	b.WriteString("\n\n")
	b.WriteString("  " + theme.Body.Bold(true).Width(width-4).Render(task.Question))
	b.WriteString("\n\n")

	widget := s.widget.View(width - 4)
	b.WriteString(indent(widget, "  "))
	b.WriteString("\n")

	if s.state.HintText != "" {
		b.WriteString("\n  " + theme.Hint.Render("💡 "+s.state.HintText) + "\n")
	}

	if s.state.InFlight {
		b.WriteString("\n  " + theme.Subtitle.Render("Checking..."))
	} else if s.state.Checked {
		b.WriteString("\n")
		if s.state.Correct {
			b.WriteString("  " + theme.Correct.Render("✓ Correct!"))
		} else {
			b.WriteString("  " + theme.Incorrect.Render("✗ Not quite."))
			if s.state.RevealedAnswer != "" {
				b.WriteString("\n  " + theme.Hint.Render("Answer: "+s.state.RevealedAnswer))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *LessonScreen) renderCompletion(width int) string {
	var lines []string
	lines = append(lines, theme.Correct.Render("🎉 Lesson complete!"))
	lines = append(lines, "")

	switch {
	case s.completion != nil:
		lines = append(lines, theme.Body.Render(fmt.Sprintf("✦ +%d XP", s.completion.XPEarned)))
		if s.completion.NewBadgesCount > 0 {
			lines = append(lines, theme.Body.Render(fmt.Sprintf("🏅 %d new badge(s)!", s.completion.NewBadgesCount)))
		}
		if s.completion.Message != "" {
			lines = append(lines, theme.Hint.Render(s.completion.Message))
		}
	case s.state.InFlight:
		lines = append(lines, theme.Subtitle.Render("Saving your progress..."))
	}

	if s.challenge != nil && s.challenge.Submitted() {
		elapsed := s.challenge.ElapsedSeconds(time.Now())
		lines = append(lines, "", theme.Body.Render(
			fmt.Sprintf("⏱ Your time: %02d:%02d", elapsed/60, elapsed%60)))
	}

	card := theme.Card.Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(card)
}

func renderQuitConfirm(width int) string {
	body := strings.Join([]string{
		theme.Body.Bold(true).Render("Leave this lesson?"),
		"",
		theme.Hint.Render("Your progress in it will be lost."),
		"",
		theme.Correct.Render("[N] Keep going") + "   " + theme.Incorrect.Render("[Y] Leave"),
	}, "\n")
	card := theme.Card.Render(body)
	return "\n\n" + lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(card)
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
