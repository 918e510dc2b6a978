package home

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/skrblv/bilimGO/internal/auth"
	"github.com/skrblv/bilimGO/internal/course"
	"github.com/skrblv/bilimGO/internal/store"
)

func TestDescribeActivity(t *testing.T) {
	cases := []struct {
		entry store.ActivityEntry
		want  string
	}{
		{store.ActivityEntry{Kind: "login", Detail: "a@b.kz"}, "Signed in as a@b.kz"},
		{store.ActivityEntry{Kind: "logout"}, "Signed out"},
		{store.ActivityEntry{Kind: "lesson_completed", Detail: "lesson 10"}, "Completed lesson 10"},
		{store.ActivityEntry{Kind: "update_check"}, "update_check"},
	}
	for _, tc := range cases {
		if got := describeActivity(tc.entry); got != tc.want {
			t.Errorf("describeActivity(%q) = %q, want %q", tc.entry.Kind, got, tc.want)
		}
	}
}

func TestDashboardShowsRecentActivity(t *testing.T) {
	// the client and db are never dialed: the test feeds the loaded
	// message directly
	s := New(nil, auth.New(nil), nil, zap.NewNop())

	scr, _ := s.Update(dashboardLoadedMsg{
		Courses: []course.Course{{ID: 1, Title: "Python Basics"}},
		Recent: []store.ActivityEntry{
			{Kind: "lesson_completed", Detail: "lesson 10",
				CreatedAt: time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)},
			{Kind: "login", Detail: "a@b.kz",
				CreatedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)},
		},
	})
	_ = scr

	view := s.View(80, 24)
	if !strings.Contains(view, "Recent activity") {
		t.Fatalf("view missing activity header:\n%s", view)
	}
	if !strings.Contains(view, "Completed lesson 10") {
		t.Errorf("view missing lesson entry:\n%s", view)
	}
	if !strings.Contains(view, "Signed in as a@b.kz") {
		t.Errorf("view missing login entry:\n%s", view)
	}
}

func TestDashboardWithoutActivity(t *testing.T) {
	s := New(nil, auth.New(nil), nil, zap.NewNop())

	scr, _ := s.Update(dashboardLoadedMsg{
		Courses: []course.Course{{ID: 1, Title: "Python Basics"}},
	})
	_ = scr

	if strings.Contains(s.View(80, 24), "Recent activity") {
		t.Error("empty feed should not render an activity section")
	}
}
