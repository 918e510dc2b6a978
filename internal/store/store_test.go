package store

import (
	"context"
	"testing"

	"github.com/skrblv/bilimGO/internal/api"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is not asserted here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Tokens()

	if _, _, err := repo.Load(ctx); err != ErrNotFound {
		t.Fatalf("load (empty) = %v, want ErrNotFound", err)
	}

	if err := repo.Save(ctx, "acc1", "ref1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, "acc2", "ref2"); err != nil {
		t.Fatalf("save (overwrite): %v", err)
	}

	access, refresh, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if access != "acc2" || refresh != "ref2" {
		t.Fatalf("load = (%q, %q), want latest pair", access, refresh)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, _, err := repo.Load(ctx); err != ErrNotFound {
		t.Fatalf("load (cleared) = %v, want ErrNotFound", err)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Profile()

	if _, err := repo.Load(ctx); err != ErrNotFound {
		t.Fatalf("load (empty) = %v, want ErrNotFound", err)
	}

	u := &api.User{ID: 7, Username: "aliya", XP: 420, Streak: 3}
	if err := repo.Save(ctx, u); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Username != "aliya" || got.XP != 420 || got.Streak != 3 {
		t.Fatalf("profile = %+v", got)
	}
}

func TestProgressReplaceIsAuthoritative(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Progress()

	if err := repo.MarkCompleted(ctx, 1); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := repo.MarkCompleted(ctx, 1); err != nil {
		t.Fatalf("mark (duplicate): %v", err)
	}
	if err := repo.MarkCompleted(ctx, 2); err != nil {
		t.Fatalf("mark: %v", err)
	}

	completed, err := repo.CompletedLessons(ctx)
	if err != nil {
		t.Fatalf("completed: %v", err)
	}
	if len(completed) != 2 || !completed[1] || !completed[2] {
		t.Fatalf("completed = %v", completed)
	}

	if err := repo.Replace(ctx, []int{3}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	completed, err = repo.CompletedLessons(ctx)
	if err != nil {
		t.Fatalf("completed after replace: %v", err)
	}
	if len(completed) != 1 || !completed[3] {
		t.Fatalf("completed after replace = %v", completed)
	}
}

func TestActivityLogTagsLaunch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Activity()

	if err := repo.Append(ctx, "lesson_completed", "lesson 10"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.Append(ctx, "login", ""); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// newest first
	if entries[0].Kind != "login" {
		t.Fatalf("first entry = %+v", entries[0])
	}
	for _, e := range entries {
		if e.LaunchID != s.LaunchID() {
			t.Fatalf("entry launch id = %q, want %q", e.LaunchID, s.LaunchID())
		}
	}
}
