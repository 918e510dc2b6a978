package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/skrblv/bilimGO/internal/api"
)

// TokenRepo persists the JWT pair across restarts. There is at most one
// stored credential row.
type TokenRepo interface {
	Save(ctx context.Context, access, refresh string) error
	Load(ctx context.Context) (access, refresh string, err error)
	Clear(ctx context.Context) error
}

// ProfileRepo caches the last fetched user profile so the dashboard can
// render offline.
type ProfileRepo interface {
	Save(ctx context.Context, u *api.User) error
	Load(ctx context.Context) (*api.User, error)
	Clear(ctx context.Context) error
}

// ProgressRepo mirrors the server-side completed-lesson set.
type ProgressRepo interface {
	MarkCompleted(ctx context.Context, lessonID int) error
	CompletedLessons(ctx context.Context) (map[int]bool, error)
	Replace(ctx context.Context, lessonIDs []int) error
	Clear(ctx context.Context) error
}

// ActivityRepo appends application events for usage history, keyed by the
// launch ID of the process run that produced them.
type ActivityRepo interface {
	Append(ctx context.Context, kind, detail string) error
	Recent(ctx context.Context, limit int) ([]ActivityEntry, error)
}

// ActivityEntry is one row of the activity log.
type ActivityEntry struct {
	ID        int64
	LaunchID  string
	Kind      string
	Detail    string
	CreatedAt time.Time
}

// ErrNotFound marks a lookup that matched no stored row.
var ErrNotFound = errors.New("store: not found")

type tokenRepo struct {
	db *sql.DB
}

func (r *tokenRepo) Save(ctx context.Context, access, refresh string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credentials (id, access_token, refresh_token, updated_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   access_token = excluded.access_token,
		   refresh_token = excluded.refresh_token,
		   updated_at = excluded.updated_at`,
		access, refresh, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (r *tokenRepo) Load(ctx context.Context) (string, string, error) {
	var access, refresh string
	err := r.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token FROM credentials WHERE id = 1`,
	).Scan(&access, &refresh)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("load credentials: %w", err)
	}
	return access, refresh, nil
}

func (r *tokenRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

type profileRepo struct {
	db *sql.DB
}

func (r *profileRepo) Save(ctx context.Context, u *api.User) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO profile (id, payload, fetched_at) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   payload = excluded.payload,
		   fetched_at = excluded.fetched_at`,
		string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (r *profileRepo) Load(ctx context.Context) (*api.User, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM profile WHERE id = 1`,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	var u api.User
	if err := json.Unmarshal([]byte(payload), &u); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &u, nil
}

func (r *profileRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM profile`); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}

type progressRepo struct {
	db *sql.DB
}

func (r *progressRepo) MarkCompleted(ctx context.Context, lessonID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO completed_lessons (lesson_id, completed_at) VALUES (?, ?)`,
		lessonID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark lesson %d completed: %w", lessonID, err)
	}
	return nil
}

func (r *progressRepo) CompletedLessons(ctx context.Context) (map[int]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT lesson_id FROM completed_lessons`)
	if err != nil {
		return nil, fmt.Errorf("query completed lessons: %w", err)
	}
	defer rows.Close()

	completed := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan lesson id: %w", err)
		}
		completed[id] = true
	}
	return completed, rows.Err()
}

// Replace swaps the whole set for the server's authoritative view, in one
// transaction so a crash never leaves a half-synced set.
func (r *progressRepo) Replace(ctx context.Context, lessonIDs []int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM completed_lessons`); err != nil {
		return fmt.Errorf("clear completed lessons: %w", err)
	}
	now := time.Now().UTC()
	for _, id := range lessonIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO completed_lessons (lesson_id, completed_at) VALUES (?, ?)`,
			id, now); err != nil {
			return fmt.Errorf("insert lesson %d: %w", id, err)
		}
	}
	return tx.Commit()
}

func (r *progressRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM completed_lessons`); err != nil {
		return fmt.Errorf("clear completed lessons: %w", err)
	}
	return nil
}

type activityRepo struct {
	db       *sql.DB
	launchID string
}

func (r *activityRepo) Append(ctx context.Context, kind, detail string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_log (launch_id, kind, detail, created_at) VALUES (?, ?, ?, ?)`,
		r.launchID, kind, detail, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append activity %q: %w", kind, err)
	}
	return nil
}

func (r *activityRepo) Recent(ctx context.Context, limit int) ([]ActivityEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, launch_id, kind, detail, created_at
		 FROM activity_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var entries []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		if err := rows.Scan(&e.ID, &e.LaunchID, &e.Kind, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
