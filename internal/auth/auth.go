// Package auth holds the client-side session: the JWT pair, the cached
// profile and the completed-lesson set. It is the single writer of the
// credential rows in the local store, and the token source the API client
// reads on every request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skrblv/bilimGO/internal/api"
	"github.com/skrblv/bilimGO/internal/store"
)

// ErrNotAuthenticated means no usable credentials are available and the
// user has to log in again.
var ErrNotAuthenticated = errors.New("auth: not authenticated")

// Store is the in-process session state. All methods are safe for
// concurrent use; tea commands call them from goroutines.
type Store struct {
	mu sync.RWMutex

	db *store.Store

	access    string
	refresh   string
	user      *api.User
	completed map[int]bool
}

// New creates a session store backed by the local database. Call
// Initialize before relying on the session state.
func New(db *store.Store) *Store {
	return &Store{
		db:        db,
		completed: make(map[int]bool),
	}
}

// AccessToken implements api.TokenSource.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// Authenticated reports whether a profile has been established for the
// current credentials.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns the cached profile, or nil when logged out.
func (s *Store) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetUser replaces the cached profile after a server refresh.
func (s *Store) SetUser(ctx context.Context, u *api.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	if u != nil {
		_ = s.db.Profile().Save(ctx, u)
	}
}

// CompletedLessons returns a copy of the completed-lesson set.
func (s *Store) CompletedLessons() map[int]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]bool, len(s.completed))
	for id := range s.completed {
		out[id] = true
	}
	return out
}

// AddCompletedLesson records a newly finished lesson locally.
func (s *Store) AddCompletedLesson(ctx context.Context, lessonID int) error {
	s.mu.Lock()
	s.completed[lessonID] = true
	s.mu.Unlock()

	if err := s.db.Progress().MarkCompleted(ctx, lessonID); err != nil {
		return err
	}
	return s.db.Activity().Append(ctx, "lesson_completed", fmt.Sprintf("lesson %d", lessonID))
}

// Login exchanges credentials for a token pair and establishes the
// session.
func (s *Store) Login(ctx context.Context, client *api.Client, email, password string) error {
	pair, err := client.Login(ctx, email, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.access = pair.Access
	s.refresh = pair.Refresh
	s.mu.Unlock()

	if err := s.db.Tokens().Save(ctx, pair.Access, pair.Refresh); err != nil {
		return err
	}
	_ = s.db.Activity().Append(ctx, "login", email)
	return s.Initialize(ctx, client)
}

// Logout drops the session and wipes stored credentials, the cached
// profile and the mirrored progress.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.user = nil
	s.completed = make(map[int]bool)
	s.mu.Unlock()

	var errs []error
	if err := s.db.Tokens().Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.db.Profile().Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.db.Progress().Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	_ = s.db.Activity().Append(ctx, "logout", "")
	return errors.Join(errs...)
}

// Initialize restores the session on startup: load stored tokens, refresh
// the access token if it expired, and fetch the profile. A rejected
// credential wipes the session rather than leaving it half-valid.
func (s *Store) Initialize(ctx context.Context, client *api.Client) error {
	s.mu.Lock()
	if s.access == "" {
		access, refresh, err := s.db.Tokens().Load(ctx)
		if errors.Is(err, store.ErrNotFound) {
			s.mu.Unlock()
			return ErrNotAuthenticated
		}
		if err != nil {
			s.mu.Unlock()
			return err
		}
		s.access = access
		s.refresh = refresh
	}
	access, refresh := s.access, s.refresh
	s.mu.Unlock()

	if tokenExpired(access, time.Now()) {
		if tokenExpired(refresh, time.Now()) {
			_ = s.Logout(ctx)
			return ErrNotAuthenticated
		}
		fresh, err := client.Refresh(ctx, refresh)
		if err != nil {
			if api.IsUnauthorized(err) {
				_ = s.Logout(ctx)
				return ErrNotAuthenticated
			}
			return err
		}
		s.mu.Lock()
		s.access = fresh
		s.mu.Unlock()
		if err := s.db.Tokens().Save(ctx, fresh, refresh); err != nil {
			return err
		}
	}

	u, err := client.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			_ = s.Logout(ctx)
			return ErrNotAuthenticated
		}
		// offline start: fall back to the cached profile
		if cached, cacheErr := s.db.Profile().Load(ctx); cacheErr == nil {
			s.mu.Lock()
			s.user = cached
			s.mu.Unlock()
			return s.loadProgress(ctx)
		}
		return err
	}

	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	if err := s.db.Profile().Save(ctx, u); err != nil {
		return err
	}
	// the server owns the progress set; mirror it wholesale so lessons
	// completed on another device unlock here too
	if u.CompletedLessonIDs != nil {
		if err := s.db.Progress().Replace(ctx, u.CompletedLessonIDs); err != nil {
			return err
		}
	}
	return s.loadProgress(ctx)
}

func (s *Store) loadProgress(ctx context.Context) error {
	completed, err := s.db.Progress().CompletedLessons(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.completed = completed
	s.mu.Unlock()
	return nil
}

// tokenExpired decodes the token's exp claim without verifying the
// signature; verification is the server's job, the client only needs to
// know whether a round trip is pointless.
func tokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return now.After(exp.Time)
}
