// Package memory provides an in-memory implementation of the Doorman
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xraph/doorman/id"
	"github.com/xraph/doorman/session"
	"github.com/xraph/doorman/signup"
)

// Compile-time interface checks.
var (
	_ session.Store = (*Store)(nil)
	_ signup.Store  = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all Doorman entities.
type Store struct {
	mu sync.RWMutex

	sessions map[string]*session.DemoSession
	signups  map[string]*signup.Request
	byEmail  map[string]string // lowercased email -> signup ID
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		sessions: make(map[string]*session.DemoSession),
		signups:  make(map[string]*signup.Request),
		byEmail:  make(map[string]string),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Session Store
// ──────────────────────────────────────────────────

func (s *Store) GetSession(_ context.Context, sessionID string) (*session.DemoSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, errNotFound)
	}
	return copySession(ds), nil
}

func (s *Store) InsertSession(_ context.Context, ds *session.DemoSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[ds.SessionID] = copySession(ds)
	return nil
}

func (s *Store) UpdateSession(_ context.Context, ds *session.DemoSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[ds.SessionID]; !ok {
		return fmt.Errorf("session %s: %w", ds.SessionID, errNotFound)
	}
	s.sessions[ds.SessionID] = copySession(ds)
	return nil
}

func (s *Store) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *Store) IncrementHit(_ context.Context, sessionID string, limit int, now time.Time) (*session.DemoSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.sessions[sessionID]
	if !ok || ds.Expired(now) || ds.HitCount >= limit {
		return nil, false, nil
	}
	ds.HitCount++
	ds.LastHit = now
	return copySession(ds), true, nil
}

func (s *Store) ListSessions(_ context.Context, filter *session.ListFilter) ([]*session.DemoSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*session.DemoSession, 0, len(s.sessions))
	for _, ds := range s.sessions {
		if filter != nil {
			if filter.ExpiresAfter != nil && !ds.ExpiresAt.After(*filter.ExpiresAfter) {
				continue
			}
			if filter.ExpiresBefore != nil && !ds.ExpiresAt.Before(*filter.ExpiresBefore) {
				continue
			}
			if filter.MinHits > 0 && ds.HitCount < filter.MinHits {
				continue
			}
		}
		result = append(result, copySession(ds))
	}
	var p pagOpts
	if filter != nil {
		p = pagOpts{limit: filter.Limit, offset: filter.Offset}
	}
	return applyPagination(result, p), nil
}

func (s *Store) CountSessions(ctx context.Context, filter *session.ListFilter) (int64, error) {
	list, err := s.ListSessions(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) PurgeSessions(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for k, ds := range s.sessions {
		if ds.ExpiresAt.Before(before) {
			delete(s.sessions, k)
			count++
		}
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Signup Store
// ──────────────────────────────────────────────────

func (s *Store) CreateSignup(_ context.Context, r *signup.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(r.Email)
	if _, exists := s.byEmail[key]; exists {
		return fmt.Errorf("%w: %s", signup.ErrDuplicateEmail, r.Email)
	}
	s.signups[r.ID.String()] = copySignup(r)
	s.byEmail[key] = r.ID.String()
	return nil
}

func (s *Store) GetSignup(_ context.Context, reqID id.SignupID) (*signup.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.signups[reqID.String()]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", reqID, signup.ErrRequestNotFound)
	}
	return copySignup(r), nil
}

func (s *Store) GetSignupByEmail(_ context.Context, email string) (*signup.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rid, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("request for %s: %w", email, signup.ErrRequestNotFound)
	}
	return copySignup(s.signups[rid]), nil
}

func (s *Store) UpdateSignup(_ context.Context, r *signup.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.signups[r.ID.String()]; !ok {
		return fmt.Errorf("request %s: %w", r.ID, signup.ErrRequestNotFound)
	}
	s.signups[r.ID.String()] = copySignup(r)
	return nil
}

func (s *Store) DeleteSignup(_ context.Context, reqID id.SignupID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.signups[reqID.String()]; ok {
		delete(s.byEmail, strings.ToLower(r.Email))
		delete(s.signups, reqID.String())
	}
	return nil
}

func (s *Store) ListSignups(_ context.Context, filter *signup.ListFilter) ([]*signup.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*signup.Request, 0, len(s.signups))
	for _, r := range s.signups {
		if filter != nil {
			if filter.Approved != nil && r.Approved != *filter.Approved {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(r.Email), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copySignup(r))
	}
	var p pagOpts
	if filter != nil {
		p = pagOpts{limit: filter.Limit, offset: filter.Offset}
	}
	return applyPagination(result, p), nil
}

func (s *Store) CountSignups(ctx context.Context, filter *signup.ListFilter) (int64, error) {
	list, err := s.ListSignups(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

var errNotFound = fmt.Errorf("not found")

func copySession(ds *session.DemoSession) *session.DemoSession {
	c := *ds
	return &c
}

func copySignup(r *signup.Request) *signup.Request {
	c := *r
	return &c
}

type pagOpts struct{ limit, offset int }

func applyPagination[T any](items []*T, p pagOpts) []*T {
	if p.offset > 0 && p.offset < len(items) {
		items = items[p.offset:]
	} else if p.offset >= len(items) && p.offset > 0 {
		return nil
	}
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}
