// Package sqlite provides a SQLite implementation of the Doorman
// composite store using grove ORM with Go-based migrations.
//
// Timestamps are stored as ISO-8601 text and parsed through
// session.ParseTime on the way out, so rows written by earlier tooling
// with different fractional precision or offset notation stay readable.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/doorman/id"
	"github.com/xraph/doorman/session"
	"github.com/xraph/doorman/signup"
	"github.com/xraph/doorman/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// errNotFound is the sentinel for missing entities.
var errNotFound = fmt.Errorf("not found")

// Store is a SQLite implementation of the composite Doorman store.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB

	// incMu serializes IncrementHit. Text timestamps rule out a guarded
	// single-statement UPDATE, so the conditional increment is
	// read-check-write under this lock.
	incMu sync.Mutex
}

// New creates a new SQLite store.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("doorman/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("doorman/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation matches SQLite's constraint error text. The sqlite
// driver does not expose a structured code the way pgconn does.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ──────────────────────────────────────────────────
// Session operations
// ──────────────────────────────────────────────────

func (s *Store) GetSession(ctx context.Context, sessionID string) (*session.DemoSession, error) {
	m := new(sessionModel)
	err := s.sdb.NewSelect(m).Where("session_id = ?", sessionID).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("session %s: %w", sessionID, errNotFound)
		}
		return nil, fmt.Errorf("doorman: get session: %w", err)
	}
	ds, err := sessionFromModel(m)
	if err != nil {
		return nil, fmt.Errorf("doorman: get session: %w", err)
	}
	return ds, nil
}

func (s *Store) InsertSession(ctx context.Context, ds *session.DemoSession) error {
	m := sessionToModel(ds)
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("doorman: insert session: %w", err)
	}
	return nil
}

func (s *Store) UpdateSession(ctx context.Context, ds *session.DemoSession) error {
	m := sessionToModel(ds)
	if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("doorman: update session: %w", err)
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.sdb.NewDelete((*sessionModel)(nil)).
		Where("session_id = ?", sessionID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("doorman: delete session: %w", err)
	}
	return nil
}

func (s *Store) IncrementHit(ctx context.Context, sessionID string, limit int, now time.Time) (*session.DemoSession, bool, error) {
	s.incMu.Lock()
	defer s.incMu.Unlock()

	ds, err := s.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if ds.Expired(now) || ds.HitCount >= limit {
		return nil, false, nil
	}
	ds.HitCount++
	ds.LastHit = now
	if err := s.UpdateSession(ctx, ds); err != nil {
		return nil, false, err
	}
	return ds, true, nil
}

func (s *Store) ListSessions(ctx context.Context, filter *session.ListFilter) ([]*session.DemoSession, error) {
	var models []sessionModel
	q := s.sdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.ExpiresAfter != nil {
			q = q.Where("expires_at > ?", formatTime(*filter.ExpiresAfter))
		}
		if filter.ExpiresBefore != nil {
			q = q.Where("expires_at < ?", formatTime(*filter.ExpiresBefore))
		}
		if filter.MinHits > 0 {
			q = q.Where("hit_count >= ?", filter.MinHits)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("doorman: list sessions: %w", err)
	}
	result := make([]*session.DemoSession, 0, len(models))
	for i := range models {
		ds, err := sessionFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("doorman: list sessions: %w", err)
		}
		result = append(result, ds)
	}
	return result, nil
}

func (s *Store) CountSessions(ctx context.Context, filter *session.ListFilter) (int64, error) {
	q := s.sdb.NewSelect((*sessionModel)(nil))
	if filter != nil {
		if filter.ExpiresAfter != nil {
			q = q.Where("expires_at > ?", formatTime(*filter.ExpiresAfter))
		}
		if filter.ExpiresBefore != nil {
			q = q.Where("expires_at < ?", formatTime(*filter.ExpiresBefore))
		}
		if filter.MinHits > 0 {
			q = q.Where("hit_count >= ?", filter.MinHits)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("doorman: count sessions: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.sdb.NewDelete((*sessionModel)(nil)).
		Where("expires_at < ?", formatTime(before)).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("doorman: purge sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("doorman: purge sessions rows: %w", err)
	}
	return n, nil
}

// ──────────────────────────────────────────────────
// Signup operations
// ──────────────────────────────────────────────────

func (s *Store) CreateSignup(ctx context.Context, r *signup.Request) error {
	m := signupToModel(r)
	m.Email = strings.ToLower(m.Email)
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", signup.ErrDuplicateEmail, r.Email)
		}
		return fmt.Errorf("doorman: create signup: %w", err)
	}
	return nil
}

func (s *Store) GetSignup(ctx context.Context, reqID id.SignupID) (*signup.Request, error) {
	m := new(signupModel)
	err := s.sdb.NewSelect(m).Where("id = ?", reqID.String()).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("request %s: %w", reqID, signup.ErrRequestNotFound)
		}
		return nil, fmt.Errorf("doorman: get signup: %w", err)
	}
	r, err := signupFromModel(m)
	if err != nil {
		return nil, fmt.Errorf("doorman: get signup: %w", err)
	}
	return r, nil
}

func (s *Store) GetSignupByEmail(ctx context.Context, email string) (*signup.Request, error) {
	m := new(signupModel)
	err := s.sdb.NewSelect(m).Where("email = ?", strings.ToLower(email)).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("request for %s: %w", email, signup.ErrRequestNotFound)
		}
		return nil, fmt.Errorf("doorman: get signup by email: %w", err)
	}
	r, err := signupFromModel(m)
	if err != nil {
		return nil, fmt.Errorf("doorman: get signup by email: %w", err)
	}
	return r, nil
}

func (s *Store) UpdateSignup(ctx context.Context, r *signup.Request) error {
	m := signupToModel(r)
	m.Email = strings.ToLower(m.Email)
	if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("doorman: update signup: %w", err)
	}
	return nil
}

func (s *Store) DeleteSignup(ctx context.Context, reqID id.SignupID) error {
	_, err := s.sdb.NewDelete((*signupModel)(nil)).
		Where("id = ?", reqID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("doorman: delete signup: %w", err)
	}
	return nil
}

func (s *Store) ListSignups(ctx context.Context, filter *signup.ListFilter) ([]*signup.Request, error) {
	var models []signupModel
	q := s.sdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.Approved != nil {
			q = q.Where("approved = ?", *filter.Approved)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(email) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("doorman: list signups: %w", err)
	}
	result := make([]*signup.Request, 0, len(models))
	for i := range models {
		r, err := signupFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("doorman: list signups: %w", err)
		}
		result = append(result, r)
	}
	return result, nil
}

func (s *Store) CountSignups(ctx context.Context, filter *signup.ListFilter) (int64, error) {
	q := s.sdb.NewSelect((*signupModel)(nil))
	if filter != nil {
		if filter.Approved != nil {
			q = q.Where("approved = ?", *filter.Approved)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(email) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("doorman: count signups: %w", err)
	}
	return count, nil
}
