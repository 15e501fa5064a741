// Package mongo provides a MongoDB implementation of the Doorman
// composite store using grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/doorman/id"
	"github.com/xraph/doorman/session"
	"github.com/xraph/doorman/signup"
	"github.com/xraph/doorman/store"
)

// Collection name constants.
const (
	colSessions = "doorman_sessions"
	colSignups  = "doorman_signups"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// errNotFound is the sentinel for missing entities.
var errNotFound = fmt.Errorf("not found")

// incrementAttempts bounds the optimistic CAS loop in IncrementHit.
const incrementAttempts = 5

// Store is a MongoDB implementation of the composite Doorman store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all doorman collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()
	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("doorman/mongo: migrate %s indexes: %w", col, err)
		}
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all doorman collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colSessions: {
			{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		},
		colSignups: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "approved", Value: 1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// Session operations
// ──────────────────────────────────────────────────

func (s *Store) GetSession(ctx context.Context, sessionID string) (*session.DemoSession, error) {
	var m sessionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": sessionID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("session %s: %w", sessionID, errNotFound)
		}
		return nil, fmt.Errorf("doorman: get session: %w", err)
	}
	return sessionFromModel(&m), nil
}

func (s *Store) InsertSession(ctx context.Context, ds *session.DemoSession) error {
	m := sessionToModel(ds)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("doorman: insert session: %w", err)
	}
	return nil
}

func (s *Store) UpdateSession(ctx context.Context, ds *session.DemoSession) error {
	m := sessionToModel(ds)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.SessionID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("doorman: update session: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("session %s: %w", ds.SessionID, errNotFound)
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.mdb.NewDelete((*sessionModel)(nil)).
		Filter(bson.M{"_id": sessionID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("doorman: delete session: %w", err)
	}
	return nil
}

// IncrementHit is an optimistic compare-and-set: the update only matches
// when the counter still holds the value just read, so two concurrent
// callers can never both take the last remaining hit.
func (s *Store) IncrementHit(ctx context.Context, sessionID string, limit int, now time.Time) (*session.DemoSession, bool, error) {
	for attempt := 0; attempt < incrementAttempts; attempt++ {
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

		res, err := s.mdb.NewUpdate((*sessionModel)(nil)).
			Filter(bson.M{"_id": sessionID, "hit_count": ds.HitCount}).
			Set("hit_count", ds.HitCount+1).
			Set("last_hit", now).
			Exec(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("doorman: increment hit: %w", err)
		}
		if res.MatchedCount() > 0 {
			ds.HitCount++
			ds.LastHit = now
			return ds, true, nil
		}
		// Lost the race; re-read and try again.
	}
	return nil, false, fmt.Errorf("doorman: increment hit: contention on session %s", sessionID)
}

func (s *Store) ListSessions(ctx context.Context, filter *session.ListFilter) ([]*session.DemoSession, error) {
	var models []sessionModel
	f := sessionFilter(filter)
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("doorman: list sessions: %w", err)
	}
	result := make([]*session.DemoSession, len(models))
	for i := range models {
		result[i] = sessionFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountSessions(ctx context.Context, filter *session.ListFilter) (int64, error) {
	count, err := s.mdb.NewFind((*sessionModel)(nil)).
		Filter(sessionFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("doorman: count sessions: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*sessionModel)(nil)).
		Many().
		Filter(bson.M{"expires_at": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("doorman: purge sessions: %w", err)
	}
	return res.DeletedCount(), nil
}

func sessionFilter(filter *session.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	expires := bson.M{}
	if filter.ExpiresAfter != nil {
		expires["$gt"] = *filter.ExpiresAfter
	}
	if filter.ExpiresBefore != nil {
		expires["$lt"] = *filter.ExpiresBefore
	}
	if len(expires) > 0 {
		f["expires_at"] = expires
	}
	if filter.MinHits > 0 {
		f["hit_count"] = bson.M{"$gte": filter.MinHits}
	}
	return f
}

// ──────────────────────────────────────────────────
// Signup operations
// ──────────────────────────────────────────────────

func (s *Store) CreateSignup(ctx context.Context, r *signup.Request) error {
	m := signupToModel(r)
	m.Email = strings.ToLower(m.Email)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", signup.ErrDuplicateEmail, r.Email)
		}
		return fmt.Errorf("doorman: create signup: %w", err)
	}
	return nil
}

func (s *Store) GetSignup(ctx context.Context, reqID id.SignupID) (*signup.Request, error) {
	var m signupModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": reqID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("request %s: %w", reqID, signup.ErrRequestNotFound)
		}
		return nil, fmt.Errorf("doorman: get signup: %w", err)
	}
	return signupFromModel(&m), nil
}

func (s *Store) GetSignupByEmail(ctx context.Context, email string) (*signup.Request, error) {
	var m signupModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"email": strings.ToLower(email)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("request for %s: %w", email, signup.ErrRequestNotFound)
		}
		return nil, fmt.Errorf("doorman: get signup by email: %w", err)
	}
	return signupFromModel(&m), nil
}

func (s *Store) UpdateSignup(ctx context.Context, r *signup.Request) error {
	m := signupToModel(r)
	m.Email = strings.ToLower(m.Email)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("doorman: update signup: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("request %s: %w", r.ID, signup.ErrRequestNotFound)
	}
	return nil
}

func (s *Store) DeleteSignup(ctx context.Context, reqID id.SignupID) error {
	_, err := s.mdb.NewDelete((*signupModel)(nil)).
		Filter(bson.M{"_id": reqID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("doorman: delete signup: %w", err)
	}
	return nil
}

func (s *Store) ListSignups(ctx context.Context, filter *signup.ListFilter) ([]*signup.Request, error) {
	var models []signupModel
	q := s.mdb.NewFind(&models).
		Filter(signupFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("doorman: list signups: %w", err)
	}
	result := make([]*signup.Request, len(models))
	for i := range models {
		result[i] = signupFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountSignups(ctx context.Context, filter *signup.ListFilter) (int64, error) {
	count, err := s.mdb.NewFind((*signupModel)(nil)).
		Filter(signupFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("doorman: count signups: %w", err)
	}
	return count, nil
}

func signupFilter(filter *signup.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.Approved != nil {
		f["approved"] = *filter.Approved
	}
	if filter.Search != "" {
		f["email"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	return f
}
