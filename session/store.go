package session

import (
	"context"
	"time"
)

// Store defines persistence operations for demo sessions.
type Store interface {
	// GetSession retrieves a session by its caller-supplied key.
	GetSession(ctx context.Context, sessionID string) (*DemoSession, error)

	// InsertSession persists a new session row.
	InsertSession(ctx context.Context, s *DemoSession) error

	// UpdateSession persists changes to an existing session row.
	UpdateSession(ctx context.Context, s *DemoSession) error

	// DeleteSession removes a session row. Deleting a missing row is not
	// an error.
	DeleteSession(ctx context.Context, sessionID string) error

	// IncrementHit atomically increments the hit counter of a live session
	// if and only if the count is below limit. It returns the updated
	// session, or ok=false when the row is missing, expired, or at the
	// limit. Backends that cannot express the conditional update natively
	// may implement it as read-check-write; the engine only uses it when
	// atomic tracking is enabled.
	IncrementHit(ctx context.Context, sessionID string, limit int, now time.Time) (s *DemoSession, ok bool, err error)

	// ListSessions returns sessions matching the filter.
	ListSessions(ctx context.Context, filter *ListFilter) ([]*DemoSession, error)

	// CountSessions returns the number of sessions matching the filter.
	CountSessions(ctx context.Context, filter *ListFilter) (int64, error)

	// PurgeSessions removes sessions whose window ended before the given
	// time and returns how many were removed.
	PurgeSessions(ctx context.Context, before time.Time) (int64, error)
}
