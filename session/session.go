// Package session defines the DemoSession entity and its store interface.
//
// A DemoSession is the persisted hit counter for one anonymous caller,
// keyed by a caller-supplied opaque session id. Exactly one row exists per
// session id at any time: expiry is handled by delete-then-recreate, never
// by keeping two live windows for the same key.
package session

import "time"

// DemoSession is one metering window for an anonymous caller.
type DemoSession struct {
	SessionID string    `json:"session_id" db:"session_id"`
	HitCount  int       `json:"hit_count" db:"hit_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	LastHit   time.Time `json:"last_hit" db:"last_hit"`
}

// Expired reports whether the window has passed at the given instant.
func (s *DemoSession) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// ListFilter contains filters for listing demo sessions.
type ListFilter struct {
	ExpiresAfter  *time.Time `json:"expires_after,omitempty"`
	ExpiresBefore *time.Time `json:"expires_before,omitempty"`
	MinHits       int        `json:"min_hits,omitempty"`
	Limit         int        `json:"limit,omitempty"`
	Offset        int        `json:"offset,omitempty"`
}
