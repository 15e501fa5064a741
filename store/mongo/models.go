package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/doorman/id"
	"github.com/xraph/doorman/session"
	"github.com/xraph/doorman/signup"
)

// ──────────────────────────────────────────────────
// Demo session model
// ──────────────────────────────────────────────────

type sessionModel struct {
	grove.BaseModel `grove:"table:doorman_sessions"`
	SessionID       string    `grove:"session_id,pk" bson:"_id"`
	HitCount        int       `grove:"hit_count"     bson:"hit_count"`
	CreatedAt       time.Time `grove:"created_at"    bson:"created_at"`
	ExpiresAt       time.Time `grove:"expires_at"    bson:"expires_at"`
	LastHit         time.Time `grove:"last_hit"      bson:"last_hit"`
}

func sessionToModel(s *session.DemoSession) *sessionModel {
	return &sessionModel{
		SessionID: s.SessionID,
		HitCount:  s.HitCount,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		LastHit:   s.LastHit,
	}
}

func sessionFromModel(m *sessionModel) *session.DemoSession {
	return &session.DemoSession{
		SessionID: m.SessionID,
		HitCount:  m.HitCount,
		CreatedAt: m.CreatedAt.UTC(),
		ExpiresAt: m.ExpiresAt.UTC(),
		LastHit:   m.LastHit.UTC(),
	}
}

// ──────────────────────────────────────────────────
// Signup model
// ──────────────────────────────────────────────────

type signupModel struct {
	grove.BaseModel `grove:"table:doorman_signups"`
	ID              string     `grove:"id,pk"        bson:"_id"`
	Email           string     `grove:"email"        bson:"email"`
	Approved        bool       `grove:"approved"     bson:"approved"`
	ApprovedAt      *time.Time `grove:"approved_at"  bson:"approved_at,omitempty"`
	ProcessedBy     string     `grove:"processed_by" bson:"processed_by"`
	CreatedAt       time.Time  `grove:"created_at"   bson:"created_at"`
}

func signupToModel(r *signup.Request) *signupModel {
	return &signupModel{
		ID:          r.ID.String(),
		Email:       r.Email,
		Approved:    r.Approved,
		ApprovedAt:  r.ApprovedAt,
		ProcessedBy: r.ProcessedBy,
		CreatedAt:   r.CreatedAt,
	}
}

func signupFromModel(m *signupModel) *signup.Request {
	rid, _ := id.ParseSignupID(m.ID) //nolint:errcheck // stored IDs are always valid
	r := &signup.Request{
		ID:          rid,
		Email:       m.Email,
		Approved:    m.Approved,
		ProcessedBy: m.ProcessedBy,
		CreatedAt:   m.CreatedAt.UTC(),
	}
	if m.ApprovedAt != nil {
		t := m.ApprovedAt.UTC()
		r.ApprovedAt = &t
	}
	return r
}
