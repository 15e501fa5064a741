package postgres

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
	SessionID       string    `grove:"session_id,pk"`
	HitCount        int       `grove:"hit_count,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	ExpiresAt       time.Time `grove:"expires_at,notnull"`
	LastHit         time.Time `grove:"last_hit,notnull"`
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
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
		LastHit:   m.LastHit,
	}
}

// ──────────────────────────────────────────────────
// Signup model
// ──────────────────────────────────────────────────

type signupModel struct {
	grove.BaseModel `grove:"table:doorman_signups"`
	ID              string     `grove:"id,pk"`
	Email           string     `grove:"email,notnull"`
	Approved        bool       `grove:"approved,notnull"`
	ApprovedAt      *time.Time `grove:"approved_at"`
	ProcessedBy     string     `grove:"processed_by"`
	CreatedAt       time.Time  `grove:"created_at,notnull"`
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
	return &signup.Request{
		ID:          rid,
		Email:       m.Email,
		Approved:    m.Approved,
		ApprovedAt:  m.ApprovedAt,
		ProcessedBy: m.ProcessedBy,
		CreatedAt:   m.CreatedAt,
	}
}
