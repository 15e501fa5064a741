package sqlite

import (
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/doorman/id"
	"github.com/xraph/doorman/session"
	"github.com/xraph/doorman/signup"
)

// timeLayout is the canonical format for timestamps written by this
// backend. Reads go through session.ParseTime, which also accepts rows
// written by other tools with different fractional precision or offset
// notation.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ──────────────────────────────────────────────────
// Demo session model
// ──────────────────────────────────────────────────

type sessionModel struct {
	grove.BaseModel `grove:"table:doorman_sessions"`
	SessionID       string `grove:"session_id,pk"`
	HitCount        int    `grove:"hit_count,notnull"`
	CreatedAt       string `grove:"created_at,notnull"` // ISO-8601 text
	ExpiresAt       string `grove:"expires_at,notnull"` // ISO-8601 text
	LastHit         string `grove:"last_hit,notnull"`   // ISO-8601 text
}

func sessionToModel(s *session.DemoSession) *sessionModel {
	return &sessionModel{
		SessionID: s.SessionID,
		HitCount:  s.HitCount,
		CreatedAt: formatTime(s.CreatedAt),
		ExpiresAt: formatTime(s.ExpiresAt),
		LastHit:   formatTime(s.LastHit),
	}
}

func sessionFromModel(m *sessionModel) (*session.DemoSession, error) {
	createdAt, err := session.ParseTime(m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("session %s created_at: %w", m.SessionID, err)
	}
	expiresAt, err := session.ParseTime(m.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("session %s expires_at: %w", m.SessionID, err)
	}
	lastHit, err := session.ParseTime(m.LastHit)
	if err != nil {
		return nil, fmt.Errorf("session %s last_hit: %w", m.SessionID, err)
	}
	return &session.DemoSession{
		SessionID: m.SessionID,
		HitCount:  m.HitCount,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
		LastHit:   lastHit,
	}, nil
}

// ──────────────────────────────────────────────────
// Signup model
// ──────────────────────────────────────────────────

type signupModel struct {
	grove.BaseModel `grove:"table:doorman_signups"`
	ID              string  `grove:"id,pk"`
	Email           string  `grove:"email,notnull"`
	Approved        bool    `grove:"approved,notnull"`
	ApprovedAt      *string `grove:"approved_at"` // ISO-8601 text
	ProcessedBy     string  `grove:"processed_by"`
	CreatedAt       string  `grove:"created_at,notnull"` // ISO-8601 text
}

func signupToModel(r *signup.Request) *signupModel {
	m := &signupModel{
		ID:          r.ID.String(),
		Email:       r.Email,
		Approved:    r.Approved,
		ProcessedBy: r.ProcessedBy,
		CreatedAt:   formatTime(r.CreatedAt),
	}
	if r.ApprovedAt != nil {
		s := formatTime(*r.ApprovedAt)
		m.ApprovedAt = &s
	}
	return m
}

func signupFromModel(m *signupModel) (*signup.Request, error) {
	rid, _ := id.ParseSignupID(m.ID) //nolint:errcheck // stored IDs are always valid
	createdAt, err := session.ParseTime(m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("request %s created_at: %w", m.ID, err)
	}
	r := &signup.Request{
		ID:          rid,
		Email:       m.Email,
		Approved:    m.Approved,
		ProcessedBy: m.ProcessedBy,
		CreatedAt:   createdAt,
	}
	if m.ApprovedAt != nil {
		approvedAt, err := session.ParseTime(*m.ApprovedAt)
		if err != nil {
			return nil, fmt.Errorf("request %s approved_at: %w", m.ID, err)
		}
		r.ApprovedAt = &approvedAt
	}
	return r, nil
}
