// Package identity defines the external identity provider boundary.
//
// Doorman never stores credentials or verifies tokens itself. Any backend
// exposing "validate token → account id" plus a small administrative
// surface (role lookup, revocation flag, session invalidation, account
// creation) can implement Provider: a GoTrue-compatible service, a local
// database with a JWT verifier, or an LDAP bridge.
package identity

import (
	"context"
	"errors"
	"time"
)

// Account is the provider-owned account record as Doorman sees it.
// Doorman references accounts, it never owns them.
type Account struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Role      string         `json:"role,omitempty"`
	Revoked   bool           `json:"revoked"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewAccount describes an account to be created at the provider.
type NewAccount struct {
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Role      string     `json:"role"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ErrInvalidToken is returned by ValidateToken for any credential the
// provider cannot accept: malformed, expired, revoked, or unknown.
// Callers pattern-match on this sentinel instead of suppressing broad
// provider errors.
var ErrInvalidToken = errors.New("identity: invalid token")

// ErrAccountNotFound is returned when an account id does not exist at
// the provider.
var ErrAccountNotFound = errors.New("identity: account not found")

// Provider is the capability surface Doorman requires from an identity
// backend.
type Provider interface {
	// ValidateToken checks a bearer credential and returns the account id
	// it belongs to. Any unusable credential yields ErrInvalidToken;
	// provider outages yield their underlying error.
	ValidateToken(ctx context.Context, token string) (string, error)

	// GetRole returns the stored role for an account. An empty string
	// means no role record exists.
	GetRole(ctx context.Context, accountID string) (string, error)

	// IsRevoked reports whether the account has been administratively
	// disabled.
	IsRevoked(ctx context.Context, accountID string) (bool, error)

	// RevokeSessions invalidates all live provider-side sessions for an
	// account. Used when a revoked account presents a still-valid token.
	RevokeSessions(ctx context.Context, accountID string) error

	// CreateAccount provisions a new account at the provider.
	CreateAccount(ctx context.Context, acct *NewAccount) (*Account, error)

	// DisableAccount marks an account as revoked.
	DisableAccount(ctx context.Context, accountID string) error
}
