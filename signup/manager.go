package signup

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/doorman/id"
	"github.com/xraph/doorman/identity"
	"github.com/xraph/doorman/mailer"
)

// DefaultPasswordTTL is how long a one-time password remains valid.
const DefaultPasswordTTL = 24 * time.Hour

// ApprovedRole is the role stored on accounts created through approval.
const ApprovedRole = "trusted"

// RegisterStatus describes the outcome of a registration attempt.
type RegisterStatus string

const (
	// RegisterAccepted means a new request was recorded.
	RegisterAccepted RegisterStatus = "ok"

	// RegisterPending means a request for this email already exists and
	// is still awaiting approval.
	RegisterPending RegisterStatus = "pending"
)

// Manager implements the register/approve/deny workflow on top of the
// request store, the identity provider, and the mailer.
type Manager struct {
	store       Store
	provider    identity.Provider
	mail        mailer.Mailer
	passwordTTL time.Duration
	logger      *slog.Logger
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithPasswordTTL sets the one-time password validity window.
func WithPasswordTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) { m.passwordTTL = ttl }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a signup manager.
func NewManager(store Store, provider identity.Provider, mail mailer.Mailer, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:       store,
		provider:    provider,
		mail:        mail,
		passwordTTL: DefaultPasswordTTL,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register records an access request for the given email.
//
// A still-pending duplicate is reported as RegisterPending rather than an
// error; an already-approved email yields ErrAlreadyActive so the caller
// is told to log in instead.
func (m *Manager) Register(ctx context.Context, email string) (RegisterStatus, error) {
	existing, err := m.store.GetSignupByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrRequestNotFound) {
		return "", fmt.Errorf("signup: lookup request for %s: %w", email, err)
	}
	if existing != nil {
		if existing.Approved {
			return "", ErrAlreadyActive
		}
		return RegisterPending, nil
	}

	r := &Request{
		ID:        id.NewSignupID(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.CreateSignup(ctx, r); err != nil {
		// A concurrent registration may have won the insert.
		if errors.Is(err, ErrDuplicateEmail) {
			return RegisterPending, nil
		}
		return "", fmt.Errorf("signup: create request: %w", err)
	}
	return RegisterAccepted, nil
}

// Approve marks a request approved, provisions a time-limited trusted
// account at the identity provider, and emails the one-time password.
//
// Mail delivery failure does not undo the approval: the account already
// exists, and the password can be re-sent out of band.
func (m *Manager) Approve(ctx context.Context, reqID id.SignupID, processedBy string) (*identity.Account, error) {
	r, err := m.store.GetSignup(ctx, reqID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r.Approved = true
	r.ApprovedAt = &now
	r.ProcessedBy = processedBy
	if err := m.store.UpdateSignup(ctx, r); err != nil {
		return nil, fmt.Errorf("signup: mark approved: %w", err)
	}

	password, err := oneTimePassword()
	if err != nil {
		return nil, fmt.Errorf("signup: generate password: %w", err)
	}
	expiresAt := now.Add(m.passwordTTL)

	acct, err := m.provider.CreateAccount(ctx, &identity.NewAccount{
		Email:     r.Email,
		Password:  password,
		Role:      ApprovedRole,
		ExpiresAt: &expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("signup: create account for %s: %w", r.Email, err)
	}

	if err := m.mail.SendPassword(ctx, &mailer.PasswordEmail{
		To:        r.Email,
		Password:  password,
		ExpiresAt: expiresAt,
	}); err != nil {
		m.logger.Error("signup: password email failed", "email", r.Email, "error", err)
	}

	return acct, nil
}

// Deny removes a pending request without provisioning anything.
func (m *Manager) Deny(ctx context.Context, reqID id.SignupID) error {
	if _, err := m.store.GetSignup(ctx, reqID); err != nil {
		return err
	}
	return m.store.DeleteSignup(ctx, reqID)
}

// List returns access requests matching the filter.
func (m *Manager) List(ctx context.Context, filter *ListFilter) ([]*Request, error) {
	return m.store.ListSignups(ctx, filter)
}

// oneTimePassword returns a URL-safe random password, 8 bytes of entropy.
func oneTimePassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
