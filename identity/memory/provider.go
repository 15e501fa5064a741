// Package memory provides an in-memory identity provider. It is intended
// for testing and development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/doorman/identity"
)

// Compile-time interface check.
var _ identity.Provider = (*Provider)(nil)

// Provider is a thread-safe in-memory identity backend. Tokens are plain
// opaque strings mapped directly to account ids.
type Provider struct {
	mu       sync.RWMutex
	accounts map[string]*identity.Account
	tokens   map[string]string // token -> account id
	nextID   int
}

// New creates a new in-memory provider.
func New() *Provider {
	return &Provider{
		accounts: make(map[string]*identity.Account),
		tokens:   make(map[string]string),
	}
}

// AddAccount registers an account and returns a token that validates to it.
func (p *Provider) AddAccount(acct *identity.Account) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if acct.ID == "" {
		p.nextID++
		acct.ID = fmt.Sprintf("acct-%d", p.nextID)
	}
	cp := *acct
	p.accounts[acct.ID] = &cp
	token := "tok-" + acct.ID
	p.tokens[token] = acct.ID
	return token
}

// SetRevoked flips the revoked flag on an account.
func (p *Provider) SetRevoked(accountID string, revoked bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if a, ok := p.accounts[accountID]; ok {
		a.Revoked = revoked
	}
}

// Tokens returns the number of live tokens. Used to observe RevokeSessions.
func (p *Provider) Tokens() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.tokens)
}

// ValidateToken resolves a token to an account id.
func (p *Provider) ValidateToken(_ context.Context, token string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	accountID, ok := p.tokens[token]
	if !ok {
		return "", fmt.Errorf("token %q: %w", token, identity.ErrInvalidToken)
	}
	return accountID, nil
}

// GetRole returns the stored role for an account, empty if unset.
func (p *Provider) GetRole(_ context.Context, accountID string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	a, ok := p.accounts[accountID]
	if !ok {
		return "", fmt.Errorf("account %q: %w", accountID, identity.ErrAccountNotFound)
	}
	return a.Role, nil
}

// IsRevoked reports the revoked flag for an account.
func (p *Provider) IsRevoked(_ context.Context, accountID string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	a, ok := p.accounts[accountID]
	if !ok {
		return false, fmt.Errorf("account %q: %w", accountID, identity.ErrAccountNotFound)
	}
	return a.Revoked, nil
}

// RevokeSessions drops all tokens for an account.
func (p *Provider) RevokeSessions(_ context.Context, accountID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for tok, id := range p.tokens {
		if id == accountID {
			delete(p.tokens, tok)
		}
	}
	return nil
}

// CreateAccount provisions a new account.
func (p *Provider) CreateAccount(_ context.Context, acct *identity.NewAccount) (*identity.Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	a := &identity.Account{
		ID:        fmt.Sprintf("acct-%d", p.nextID),
		Email:     acct.Email,
		Role:      acct.Role,
		ExpiresAt: acct.ExpiresAt,
	}
	p.accounts[a.ID] = a
	p.tokens["tok-"+a.ID] = a.ID
	return a, nil
}

// DisableAccount marks an account revoked.
func (p *Provider) DisableAccount(_ context.Context, accountID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.accounts[accountID]
	if !ok {
		return fmt.Errorf("account %q: %w", accountID, identity.ErrAccountNotFound)
	}
	a.Revoked = true
	return nil
}
