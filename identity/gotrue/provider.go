// Package gotrue implements the identity.Provider interface against a
// GoTrue-compatible authentication service (Supabase Auth, Netlify GoTrue).
//
// Token validation uses the end-user endpoint (GET /user) with the caller's
// bearer token. Administrative operations (role lookup, revocation,
// account creation) use the admin endpoints and require a service-role key.
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xraph/doorman/identity"
)

// Compile-time interface check.
var _ identity.Provider = (*Provider)(nil)

// banForever is the ban duration used to revoke an account. GoTrue has no
// permanent ban value, so a century stands in for one.
const banForever = "876000h"

// Provider is an identity.Provider backed by a GoTrue-compatible service.
type Provider struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

// Option configures the provider.
type Option func(*Provider)

// WithHTTPClient sets the HTTP client used for all requests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// New creates a provider for the GoTrue service at baseURL. The serviceKey
// authenticates admin endpoints; token validation uses end-user tokens.
func New(baseURL, serviceKey string, opts ...Option) *Provider {
	p := &Provider{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// userRecord is the subset of the GoTrue user object Doorman reads.
type userRecord struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	BannedUntil  string         `json:"banned_until,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// ValidateToken resolves a bearer token via GET /user. Any 4xx response is
// reported as identity.ErrInvalidToken; transport failures and 5xx
// responses surface as provider errors.
func (p *Provider) ValidateToken(ctx context.Context, token string) (string, error) {
	u, status, err := p.getUser(ctx, "/user", "Bearer "+token)
	if err != nil {
		return "", err
	}
	if status >= 400 && status < 500 {
		return "", fmt.Errorf("gotrue: status %d: %w", status, identity.ErrInvalidToken)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("gotrue: validate token: unexpected status %d", status)
	}
	return u.ID, nil
}

// GetRole reads the role from the account's user metadata.
func (p *Provider) GetRole(ctx context.Context, accountID string) (string, error) {
	u, err := p.adminGetUser(ctx, accountID)
	if err != nil {
		return "", err
	}
	if role, ok := u.UserMetadata["role"].(string); ok {
		return role, nil
	}
	return "", nil
}

// IsRevoked reports whether the account carries a live ban.
func (p *Provider) IsRevoked(ctx context.Context, accountID string) (bool, error) {
	u, err := p.adminGetUser(ctx, accountID)
	if err != nil {
		return false, err
	}
	if u.BannedUntil == "" {
		return false, nil
	}
	until, err := time.Parse(time.RFC3339, u.BannedUntil)
	if err != nil {
		return false, fmt.Errorf("gotrue: parse banned_until %q: %w", u.BannedUntil, err)
	}
	return until.After(time.Now()), nil
}

// RevokeSessions invalidates all refresh tokens for an account.
func (p *Provider) RevokeSessions(ctx context.Context, accountID string) error {
	_, err := p.adminDo(ctx, http.MethodPost, "/admin/users/"+accountID+"/logout", nil)
	if err != nil {
		return fmt.Errorf("gotrue: revoke sessions for %s: %w", accountID, err)
	}
	return nil
}

// CreateAccount provisions an account with a confirmed email and the role
// stored in user metadata.
func (p *Provider) CreateAccount(ctx context.Context, acct *identity.NewAccount) (*identity.Account, error) {
	meta := map[string]any{"role": acct.Role}
	if acct.ExpiresAt != nil {
		meta["expires_at"] = acct.ExpiresAt.UTC().Format(time.RFC3339)
	}
	body := map[string]any{
		"email":         acct.Email,
		"password":      acct.Password,
		"email_confirm": true,
		"user_metadata": meta,
	}

	raw, err := p.adminDo(ctx, http.MethodPost, "/admin/users", body)
	if err != nil {
		return nil, fmt.Errorf("gotrue: create account: %w", err)
	}

	var u userRecord
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("gotrue: decode created account: %w", err)
	}
	return &identity.Account{
		ID:        u.ID,
		Email:     u.Email,
		Role:      acct.Role,
		ExpiresAt: acct.ExpiresAt,
		Metadata:  u.UserMetadata,
	}, nil
}

// DisableAccount applies an effectively permanent ban.
func (p *Provider) DisableAccount(ctx context.Context, accountID string) error {
	_, err := p.adminDo(ctx, http.MethodPut, "/admin/users/"+accountID, map[string]any{
		"ban_duration": banForever,
	})
	if err != nil {
		return fmt.Errorf("gotrue: disable account %s: %w", accountID, err)
	}
	return nil
}

func (p *Provider) adminGetUser(ctx context.Context, accountID string) (*userRecord, error) {
	u, status, err := p.getUser(ctx, "/admin/users/"+accountID, "Bearer "+p.serviceKey)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("account %s: %w", accountID, identity.ErrAccountNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("gotrue: get user %s: unexpected status %d", accountID, status)
	}
	return u, nil
}

func (p *Provider) getUser(ctx context.Context, path, authorization string) (*userRecord, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("gotrue: build request: %w", err)
	}
	req.Header.Set("Authorization", authorization)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("gotrue: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for connection reuse
		return nil, resp.StatusCode, nil
	}

	var u userRecord
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("gotrue: decode %s: %w", path, err)
	}
	return &u, resp.StatusCode, nil
}

func (p *Provider) adminDo(ctx context.Context, method, path string, body any) ([]byte, error) {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw, 200))
	}
	return raw, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
