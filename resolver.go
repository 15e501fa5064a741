package doorman

import (
	"context"
	"fmt"
)

// resolveIdentity runs the credential path. A nil result with a nil error
// means the credential was unusable and the caller must fall through to
// the demo path.
func (e *Engine) resolveIdentity(ctx context.Context, credential string) (*ResolveResult, error) {
	accountID, err := e.provider.ValidateToken(ctx, credential)
	if err != nil {
		// Invalid, expired, malformed, or provider failure: the caller
		// is demoted to the demo path, never told the credential failed.
		e.logger.Debug("credential rejected, falling through to demo", "error", err)
		return nil, nil //nolint:nilnil // nil result signals fall-through
	}

	// Stored role, defaulting to trusted. A valid credential always
	// grants at least trusted access, even when the role lookup errors.
	role, err := e.provider.GetRole(ctx, accountID)
	if err != nil {
		e.logger.Warn("role lookup failed, defaulting to trusted", "account_id", accountID, "error", err)
		role = ""
	}
	if role == "" {
		role = string(RoleTrusted)
	}

	// Revocation overrides any role, so this check runs even after the
	// role lookup succeeded.
	revoked, err := e.provider.IsRevoked(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: revocation check for %s: %v", ErrProviderUnavailable, accountID, err)
	}
	if revoked {
		// Best effort: a failure to kill provider-side sessions does not
		// change the rejection.
		if err := e.provider.RevokeSessions(ctx, accountID); err != nil {
			e.logger.Warn("session revocation failed", "account_id", accountID, "error", err)
		}
		return nil, fmt.Errorf("%w: account %s", ErrAccountRevoked, accountID)
	}

	return &ResolveResult{
		Role:      Role(role),
		Source:    SourceProvider,
		AccountID: accountID,
	}, nil
}
