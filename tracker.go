package doorman

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/doorman/session"
)

// trackDemo runs the anonymous metering path for one session key.
//
// The limit check happens before the increment so the persisted counter
// never exceeds the limit. Expiry is evaluated lazily on access; there is
// no background sweep. Read failures on the session table are treated as
// "no row found", but write failures surface: a lost write would
// under-count usage.
func (e *Engine) trackDemo(ctx context.Context, sessionID string) (*ResolveResult, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	now := time.Now().UTC()
	limit := e.config.hitLimit()

	if e.config.AtomicTracking {
		s, ok, err := e.store.IncrementHit(ctx, sessionID, limit, now)
		if err != nil {
			return nil, fmt.Errorf("%w: increment %s: %v", ErrSessionWrite, sessionID, err)
		}
		if ok {
			return e.demoResult(s), nil
		}
		// Missing, expired, or at limit: fall through to the read path.
	}

	s, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		// "Not found" variants and transient read failures alike start a
		// fresh window rather than failing the request.
		e.logger.Debug("session lookup failed, treating as absent", "session_id", sessionID, "error", err)
		s = nil
	}

	if s != nil && s.Expired(now) {
		if err := e.store.DeleteSession(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("%w: delete expired %s: %v", ErrSessionWrite, sessionID, err)
		}
		if e.plugins != nil {
			e.plugins.EmitSessionExpired(ctx, sessionID)
		}
		s = nil
	}

	if s == nil {
		fresh := &session.DemoSession{
			SessionID: sessionID,
			HitCount:  1,
			CreatedAt: now,
			ExpiresAt: now.Add(e.config.window()),
			LastHit:   now,
		}
		if err := e.store.InsertSession(ctx, fresh); err != nil {
			return nil, fmt.Errorf("%w: create %s: %v", ErrSessionWrite, sessionID, err)
		}
		if e.plugins != nil {
			e.plugins.EmitSessionCreated(ctx, fresh)
		}
		return e.demoResult(fresh), nil
	}

	if s.HitCount >= limit {
		if e.plugins != nil {
			e.plugins.EmitQuotaExhausted(ctx, s)
		}
		return nil, fmt.Errorf("%w: session %s", ErrDemoLimitReached, sessionID)
	}

	s.HitCount++
	s.LastHit = now
	if err := e.store.UpdateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("%w: increment %s: %v", ErrSessionWrite, sessionID, err)
	}

	return e.demoResult(s), nil
}

func (e *Engine) demoResult(s *session.DemoSession) *ResolveResult {
	return &ResolveResult{
		Role:      RoleDemo,
		Source:    SourceDemo,
		HitsUsed:  s.HitCount,
		HitsLimit: e.config.hitLimit(),
	}
}
