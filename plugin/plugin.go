// Package plugin defines the plugin system for Doorman.
// Plugins are notified of lifecycle events (request resolved, demo
// session created, signup approved, etc.) and can react — logging,
// metrics, tracing, etc.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/doorman/ingest"
	"github.com/xraph/doorman/session"
	"github.com/xraph/doorman/signup"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Resolve lifecycle hooks
// ──────────────────────────────────────────────────

// BeforeResolve is called before a request's role is resolved.
// The req parameter is *doorman.ResolveRequest (passed as any to avoid import cycle).
type BeforeResolve interface {
	OnBeforeResolve(ctx context.Context, req any) error
}

// AfterResolve is called after a request resolves to a role.
// The req parameter is *doorman.ResolveRequest; result is *doorman.ResolveResult.
type AfterResolve interface {
	OnAfterResolve(ctx context.Context, req, result any) error
}

// ──────────────────────────────────────────────────
// Demo session lifecycle hooks
// ──────────────────────────────────────────────────

// SessionCreated is called after a fresh demo session row is persisted.
type SessionCreated interface {
	OnSessionCreated(ctx context.Context, s *session.DemoSession) error
}

// SessionExpired is called after an expired demo session row is removed.
type SessionExpired interface {
	OnSessionExpired(ctx context.Context, sessionID string) error
}

// QuotaExhausted is called when a demo session is refused at its hit limit.
type QuotaExhausted interface {
	OnQuotaExhausted(ctx context.Context, s *session.DemoSession) error
}

// ──────────────────────────────────────────────────
// Signup lifecycle hooks
// ──────────────────────────────────────────────────

// SignupReceived is called after a new access request is recorded.
type SignupReceived interface {
	OnSignupReceived(ctx context.Context, req *signup.Request) error
}

// SignupApproved is called after an access request is approved and the
// account created.
type SignupApproved interface {
	OnSignupApproved(ctx context.Context, req *signup.Request) error
}

// SignupDenied is called after an access request is denied and removed.
type SignupDenied interface {
	OnSignupDenied(ctx context.Context, req *signup.Request) error
}

// ──────────────────────────────────────────────────
// Ingest lifecycle hooks
// ──────────────────────────────────────────────────

// IngestQueued is called after a document ingestion job is accepted.
type IngestQueued interface {
	OnIngestQueued(ctx context.Context, job *ingest.Job) error
}

// IngestFinished is called after an ingestion job completes or fails.
type IngestFinished interface {
	OnIngestFinished(ctx context.Context, job *ingest.Job) error
}

// ──────────────────────────────────────────────────
// Shutdown hook
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
