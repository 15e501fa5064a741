package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/doorman/ingest"
	"github.com/xraph/doorman/session"
	"github.com/xraph/doorman/signup"
)

// Named entry types pair a hook with the plugin name for logging.

type beforeResolveEntry struct {
	name string
	hook BeforeResolve
}
type afterResolveEntry struct {
	name string
	hook AfterResolve
}
type sessionCreatedEntry struct {
	name string
	hook SessionCreated
}
type sessionExpiredEntry struct {
	name string
	hook SessionExpired
}
type quotaExhaustedEntry struct {
	name string
	hook QuotaExhausted
}
type signupReceivedEntry struct {
	name string
	hook SignupReceived
}
type signupApprovedEntry struct {
	name string
	hook SignupApproved
}
type signupDeniedEntry struct {
	name string
	hook SignupDenied
}
type ingestQueuedEntry struct {
	name string
	hook IngestQueued
}
type ingestFinishedEntry struct {
	name string
	hook IngestFinished
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	beforeResolve  []beforeResolveEntry
	afterResolve   []afterResolveEntry
	sessionCreated []sessionCreatedEntry
	sessionExpired []sessionExpiredEntry
	quotaExhausted []quotaExhaustedEntry
	signupReceived []signupReceivedEntry
	signupApproved []signupApprovedEntry
	signupDenied   []signupDeniedEntry
	ingestQueued   []ingestQueuedEntry
	ingestFinished []ingestFinishedEntry
	shutdown       []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeResolve); ok {
		r.beforeResolve = append(r.beforeResolve, beforeResolveEntry{name, h})
	}
	if h, ok := p.(AfterResolve); ok {
		r.afterResolve = append(r.afterResolve, afterResolveEntry{name, h})
	}
	if h, ok := p.(SessionCreated); ok {
		r.sessionCreated = append(r.sessionCreated, sessionCreatedEntry{name, h})
	}
	if h, ok := p.(SessionExpired); ok {
		r.sessionExpired = append(r.sessionExpired, sessionExpiredEntry{name, h})
	}
	if h, ok := p.(QuotaExhausted); ok {
		r.quotaExhausted = append(r.quotaExhausted, quotaExhaustedEntry{name, h})
	}
	if h, ok := p.(SignupReceived); ok {
		r.signupReceived = append(r.signupReceived, signupReceivedEntry{name, h})
	}
	if h, ok := p.(SignupApproved); ok {
		r.signupApproved = append(r.signupApproved, signupApprovedEntry{name, h})
	}
	if h, ok := p.(SignupDenied); ok {
		r.signupDenied = append(r.signupDenied, signupDeniedEntry{name, h})
	}
	if h, ok := p.(IngestQueued); ok {
		r.ingestQueued = append(r.ingestQueued, ingestQueuedEntry{name, h})
	}
	if h, ok := p.(IngestFinished); ok {
		r.ingestFinished = append(r.ingestFinished, ingestFinishedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Resolve event emitters
// ──────────────────────────────────────────────────

// EmitBeforeResolve notifies all plugins that implement BeforeResolve.
func (r *Registry) EmitBeforeResolve(ctx context.Context, req any) {
	for _, e := range r.beforeResolve {
		if err := e.hook.OnBeforeResolve(ctx, req); err != nil {
			r.logHookError("OnBeforeResolve", e.name, err)
		}
	}
}

// EmitAfterResolve notifies all plugins that implement AfterResolve.
func (r *Registry) EmitAfterResolve(ctx context.Context, req, result any) {
	for _, e := range r.afterResolve {
		if err := e.hook.OnAfterResolve(ctx, req, result); err != nil {
			r.logHookError("OnAfterResolve", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Demo session event emitters
// ──────────────────────────────────────────────────

// EmitSessionCreated notifies all plugins that implement SessionCreated.
func (r *Registry) EmitSessionCreated(ctx context.Context, s *session.DemoSession) {
	for _, e := range r.sessionCreated {
		if err := e.hook.OnSessionCreated(ctx, s); err != nil {
			r.logHookError("OnSessionCreated", e.name, err)
		}
	}
}

// EmitSessionExpired notifies all plugins that implement SessionExpired.
func (r *Registry) EmitSessionExpired(ctx context.Context, sessionID string) {
	for _, e := range r.sessionExpired {
		if err := e.hook.OnSessionExpired(ctx, sessionID); err != nil {
			r.logHookError("OnSessionExpired", e.name, err)
		}
	}
}

// EmitQuotaExhausted notifies all plugins that implement QuotaExhausted.
func (r *Registry) EmitQuotaExhausted(ctx context.Context, s *session.DemoSession) {
	for _, e := range r.quotaExhausted {
		if err := e.hook.OnQuotaExhausted(ctx, s); err != nil {
			r.logHookError("OnQuotaExhausted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Signup event emitters
// ──────────────────────────────────────────────────

// EmitSignupReceived notifies all plugins that implement SignupReceived.
func (r *Registry) EmitSignupReceived(ctx context.Context, req *signup.Request) {
	for _, e := range r.signupReceived {
		if err := e.hook.OnSignupReceived(ctx, req); err != nil {
			r.logHookError("OnSignupReceived", e.name, err)
		}
	}
}

// EmitSignupApproved notifies all plugins that implement SignupApproved.
func (r *Registry) EmitSignupApproved(ctx context.Context, req *signup.Request) {
	for _, e := range r.signupApproved {
		if err := e.hook.OnSignupApproved(ctx, req); err != nil {
			r.logHookError("OnSignupApproved", e.name, err)
		}
	}
}

// EmitSignupDenied notifies all plugins that implement SignupDenied.
func (r *Registry) EmitSignupDenied(ctx context.Context, req *signup.Request) {
	for _, e := range r.signupDenied {
		if err := e.hook.OnSignupDenied(ctx, req); err != nil {
			r.logHookError("OnSignupDenied", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Ingest event emitters
// ──────────────────────────────────────────────────

// EmitIngestQueued notifies all plugins that implement IngestQueued.
func (r *Registry) EmitIngestQueued(ctx context.Context, job *ingest.Job) {
	for _, e := range r.ingestQueued {
		if err := e.hook.OnIngestQueued(ctx, job); err != nil {
			r.logHookError("OnIngestQueued", e.name, err)
		}
	}
}

// EmitIngestFinished notifies all plugins that implement IngestFinished.
func (r *Registry) EmitIngestFinished(ctx context.Context, job *ingest.Job) {
	for _, e := range r.ingestFinished {
		if err := e.hook.OnIngestFinished(ctx, job); err != nil {
			r.logHookError("OnIngestFinished", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Shutdown emitter
// ──────────────────────────────────────────────────

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the pipeline.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
