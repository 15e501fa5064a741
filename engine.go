package doorman

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/doorman/identity"
	"github.com/xraph/doorman/plugin"
	"github.com/xraph/doorman/store"
)

// Engine is the central role-resolution engine. It coordinates the
// identity resolver and the demo quota tracker, manages the store, and
// fires plugin hooks.
type Engine struct {
	store    store.Store
	provider identity.Provider
	plugins  *plugin.Registry
	logger   *slog.Logger
	config   Config
}

// NewEngine creates a new Doorman engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("doorman: store is required")
	}
	if e.provider == nil {
		return nil, errors.New("doorman: identity provider is required")
	}
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// Resolve determines the caller's role. This is the hot path.
//
// The identity path runs first: a valid, non-revoked credential yields the
// account's stored role. Any unusable credential demotes the caller to the
// demo path instead of producing an authentication error. The demo path
// requires a session identifier and enforces the per-window hit quota.
// The store is re-read on every call; results are never cached in-process.
func (e *Engine) Resolve(ctx context.Context, req *ResolveRequest) (*ResolveResult, error) {
	start := time.Now()

	if e.plugins != nil {
		e.plugins.EmitBeforeResolve(ctx, req)
	}

	var result *ResolveResult

	if req.Credential != "" {
		r, err := e.resolveIdentity(ctx, req.Credential)
		if err != nil {
			return nil, err
		}
		result = r
	}

	if result == nil {
		r, err := e.trackDemo(ctx, req.SessionID)
		if err != nil {
			return nil, err
		}
		result = r
	}

	result.EvalTimeNs = time.Since(start).Nanoseconds()

	if e.plugins != nil {
		e.plugins.EmitAfterResolve(ctx, req, result)
	}

	return result, nil
}

// Enforce resolves the caller's role and returns an error unless it is
// one of the given roles.
func (e *Engine) Enforce(ctx context.Context, req *ResolveRequest, roles ...Role) (*ResolveResult, error) {
	result, err := e.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(roles) > 0 && !result.Is(roles...) {
		return nil, fmt.Errorf("%w: %s", ErrRoleDenied, result.Role)
	}
	return result, nil
}
