package doorman

import "context"

type contextKey int

const (
	ctxKeyResult contextKey = iota
)

// WithResult returns a context carrying a resolved role result. The
// middleware stores the result here so downstream handlers can gate on it.
func WithResult(ctx context.Context, result *ResolveResult) context.Context {
	return context.WithValue(ctx, ctxKeyResult, result)
}

// ResultFromContext extracts the resolved role result, if any.
func ResultFromContext(ctx context.Context) (*ResolveResult, bool) {
	r, ok := ctx.Value(ctxKeyResult).(*ResolveResult)
	return r, ok
}

// RoleFromContext extracts just the resolved role. Returns empty string
// when no resolution has run.
func RoleFromContext(ctx context.Context) Role {
	if r, ok := ResultFromContext(ctx); ok {
		return r.Role
	}
	return ""
}
