// Package doorman provides role resolution and demo-quota metering for
// request gateways in Go.
//
// Every inbound request carries an optional bearer credential and an
// optional session identifier. Doorman resolves the caller to a role:
// credentials are validated against an external identity provider
// (admin/trusted), and anonymous callers are metered as "demo" users
// against a persisted, time-bounded hit counter.
//
//	eng, err := doorman.NewEngine(
//	    doorman.WithStore(memStore),
//	    doorman.WithProvider(provider),
//	)
//	result, err := eng.Resolve(ctx, &doorman.ResolveRequest{
//	    Credential: bearerToken,
//	    SessionID:  r.Header.Get("X-Session-Id"),
//	})
package doorman

// Role is the access level resolved for a caller. Besides the predefined
// constants, providers may store custom role strings; they are passed
// through unchanged.
type Role string

const (
	// RoleAdmin grants administrative operations (ingestion, approvals).
	RoleAdmin Role = "admin"

	// RoleTrusted is the default for any caller with a valid credential.
	RoleTrusted Role = "trusted"

	// RoleDemo is the metered role for anonymous callers.
	RoleDemo Role = "demo"
)

// Source identifies which path produced a resolution.
type Source string

const (
	// SourceProvider means the role came from the identity provider.
	SourceProvider Source = "provider"

	// SourceDemo means the caller was admitted through the demo quota.
	SourceDemo Source = "demo"
)

// ResolveRequest is the input to a role resolution.
type ResolveRequest struct {
	// Credential is the bearer credential extracted from the request,
	// empty when none was presented.
	Credential string `json:"credential,omitempty"`

	// SessionID is the caller-supplied demo session key (X-Session-Id),
	// required only when no valid credential is presented.
	SessionID string `json:"session_id,omitempty"`
}

// ResolveResult is the outcome of a successful role resolution.
type ResolveResult struct {
	Role      Role   `json:"role"`
	Source    Source `json:"source"`
	AccountID string `json:"account_id,omitempty"`

	// HitsUsed and HitsLimit describe demo quota consumption. Both are
	// zero for provider-resolved callers.
	HitsUsed  int `json:"hits_used,omitempty"`
	HitsLimit int `json:"hits_limit,omitempty"`

	EvalTimeNs int64 `json:"eval_time_ns"`
}

// Is reports whether the result carries one of the given roles.
func (r *ResolveResult) Is(roles ...Role) bool {
	for _, role := range roles {
		if r.Role == role {
			return true
		}
	}
	return false
}
