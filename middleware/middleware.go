// Package middleware provides HTTP role-resolution middleware for Doorman.
package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/xraph/forge"

	"github.com/xraph/doorman"
)

// RequireRole resolves the caller's role and admits the request only when
// it matches one of the given roles. An empty role list admits any caller
// that resolves successfully, demo sessions included.
func RequireRole(eng *doorman.Engine, roles ...doorman.Role) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			res, err := eng.Resolve(ctx.Context(), resolveRequest(ctx.Request()))
			if err != nil {
				return denyResponse(ctx, statusFor(err), err)
			}
			if len(roles) > 0 && !res.Is(roles...) {
				return denyResponse(ctx, http.StatusForbidden, doorman.ErrRoleDenied)
			}
			return next(ctx)
		}
	}
}

// Resolve is a plain net/http middleware that resolves the caller's role
// and stores the result in the request context for downstream handlers.
// Use it when Doorman guards a mux outside of Forge.
func Resolve(eng *doorman.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := eng.Resolve(r.Context(), resolveRequest(r))
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			next.ServeHTTP(w, r.WithContext(doorman.WithResult(r.Context(), res)))
		})
	}
}

// resolveRequest extracts the credential and session key from the request
// headers.
func resolveRequest(r *http.Request) *doorman.ResolveRequest {
	return &doorman.ResolveRequest{
		Credential: bearerToken(r.Header.Get("Authorization")),
		SessionID:  r.Header.Get("X-Session-Id"),
	}
}

// bearerToken strips the "Bearer " scheme from an Authorization header.
func bearerToken(header string) string {
	if len(header) >= 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return strings.TrimSpace(header)
}

// statusFor maps resolution errors to HTTP status codes. A missing
// session or revoked account is an authentication problem; an exhausted
// quota is a refusal of an authenticated-enough caller.
func statusFor(err error) int {
	switch {
	case errors.Is(err, doorman.ErrMissingSession), errors.Is(err, doorman.ErrAccountRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, doorman.ErrDemoLimitReached), errors.Is(err, doorman.ErrRoleDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func denyResponse(ctx forge.Context, status int, err error) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(status)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": err.Error()})
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
