package api

import (
	"errors"
	"strings"

	"github.com/xraph/forge"

	"github.com/xraph/doorman"
	"github.com/xraph/doorman/signup"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, doorman.ErrMissingSession) || errors.Is(err, doorman.ErrAccountRevoked) {
		return forge.Unauthorized(err.Error())
	}
	if errors.Is(err, doorman.ErrDemoLimitReached) || errors.Is(err, doorman.ErrRoleDenied) {
		return forge.Forbidden(err.Error())
	}
	if errors.Is(err, signup.ErrRequestNotFound) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, signup.ErrAlreadyActive) || errors.Is(err, signup.ErrDuplicateEmail) {
		return forge.BadRequest(err.Error())
	}
	return err
}

// resolve produces the caller's role for this request. When the resolve
// middleware already ran, its result is reused from the context; otherwise
// the credentials are read from the request headers and resolved here.
func (a *API) resolve(ctx forge.Context) (*doorman.ResolveResult, error) {
	if res, ok := doorman.ResultFromContext(ctx.Context()); ok {
		return res, nil
	}
	res, err := a.eng.Resolve(ctx.Context(), requestFromHeaders(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

// enforce is resolve plus a role check.
func (a *API) enforce(ctx forge.Context, roles ...doorman.Role) (*doorman.ResolveResult, error) {
	res, err := a.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if len(roles) > 0 && !res.Is(roles...) {
		return nil, forge.Forbidden("role " + string(res.Role) + " may not access this resource")
	}
	return res, nil
}

func requestFromHeaders(ctx forge.Context) *doorman.ResolveRequest {
	h := ctx.Request().Header
	return &doorman.ResolveRequest{
		Credential: bearerToken(h.Get("Authorization")),
		SessionID:  h.Get("X-Session-Id"),
	}
}

// bearerToken strips the "Bearer " scheme from an Authorization header.
// Anything else is passed through as-is and left for the provider to reject.
func bearerToken(header string) string {
	if len(header) >= 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return strings.TrimSpace(header)
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
