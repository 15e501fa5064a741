package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/doorman"
	"github.com/xraph/doorman/id"
	"github.com/xraph/doorman/signup"
)

func (a *API) registerSignupRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("signup"))

	if err := g.POST("/register", a.register,
		forge.WithSummary("Request access"),
		forge.WithDescription("Records an access request for an email address. Open to anonymous callers."),
		forge.WithOperationID("register"),
		forge.WithRequestSchema(RegisterRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Registration status", RegisterResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/admin/requests", a.listSignups,
		forge.WithSummary("List access requests"),
		forge.WithDescription("Lists access requests with optional filters."),
		forge.WithOperationID("listRequests"),
		forge.WithRequestSchema(ListSignupsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Access requests", ListResponse[*signup.Request]{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/admin/requests/:requestId/approve", a.approveSignup,
		forge.WithSummary("Approve access request"),
		forge.WithDescription("Provisions a time-limited account and emails a one-time password."),
		forge.WithOperationID("approveRequest"),
		forge.WithResponseSchema(http.StatusOK, "Provisioned account", ApproveResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/admin/requests/:requestId/deny", a.denySignup,
		forge.WithSummary("Deny access request"),
		forge.WithDescription("Removes a pending access request without provisioning anything."),
		forge.WithOperationID("denyRequest"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) register(ctx forge.Context, req *RegisterRequest) (*RegisterResponse, error) {
	if req.Email == "" {
		return nil, forge.BadRequest("email is required")
	}

	status, err := a.signups.Register(ctx.Context(), req.Email)
	if err != nil {
		return nil, mapError(err)
	}

	if status == signup.RegisterAccepted && a.eng.Plugins() != nil {
		if r, err := a.eng.Store().GetSignupByEmail(ctx.Context(), req.Email); err == nil {
			a.eng.Plugins().EmitSignupReceived(ctx.Context(), r)
		}
	}

	resp := &RegisterResponse{Status: string(status)}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) listSignups(ctx forge.Context, req *ListSignupsRequest) (*ListResponse[*signup.Request], error) {
	if _, err := a.enforce(ctx, doorman.RoleTrusted, doorman.RoleAdmin); err != nil {
		return nil, err
	}

	filter := &signup.ListFilter{
		Approved: req.Approved,
		Search:   req.Search,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}

	reqs, err := a.signups.List(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.eng.Store().CountSignups(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*signup.Request]{
		Items:  reqs,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) approveSignup(ctx forge.Context, _ *GetSignupRequest) (*ApproveResponse, error) {
	res, err := a.enforce(ctx, doorman.RoleTrusted, doorman.RoleAdmin)
	if err != nil {
		return nil, err
	}

	reqID, err := id.ParseSignupID(ctx.Param("requestId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid request ID: %v", err))
	}

	acct, err := a.signups.Approve(ctx.Context(), reqID, res.AccountID)
	if err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		if r, err := a.eng.Store().GetSignup(ctx.Context(), reqID); err == nil {
			a.eng.Plugins().EmitSignupApproved(ctx.Context(), r)
		}
	}

	resp := &ApproveResponse{
		Email:     acct.Email,
		AccountID: acct.ID,
		ExpiresAt: acct.ExpiresAt,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) denySignup(ctx forge.Context, _ *GetSignupRequest) (*struct{}, error) {
	if _, err := a.enforce(ctx, doorman.RoleTrusted, doorman.RoleAdmin); err != nil {
		return nil, err
	}

	reqID, err := id.ParseSignupID(ctx.Param("requestId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid request ID: %v", err))
	}

	// Fetched before the delete so the hook still sees the request.
	r, err := a.eng.Store().GetSignup(ctx.Context(), reqID)
	if err != nil {
		return nil, mapError(err)
	}

	if err := a.signups.Deny(ctx.Context(), reqID); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitSignupDenied(ctx.Context(), r)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}
