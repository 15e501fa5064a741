package api

import (
	"net/http"

	"github.com/xraph/forge"
)

func (a *API) registerChatRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("chat"))

	if err := g.POST("/chat", a.chat,
		forge.WithSummary("Ask a question"),
		forge.WithDescription("Resolves the caller's role, meters demo sessions, and forwards the question to the answering backend."),
		forge.WithOperationID("chat"),
		forge.WithRequestSchema(ChatRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Answer", ChatResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/auth/verify", a.verify,
		forge.WithSummary("Verify credentials"),
		forge.WithDescription("Resolves and returns the caller's role without consuming a quota hit beyond this call."),
		forge.WithOperationID("authVerify"),
		forge.WithResponseSchema(http.StatusOK, "Resolution", VerifyResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) chat(ctx forge.Context, req *ChatRequest) (*ChatResponse, error) {
	if req.Question == "" {
		return nil, forge.BadRequest("question is required")
	}

	res, err := a.resolve(ctx)
	if err != nil {
		return nil, err
	}

	answer, err := a.answerer.Answer(ctx.Context(), req.Question)
	if err != nil {
		return nil, err
	}

	resp := &ChatResponse{
		Answer:    answer.Text,
		Sources:   answer.Sources,
		Role:      string(res.Role),
		HitsUsed:  res.HitsUsed,
		HitsLimit: res.HitsLimit,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) verify(ctx forge.Context, _ *struct{}) (*VerifyResponse, error) {
	res, err := a.resolve(ctx)
	if err != nil {
		return nil, err
	}

	resp := &VerifyResponse{
		Role:      string(res.Role),
		Source:    string(res.Source),
		AccountID: res.AccountID,
		HitsUsed:  res.HitsUsed,
		HitsLimit: res.HitsLimit,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}
