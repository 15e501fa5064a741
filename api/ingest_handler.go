package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/doorman"
	"github.com/xraph/doorman/id"
	"github.com/xraph/doorman/ingest"
)

func (a *API) registerIngestRoutes(router forge.Router) error {
	g := router.Group("/v1/admin", forge.WithGroupTags("ingest"))

	if err := g.POST("/ingest", a.ingestDocument,
		forge.WithSummary("Queue document ingestion"),
		forge.WithDescription("Accepts a document and processes it in the background. Admin only."),
		forge.WithOperationID("ingestDocument"),
		forge.WithRequestSchema(IngestRequest{}),
		forge.WithResponseSchema(http.StatusAccepted, "Queued job", &ingest.Job{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/ingest/:jobId", a.getIngestJob,
		forge.WithSummary("Get ingestion job"),
		forge.WithDescription("Returns the status of an ingestion job. Admin only."),
		forge.WithOperationID("getIngestJob"),
		forge.WithResponseSchema(http.StatusOK, "Job status", &ingest.Job{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/ingest", a.listIngestJobs,
		forge.WithSummary("List ingestion jobs"),
		forge.WithDescription("Lists recently queued ingestion jobs, newest first. Admin only."),
		forge.WithOperationID("listIngestJobs"),
		forge.WithResponseSchema(http.StatusOK, "Jobs", []*ingest.Job{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) ingestDocument(ctx forge.Context, req *IngestRequest) (*ingest.Job, error) {
	if _, err := a.enforce(ctx, doorman.RoleAdmin); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}
	if req.Text == "" {
		return nil, forge.BadRequest("text is required")
	}

	source := req.Source
	if source == "" {
		source = req.Name
	}
	job := a.runner.Enqueue(ctx.Context(), &ingest.Document{
		Name:   req.Name,
		Text:   req.Text,
		Source: source,
	})

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitIngestQueued(ctx.Context(), job)
	}

	return job, ctx.JSON(http.StatusAccepted, job)
}

func (a *API) getIngestJob(ctx forge.Context, _ *GetJobRequest) (*ingest.Job, error) {
	if _, err := a.enforce(ctx, doorman.RoleAdmin); err != nil {
		return nil, err
	}

	jobID, err := id.ParseJobID(ctx.Param("jobId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid job ID: %v", err))
	}

	job, ok := a.runner.Registry().Get(jobID)
	if !ok {
		return nil, forge.NotFound("job " + jobID.String() + " not found")
	}
	return job, ctx.JSON(http.StatusOK, job)
}

func (a *API) listIngestJobs(ctx forge.Context, _ *struct{}) ([]*ingest.Job, error) {
	if _, err := a.enforce(ctx, doorman.RoleAdmin); err != nil {
		return nil, err
	}

	jobs := a.runner.Registry().List()
	return jobs, ctx.JSON(http.StatusOK, jobs)
}
