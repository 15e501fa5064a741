package api

// ──────────────────────────────────────────────────
// Chat requests
// ──────────────────────────────────────────────────

// ChatRequest is the request body for asking a question.
type ChatRequest struct {
	Question string `json:"question" description:"Question to answer"`
}

// ──────────────────────────────────────────────────
// Signup requests
// ──────────────────────────────────────────────────

// RegisterRequest is the body for requesting access.
type RegisterRequest struct {
	Email string `json:"email" description:"Email address to register"`
}

// ListSignupsRequest holds query parameters for listing access requests.
type ListSignupsRequest struct {
	Approved *bool  `query:"approved" description:"Filter by approval state"`
	Search   string `query:"search" description:"Search by email"`
	Limit    int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset   int    `query:"offset" description:"Results to skip"`
}

// GetSignupRequest is the path parameter for a single access request.
type GetSignupRequest struct {
	RequestID string `path:"requestId" description:"Access request ID"`
}

// ──────────────────────────────────────────────────
// Ingest requests
// ──────────────────────────────────────────────────

// IngestRequest is the body for queueing a document ingestion.
type IngestRequest struct {
	Name   string `json:"name" description:"Document name"`
	Text   string `json:"text" description:"Document text to ingest"`
	Source string `json:"source,omitempty" description:"Origin label stored with the chunks"`
}

// GetJobRequest is the path parameter for an ingestion job.
type GetJobRequest struct {
	JobID string `path:"jobId" description:"Ingestion job ID"`
}
