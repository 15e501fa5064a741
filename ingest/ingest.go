// Package ingest defines the document ingestion boundary.
//
// Ingestion itself (chunking, embedding, vector storage) is an external
// concern behind the Pipeline interface. This package owns only the
// asynchronous job bookkeeping: a job is queued, processed on its own
// goroutine, and its terminal status kept in an in-memory registry with a
// bounded lifetime.
package ingest

import (
	"time"

	"github.com/xraph/doorman/id"
)

// Document is the unit handed to the pipeline: either an uploaded file
// body or raw text, labeled with a source.
type Document struct {
	// Name is the original filename, empty for raw text submissions.
	Name string `json:"name,omitempty"`

	// Content is the uploaded file body.
	Content []byte `json:"-"`

	// Text is a raw text submission, used when no file was uploaded.
	Text string `json:"text,omitempty"`

	// Source is the label attached to every chunk produced.
	Source string `json:"source"`
}

// JobStatus describes where a job is in its lifecycle.
type JobStatus string

const (
	// StatusQueued means the job is accepted but not finished.
	StatusQueued JobStatus = "queued"

	// StatusCompleted means the pipeline processed the document.
	StatusCompleted JobStatus = "completed"

	// StatusFailed means the pipeline returned an error.
	StatusFailed JobStatus = "failed"
)

// Job is the tracked state of one ingestion.
type Job struct {
	ID         id.JobID   `json:"id"`
	Source     string     `json:"source"`
	Status     JobStatus  `json:"status"`
	NumChunks  int        `json:"num_chunks,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
