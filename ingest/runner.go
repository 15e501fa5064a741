package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/doorman/id"
)

// Runner accepts documents and processes them asynchronously, one
// goroutine per job. Callers get a job id back immediately and poll the
// registry for the outcome.
type Runner struct {
	pipeline Pipeline
	registry *Registry
	logger   *slog.Logger
	onFinish func(ctx context.Context, job *Job)
	wg       sync.WaitGroup
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithRegistry sets the job registry. A default registry is created when
// none is given.
func WithRegistry(reg *Registry) RunnerOption {
	return func(r *Runner) { r.registry = reg }
}

// WithOnFinish sets a callback invoked after each job reaches a terminal
// state, with the finished job record.
func WithOnFinish(fn func(ctx context.Context, job *Job)) RunnerOption {
	return func(r *Runner) { r.onFinish = fn }
}

// NewRunner creates a runner backed by the given pipeline.
func NewRunner(pipeline Pipeline, opts ...RunnerOption) *Runner {
	r := &Runner{
		pipeline: pipeline,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = NewRegistry()
	}
	return r
}

// Registry returns the runner's job registry.
func (r *Runner) Registry() *Registry { return r.registry }

// Enqueue records a queued job for the document and starts processing it
// in the background. The returned job reflects the queued state.
func (r *Runner) Enqueue(ctx context.Context, doc *Document) *Job {
	job := &Job{
		ID:        id.NewJobID(),
		Source:    doc.Source,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	r.registry.Put(job)

	// The request context ends when the HTTP response is written; the job
	// must outlive it.
	bgCtx := context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(bgCtx, job, doc)
	}()

	return job
}

// Wait blocks until all in-flight jobs finish. Used on shutdown.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, job *Job, doc *Document) {
	chunks, err := r.pipeline.Process(ctx, doc)
	now := time.Now().UTC()

	done := &Job{
		ID:         job.ID,
		Source:     job.Source,
		CreatedAt:  job.CreatedAt,
		FinishedAt: &now,
	}
	if err != nil {
		done.Status = StatusFailed
		done.Error = err.Error()
		r.logger.Error("ingest job failed", "job_id", job.ID, "source", job.Source, "error", err)
	} else {
		done.Status = StatusCompleted
		done.NumChunks = chunks
		r.logger.Info("ingest job completed", "job_id", job.ID, "source", job.Source, "chunks", chunks)
	}
	r.registry.Put(done)

	if r.onFinish != nil {
		r.onFinish(ctx, done)
	}
}
