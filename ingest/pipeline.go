package ingest

import "context"

// Pipeline turns a document into stored chunks. Implementations wrap
// whatever retrieval stack the deployment uses; Doorman treats the whole
// thing as opaque.
type Pipeline interface {
	// Process ingests one document and reports how many chunks were
	// produced.
	Process(ctx context.Context, doc *Document) (int, error)
}

// PipelineFunc adapts a function to the Pipeline interface.
type PipelineFunc func(ctx context.Context, doc *Document) (int, error)

// Process implements Pipeline.
func (f PipelineFunc) Process(ctx context.Context, doc *Document) (int, error) {
	return f(ctx, doc)
}
