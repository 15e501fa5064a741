// Package qa defines the question-answering boundary guarded by the
// gateway. The actual answering backend (retrieval chain, model call) is
// deployment-specific; Doorman only decides who may reach it.
package qa

import "context"

// Answer is one response to a question.
type Answer struct {
	// Text is the answer body.
	Text string `json:"text"`

	// Sources lists the document sources the answer drew on, when the
	// backend reports them.
	Sources []string `json:"sources,omitempty"`
}

// Answerer produces an answer for a question.
type Answerer interface {
	Answer(ctx context.Context, question string) (*Answer, error)
}

// AnswererFunc adapts a function to the Answerer interface.
type AnswererFunc func(ctx context.Context, question string) (*Answer, error)

// Answer implements Answerer.
func (f AnswererFunc) Answer(ctx context.Context, question string) (*Answer, error) {
	return f(ctx, question)
}

// Static answers every question with a fixed response. Useful in tests
// and as a placeholder while wiring a real backend.
type Static struct {
	Text    string
	Sources []string
}

// Answer implements Answerer.
func (s *Static) Answer(_ context.Context, _ string) (*Answer, error) {
	return &Answer{Text: s.Text, Sources: s.Sources}, nil
}
