// Package api provides HTTP handlers for the Doorman gateway.
package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/doorman"
	"github.com/xraph/doorman/ingest"
	"github.com/xraph/doorman/qa"
	"github.com/xraph/doorman/signup"
)

// API wires all Doorman HTTP handlers together.
type API struct {
	eng      *doorman.Engine
	signups  *signup.Manager
	runner   *ingest.Runner
	answerer qa.Answerer
	router   forge.Router
}

// APIOption configures the API.
type APIOption func(*API)

// WithSignupManager wires the register/approve/deny workflow. Without it
// the signup routes are not registered.
func WithSignupManager(m *signup.Manager) APIOption {
	return func(a *API) { a.signups = m }
}

// WithRunner wires the background ingestion runner. Without it the ingest
// routes are not registered.
func WithRunner(r *ingest.Runner) APIOption {
	return func(a *API) { a.runner = r }
}

// WithAnswerer sets the question-answering backend behind /chat.
func WithAnswerer(ans qa.Answerer) APIOption {
	return func(a *API) { a.answerer = ans }
}

// New creates an API from an Engine and a Forge router.
func New(eng *doorman.Engine, router forge.Router, opts ...APIOption) *API {
	a := &API{eng: eng, router: router}
	for _, opt := range opts {
		opt(a)
	}
	if a.answerer == nil {
		a.answerer = &qa.Static{Text: "no answering backend configured"}
	}
	return a
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	if err := a.RegisterRoutes(a.router); err != nil {
		panic("doorman: register routes: " + err.Error())
	}
	return a.router.Handler()
}

// RegisterRoutes registers all API routes into the given Forge router.
func (a *API) RegisterRoutes(router forge.Router) error {
	registerers := []func(forge.Router) error{
		a.registerChatRoutes,
	}
	if a.signups != nil {
		registerers = append(registerers, a.registerSignupRoutes)
	}
	if a.runner != nil {
		registerers = append(registerers, a.registerIngestRoutes)
	}
	for _, fn := range registerers {
		if err := fn(router); err != nil {
			return err
		}
	}
	return nil
}
