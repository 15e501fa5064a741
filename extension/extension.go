// Package extension provides a Forge extension entry point for Doorman.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/doorman"
	"github.com/xraph/doorman/api"
	"github.com/xraph/doorman/identity"
	"github.com/xraph/doorman/ingest"
	"github.com/xraph/doorman/mailer"
	"github.com/xraph/doorman/mailer/logmail"
	"github.com/xraph/doorman/plugin"
	"github.com/xraph/doorman/qa"
	"github.com/xraph/doorman/signup"
	"github.com/xraph/doorman/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "doorman"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Access gateway: role resolution, demo metering, and signup approval"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Doorman as a Forge extension.
type Extension struct {
	config     Config
	eng        *doorman.Engine
	apiHandler *api.API
	signups    *signup.Manager
	runner     *ingest.Runner

	store      store.Store
	provider   identity.Provider
	mailer     mailer.Mailer
	answerer   qa.Answerer
	pipeline   ingest.Pipeline
	logger     *slog.Logger
	engineOpts []doorman.Option
	plugins    []plugin.Plugin
}

// New creates a Doorman Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{config: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Engine returns the underlying Doorman engine.
func (e *Extension) Engine() *doorman.Engine { return e.eng }

// Signups returns the signup manager.
func (e *Extension) Signups() *signup.Manager { return e.signups }

// Runner returns the ingestion runner, nil when no pipeline was configured.
func (e *Extension) Runner() *ingest.Runner { return e.runner }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It initializes the engine,
// registers it in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	// Register the engine in the DI container.
	if err := vessel.Provide(fapp.Container(), func() (*doorman.Engine, error) {
		return e.eng, nil
	}); err != nil {
		return fmt.Errorf("doorman: register engine in container: %w", err)
	}

	if err := vessel.Provide(fapp.Container(), func() (*signup.Manager, error) {
		return e.signups, nil
	}); err != nil {
		return fmt.Errorf("doorman: register signup manager in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Try to resolve missing collaborators from the DI container.
	if e.store == nil {
		if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
			e.store = s
		}
	}
	if e.provider == nil {
		if p, err := forge.Inject[identity.Provider](fapp.Container()); err == nil {
			e.provider = p
		}
	}
	if e.mailer == nil {
		e.mailer = logmail.New(logger)
	}

	opts := make([]doorman.Option, 0, len(e.engineOpts)+len(e.plugins)+4)
	opts = append(opts,
		doorman.WithLogger(logger),
		doorman.WithConfig(doorman.Config{
			DemoHitLimit:   e.config.DemoHitLimit,
			DemoWindow:     e.config.DemoWindow,
			AtomicTracking: e.config.AtomicTracking,
		}),
	)
	if e.store != nil {
		opts = append(opts, doorman.WithStore(e.store))
	}
	if e.provider != nil {
		opts = append(opts, doorman.WithProvider(e.provider))
	}

	// Append user-provided options (may override store or provider).
	opts = append(opts, e.engineOpts...)

	for _, x := range e.plugins {
		opts = append(opts, doorman.WithPlugin(x))
	}

	eng, err := doorman.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("doorman: create engine: %w", err)
	}
	e.eng = eng

	e.signups = signup.NewManager(eng.Store(), e.provider, e.mailer,
		signup.WithLogger(logger))

	if e.pipeline != nil {
		e.runner = ingest.NewRunner(e.pipeline,
			ingest.WithLogger(logger),
			ingest.WithOnFinish(func(ctx context.Context, job *ingest.Job) {
				if eng.Plugins() != nil {
					eng.Plugins().EmitIngestFinished(ctx, job)
				}
			}),
		)
	}

	apiOpts := []api.APIOption{api.WithSignupManager(e.signups)}
	if e.runner != nil {
		apiOpts = append(apiOpts, api.WithRunner(e.runner))
	}
	if e.answerer != nil {
		apiOpts = append(apiOpts, api.WithAnswerer(e.answerer))
	}
	e.apiHandler = api.New(eng, fapp.Router(), apiOpts...)

	// Register HTTP routes unless disabled.
	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("doorman: register routes: %w", err)
		}
	}

	return nil
}

// Start begins the doorman engine and runs migrations if enabled.
func (e *Extension) Start(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("doorman: extension not initialized")
	}

	// Run migrations unless disabled.
	if !e.config.DisableMigrate {
		s := e.eng.Store()
		if s != nil {
			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("doorman: migration failed: %w", err)
			}
		}
	}

	return e.eng.Start(ctx)
}

// Stop gracefully shuts down the doorman engine. In-flight ingestion jobs
// are drained first so their results reach the job registry.
func (e *Extension) Stop(ctx context.Context) error {
	if e.runner != nil {
		e.runner.Wait()
	}
	if e.eng == nil {
		return nil
	}
	return e.eng.Stop(ctx)
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("doorman: extension not initialized")
	}
	s := e.eng.Store()
	if s == nil {
		return errors.New("doorman: no store configured")
	}
	return s.Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all doorman API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
