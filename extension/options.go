package extension

import (
	"log/slog"

	"github.com/xraph/doorman"
	"github.com/xraph/doorman/identity"
	"github.com/xraph/doorman/ingest"
	"github.com/xraph/doorman/mailer"
	"github.com/xraph/doorman/plugin"
	"github.com/xraph/doorman/qa"
	"github.com/xraph/doorman/store"
)

// ExtOption configures the Doorman Forge extension.
type ExtOption func(*Extension)

// WithStore sets the persistence backend.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) { e.store = s }
}

// WithProvider sets the external identity provider.
func WithProvider(p identity.Provider) ExtOption {
	return func(e *Extension) { e.provider = p }
}

// WithMailer sets the outbound mailer used for approval emails. Without
// it, passwords are written to the log.
func WithMailer(m mailer.Mailer) ExtOption {
	return func(e *Extension) { e.mailer = m }
}

// WithAnswerer sets the question-answering backend behind /chat.
func WithAnswerer(ans qa.Answerer) ExtOption {
	return func(e *Extension) { e.answerer = ans }
}

// WithPipeline enables document ingestion through the given pipeline.
func WithPipeline(p ingest.Pipeline) ExtOption {
	return func(e *Extension) { e.pipeline = p }
}

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) { e.config = cfg }
}

// WithEngineOptions adds engine-level options.
func WithEngineOptions(opts ...doorman.Option) ExtOption {
	return func(e *Extension) { e.engineOpts = append(e.engineOpts, opts...) }
}

// WithPlugin registers a lifecycle hook plugin.
func WithPlugin(x plugin.Plugin) ExtOption {
	return func(e *Extension) { e.plugins = append(e.plugins, x) }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) { e.logger = l }
}

// WithDisableRoutes disables the registration of HTTP routes.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableMigrate disables auto-migration on start.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) { e.config.DisableMigrate = true }
}
