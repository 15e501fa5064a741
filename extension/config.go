package extension

import "time"

// Config holds the Doorman extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.doorman" or "doorman" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for doorman routes (default: "").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// DemoHitLimit is the number of requests an anonymous session may
	// consume per window (default: 3).
	DemoHitLimit int `json:"demo_hit_limit" mapstructure:"demo_hit_limit" yaml:"demo_hit_limit"`

	// DemoWindow is the length of a demo metering window (default: 24h).
	DemoWindow time.Duration `json:"demo_window" mapstructure:"demo_window" yaml:"demo_window"`

	// AtomicTracking makes demo quota increments conditional at the
	// storage layer, closing the race between concurrent requests on the
	// same session.
	AtomicTracking bool `json:"atomic_tracking" mapstructure:"atomic_tracking" yaml:"atomic_tracking"`

	// GroveDatabase is the name of a grove.DB registered in the DI
	// container. Used by deployments that construct the store from a
	// shared database registration rather than passing one in directly.
	GroveDatabase string `json:"grove_database" mapstructure:"grove_database" yaml:"grove_database"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DemoHitLimit: 3,
		DemoWindow:   24 * time.Hour,
	}
}
