package doorman

import "time"

// Config holds configuration for the Doorman engine.
type Config struct {
	// DemoHitLimit is the number of requests an anonymous session may
	// consume per window. Defaults to 3.
	DemoHitLimit int `json:"demo_hit_limit,omitempty"`

	// DemoWindow is the length of a demo metering window.
	// Defaults to 24h.
	DemoWindow time.Duration `json:"demo_window,omitempty"`

	// AtomicTracking makes the under-limit increment a single conditional
	// update at the storage layer, closing the read-check-write race
	// between concurrent requests on the same session. Off by default to
	// match the reference read-then-write behavior.
	AtomicTracking bool `json:"atomic_tracking,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DemoHitLimit: 3,
		DemoWindow:   24 * time.Hour,
	}
}

func (c Config) hitLimit() int {
	if c.DemoHitLimit > 0 {
		return c.DemoHitLimit
	}
	return 3
}

func (c Config) window() time.Duration {
	if c.DemoWindow > 0 {
		return c.DemoWindow
	}
	return 24 * time.Hour
}
