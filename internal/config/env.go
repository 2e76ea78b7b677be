package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Runtime holds tuning knobs that are not part of a scenario: backoff and
// cadence intervals and the default journal location. Values come from
// VOYAGER_* environment variables with sensible defaults.
type Runtime struct {
	// RetryInterval is the unit backoff after a failed convert or store.
	RetryInterval time.Duration `env:"VOYAGER_RETRY_INTERVAL" envDefault:"100ms"`

	// PollInterval is the coordinator's yield between empty drain passes.
	PollInterval time.Duration `env:"VOYAGER_POLL_INTERVAL" envDefault:"10ms"`

	// DisplayInterval rate-limits status board refreshes.
	DisplayInterval time.Duration `env:"VOYAGER_DISPLAY_INTERVAL" envDefault:"1s"`

	// JournalPath is the default SQLite journal location. Empty disables
	// journaling unless the CLI flag provides a path.
	JournalPath string `env:"VOYAGER_JOURNAL"`
}

// RuntimeFromEnv parses runtime tuning from the environment.
func RuntimeFromEnv() (Runtime, error) {
	var rt Runtime
	if err := env.Parse(&rt); err != nil {
		return Runtime{}, fmt.Errorf("parse env: %w", err)
	}
	return rt, nil
}
