package notifier

import (
	"context"

	"github.com/newthinker/splitgate/internal/core"
)

// Config holds notifier configuration
type Config struct {
	Type   string         `mapstructure:"type" validate:"oneof=webhook telegram"`
	Params map[string]any `mapstructure:"params"`
}

// Notifier publishes evaluation verdicts
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Init initializes the notifier with configuration
	Init(cfg Config) error

	// Send publishes one verdict
	Send(ctx context.Context, verdict core.Verdict) error
}
